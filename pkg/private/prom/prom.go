// Copyright 2026 Anapaya Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package prom contains label names, result values and registration helpers
// shared by all prometheus metrics of the validator.
package prom

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// LabelResult is the label for result classifications.
	LabelResult = "result"
	// LabelID is the label carrying the configured validator ID.
	LabelID = "cfg"
)

// Common result values.
const (
	// Success is no error.
	Success = "ok_success"
	// ErrInternal is an internal error.
	ErrInternal = "err_internal"
	// ErrParse is used if an input could not be parsed.
	ErrParse = "err_parse"
	// ErrDB is used for db related errors.
	ErrDB = "err_db"
	// ErrTimeout is a timeout error.
	ErrTimeout = "err_timeout"
)

// SafeRegister registers c on reg and returns the registered collector. If an
// equal collector was already registered the existing collector is returned.
// In case of any other error this method panics (as MustRegister).
func SafeRegister(reg prometheus.Registerer, c prometheus.Collector) prometheus.Collector {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector
		}
		panic(err)
	}
	return c
}

// ExportValidatorID exports the validator ID as configured in the config file.
func ExportValidatorID(reg prometheus.Registerer, id string) {
	g := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "rpki",
			Name:      "validator_id",
			Help:      "The validator ID from the config file",
		},
		[]string{LabelID},
	)
	SafeRegister(reg, g).(*prometheus.GaugeVec).WithLabelValues(id).Set(1)
}
