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

// Package rsync contains the status records the rsync collaborator reports
// for each configured module.
package rsync

import (
	"fmt"
	"time"

	"github.com/rpki-rp/validator/pkg/rpki/fetch"
)

// Status is the result of running rsync for one module. Err is set if the
// process could not be run or waited for; ExitCode is only meaningful if Err
// is nil.
type Status struct {
	ExitCode int
	Err      error
}

// Outcome classifies the status.
func (s Status) Outcome() fetch.Outcome {
	switch {
	case s.Err != nil:
		return fetch.Undetermined
	case s.ExitCode != 0:
		return fetch.Failure
	default:
		return fetch.Success
	}
}

func (s Status) String() string {
	if s.Err != nil {
		return s.Err.Error()
	}
	return fmt.Sprintf("exit status %d", s.ExitCode)
}

// ModuleMetrics is the record for one rsync module.
type ModuleMetrics struct {
	// Module is the rsync URI of the module.
	Module string
	// Status is the result of the last rsync run for the module.
	Status Status
	// Duration is how long the fetch took.
	Duration time.Duration
}

// Outcome classifies the module's status.
func (m ModuleMetrics) Outcome() fetch.Outcome {
	return m.Status.Outcome()
}
