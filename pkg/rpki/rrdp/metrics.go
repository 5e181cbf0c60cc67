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

// Package rrdp contains the status records the RRDP collaborator reports for
// each update server.
package rrdp

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rpki-rp/validator/pkg/rpki/fetch"
)

// HTTPStatus is the result of one HTTP request. Err is set if no response was
// received; Code is only meaningful if Err is nil.
type HTTPStatus struct {
	Code int
	Err  error
}

// Outcome classifies the status. 2xx and 304 Not Modified are successes.
func (s HTTPStatus) Outcome() fetch.Outcome {
	switch {
	case s.Err != nil:
		return fetch.Undetermined
	case s.Code == http.StatusNotModified, s.Code >= 200 && s.Code < 300:
		return fetch.Success
	default:
		return fetch.Failure
	}
}

func (s HTTPStatus) String() string {
	if s.Err != nil {
		return s.Err.Error()
	}
	return strconv.Itoa(s.Code)
}

// ServerMetrics is the record for one RRDP server.
type ServerMetrics struct {
	// NotifyURI is the URI of the server's notification file.
	NotifyURI string
	// NotifyStatus is the result of fetching the notification file.
	NotifyStatus HTTPStatus
	// PayloadStatus is the result of fetching the snapshot or deltas. It is
	// nil if nothing needed to be fetched.
	PayloadStatus *HTTPStatus
	// Serial is the serial number of the last update applied.
	Serial uint64
	// Session is the session ID of the last update applied.
	Session string
	// Duration is how long the update took.
	Duration time.Duration
}

// Outcome classifies the notification status first and the payload status
// second.
func (m ServerMetrics) Outcome() fetch.Outcome {
	if o := m.NotifyStatus.Outcome(); o != fetch.Success {
		return o
	}
	if m.PayloadStatus != nil {
		return m.PayloadStatus.Outcome()
	}
	return fetch.Success
}
