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

// Package fetch contains the outcome classification shared by the retrieval
// protocols.
package fetch

// Outcome is the classification of one retrieval unit (an rsync module or an
// RRDP server) at the end of a run.
type Outcome int

const (
	// Success means the retrieval completed and reported success.
	Success Outcome = iota
	// Failure means the retrieval completed with an explicit failure status.
	Failure
	// Undetermined means no status could be obtained, e.g. because of a
	// transport error.
	Undetermined
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Failure:
		return "failure"
	case Undetermined:
		return "undetermined"
	default:
		return "unknown"
	}
}

// Classifier is implemented by retrieval status records.
type Classifier interface {
	Outcome() Outcome
}

// AllSucceeded returns true if every record is classified as Success. It is
// vacuously true for an empty list.
func AllSucceeded[C Classifier](records []C) bool {
	for _, r := range records {
		if r.Outcome() != Success {
			return false
		}
	}
	return true
}
