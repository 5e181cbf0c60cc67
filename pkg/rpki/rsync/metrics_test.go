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

package rsync_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rpki-rp/validator/pkg/rpki/fetch"
	"github.com/rpki-rp/validator/pkg/rpki/rsync"
)

func TestStatusOutcome(t *testing.T) {
	tests := map[string]struct {
		status  rsync.Status
		outcome fetch.Outcome
		str     string
	}{
		"exit zero": {
			status:  rsync.Status{},
			outcome: fetch.Success,
			str:     "exit status 0",
		},
		"exit non-zero": {
			status:  rsync.Status{ExitCode: 23},
			outcome: fetch.Failure,
			str:     "exit status 23",
		},
		"spawn error": {
			status:  rsync.Status{Err: errors.New("executable file not found")},
			outcome: fetch.Undetermined,
			str:     "executable file not found",
		},
		"error wins over exit code": {
			status:  rsync.Status{ExitCode: 0, Err: errors.New("wait: no child")},
			outcome: fetch.Undetermined,
			str:     "wait: no child",
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			m := rsync.ModuleMetrics{Module: "rsync://rpki.example.net/repo/", Status: tc.status}
			assert.Equal(t, tc.outcome, m.Outcome())
			assert.Equal(t, tc.str, tc.status.String())
		})
	}
}
