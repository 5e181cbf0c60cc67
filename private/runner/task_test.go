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

package runner_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpki-rp/validator/private/runmetrics"
	"github.com/rpki-rp/validator/private/runner"
)

func TestTask(t *testing.T) {
	tests := map[string]struct {
		file    string
		handled bool
	}{
		"valid report":   {file: "testdata/run.yml", handled: true},
		"missing report": {file: "testdata/missing.yml"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			var got *runmetrics.Metrics
			task := &runner.Task{
				Runner:     &runner.Runner{},
				ReportFile: tc.file,
				Handler: func(_ context.Context, m *runmetrics.Metrics) {
					got = m
				},
			}
			assert.Equal(t, "validation_run", task.Name())
			task.Run(context.Background())
			if !tc.handled {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Len(t, got.TALs(), 2)
		})
	}
}
