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

package runner

import (
	"context"

	"github.com/rpki-rp/validator/pkg/log"
	"github.com/rpki-rp/validator/private/periodic"
	"github.com/rpki-rp/validator/private/runmetrics"
)

var _ periodic.Task = (*Task)(nil)

// Task is a periodic.Task that reloads the report file and runs it.
type Task struct {
	Runner *Runner
	// ReportFile is read again on every run.
	ReportFile string
	// Handler is called with the metrics of every successful run.
	Handler func(context.Context, *runmetrics.Metrics)
}

// Name returns the tasks name.
func (t *Task) Name() string {
	return "validation_run"
}

// Run loads the report and runs it. Errors are logged.
func (t *Task) Run(ctx context.Context) {
	logger := log.FromCtx(ctx)
	report, err := LoadReport(t.ReportFile)
	if err != nil {
		logger.Error("Failed to load report", "err", err)
		return
	}
	m, err := t.Runner.Run(ctx, report)
	if err != nil {
		logger.Error("Validation run failed", "err", err)
		return
	}
	if t.Handler != nil {
		t.Handler(ctx, m)
	}
}
