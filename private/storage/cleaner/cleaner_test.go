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

package cleaner_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/rpki-rp/validator/private/storage/cleaner"
)

func newMetrics() cleaner.Metrics {
	c := func(name string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: name})
	}
	return cleaner.Metrics{
		ErrorsTotal:  c("errors_total"),
		RunsTotal:    c("runs_total"),
		DeletedTotal: c("deleted_total"),
	}
}

func TestCleaner(t *testing.T) {
	tests := map[string]struct {
		deleted int
		err     error
		errors  float64
		runs    float64
	}{
		"nothing deleted": {runs: 1},
		"deleted":         {deleted: 3, runs: 1},
		"error":           {err: errors.New("database is locked"), errors: 1},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			m := newMetrics()
			c := cleaner.New(func(context.Context) (int, error) {
				return tc.deleted, tc.err
			}, "history", m)
			assert.Equal(t, "history_cleaner", c.Name())
			c.Run(context.Background())
			assert.Equal(t, tc.errors, testutil.ToFloat64(m.ErrorsTotal))
			assert.Equal(t, tc.runs, testutil.ToFloat64(m.RunsTotal))
			if tc.err == nil {
				assert.Equal(t, float64(tc.deleted), testutil.ToFloat64(m.DeletedTotal))
			}
		})
	}
}

func TestCleanerWithoutMetrics(t *testing.T) {
	c := cleaner.New(func(context.Context) (int, error) { return 1, nil },
		"history", cleaner.Metrics{})
	assert.NotPanics(t, func() { c.Run(context.Background()) })
}
