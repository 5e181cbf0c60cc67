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
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpki-rp/validator/pkg/log"
	"github.com/rpki-rp/validator/pkg/log/testlog"
	"github.com/rpki-rp/validator/pkg/rpki/fetch"
	"github.com/rpki-rp/validator/pkg/rpki/tal"
	"github.com/rpki-rp/validator/private/runner"
)

func TestLoadReport(t *testing.T) {
	r, err := runner.LoadReport("testdata/run.yml")
	require.NoError(t, err)
	require.Len(t, r.TALs, 2)
	require.Len(t, r.Rsync, 2)
	require.Len(t, r.RRDP, 2)

	assert.Equal(t, runner.TALEntry{Name: "anchor-A", ROAs: 12, VRPs: 30}, r.TALs[0])
	assert.Equal(t, 1500*time.Millisecond, r.Rsync[0].Duration.Duration)

	mod := r.Rsync[1].ModuleMetrics()
	assert.Equal(t, fetch.Failure, mod.Outcome())

	srv := r.RRDP[0].ServerMetrics()
	assert.Equal(t, fetch.Success, srv.Outcome())
	assert.Equal(t, uint64(42), srv.Serial)
	require.NotNil(t, srv.PayloadStatus)
	assert.Equal(t, 200, srv.PayloadStatus.Code)

	assert.Equal(t, fetch.Undetermined, r.RRDP[1].ServerMetrics().Outcome())
}

func TestParseReportErrors(t *testing.T) {
	tests := map[string]string{
		"unknown field":      "tals:\n  - name: a\n    roa: 1\n",
		"tal without name":   "tals:\n  - roas: 1\n",
		"negative count":     "tals:\n  - name: a\n    roas: -1\n",
		"module without uri": "rsync:\n  - exit_code: 0\n",
		"server without uri": "rrdp:\n  - status: 200\n",
		"bad duration":       "rsync:\n  - module: rsync://a/\n    duration: soon\n",
		"payload status and error": "rrdp:\n  - notify_uri: https://a/n.xml\n" +
			"    payload_status: 200\n    payload_error: eof\n",
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := runner.ParseReport([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestReportDuration(t *testing.T) {
	tests := map[string]struct {
		input     string
		expected  time.Duration
		assertErr assert.ErrorAssertionFunc
	}{
		"empty":      {input: `""`, expected: 0, assertErr: assert.NoError},
		"millis":     {input: "800ms", expected: 800 * time.Millisecond, assertErr: assert.NoError},
		"days":       {input: "1d", expected: 24 * time.Hour, assertErr: assert.NoError},
		"fractional": {input: "1.5s", assertErr: assert.Error},
		"compound":   {input: "1m30s", assertErr: assert.Error},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			raw := "rsync:\n  - module: rsync://a/\n    duration: " + tc.input + "\n"
			r, err := runner.ParseReport([]byte(raw))
			tc.assertErr(t, err)
			if err != nil {
				return
			}
			assert.Equal(t, tc.expected, r.Rsync[0].Duration.Duration)
		})
	}
}

func TestRun(t *testing.T) {
	report, err := runner.LoadReport("testdata/run.yml")
	require.NoError(t, err)
	ctx := log.CtxWith(context.Background(), testlog.NewLogger(t))

	r := runner.Runner{}
	m, err := r.Run(ctx, report)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"anchor-A: 12 valid ROAs, 30 VRPs.",
		"anchor-B: 3 valid ROAs, 4 VRPs.",
	}, m.Summary())
	assert.Len(t, m.Rsync(), 2)
	assert.Len(t, m.RRDP(), 2)
	assert.False(t, m.RsyncComplete())
	assert.True(t, m.RsyncConfigured())
	assert.False(t, m.RRDPComplete())
}

func TestRunKeepsReportOrder(t *testing.T) {
	var b strings.Builder
	b.WriteString("tals:\n")
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&b, "  - name: anchor-%02d\n    roas: %d\n    vrps: %d\n", i, i, 2*i)
	}
	report, err := runner.ParseReport([]byte(b.String()))
	require.NoError(t, err)

	r := runner.Runner{Parallelism: 4}
	m, err := r.Run(log.CtxWith(context.Background(), testlog.NewLogger(t)), report)
	require.NoError(t, err)
	tals := m.TALs()
	require.Len(t, tals, 50)
	for i, tm := range tals {
		assert.Equal(t, fmt.Sprintf("anchor-%02d", i), tm.Name())
		assert.Equal(t, uint32(i), tm.ROAs)
	}
	assert.True(t, m.RsyncComplete())
	assert.False(t, m.RsyncConfigured())
}

func TestRunWithTALIndex(t *testing.T) {
	known := tal.NewInfo("anchor-A", []string{"rsync://rpki.example.net/ta.cer"}, nil)
	r := runner.Runner{TALs: runner.NewTALIndex([]*tal.Info{known})}
	ctx := log.CtxWith(context.Background(), testlog.NewLogger(t))

	t.Run("known", func(t *testing.T) {
		report := &runner.Report{TALs: []runner.TALEntry{{Name: "anchor-A", ROAs: 1}}}
		m, err := r.Run(ctx, report)
		require.NoError(t, err)
		require.Len(t, m.TALs(), 1)
		assert.Same(t, known, m.TALs()[0].TAL)
	})
	t.Run("unknown", func(t *testing.T) {
		report := &runner.Report{TALs: []runner.TALEntry{
			{Name: "anchor-A"},
			{Name: "anchor-X"},
		}}
		_, err := r.Run(ctx, report)
		assert.ErrorIs(t, err, runner.ErrUnknownTAL)
	})
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(log.CtxWith(context.Background(), testlog.NewLogger(t)))
	cancel()
	report := &runner.Report{TALs: []runner.TALEntry{{Name: "anchor-A"}}}
	r := runner.Runner{}
	_, err := r.Run(ctx, report)
	assert.ErrorIs(t, err, context.Canceled)
}
