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

package runmetrics_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpki-rp/validator/pkg/rpki/rrdp"
	"github.com/rpki-rp/validator/pkg/rpki/rsync"
	"github.com/rpki-rp/validator/pkg/rpki/tal"
	"github.com/rpki-rp/validator/private/runmetrics"
	"github.com/rpki-rp/validator/private/runmetrics/mock_runmetrics"
)

func module(uri string, status rsync.Status) rsync.ModuleMetrics {
	return rsync.ModuleMetrics{Module: uri, Status: status, Duration: time.Second}
}

func talMetrics(name string, roas, vrps uint32) runmetrics.TALMetrics {
	m := runmetrics.NewTALMetrics(tal.NewInfo(name, nil, nil))
	m.ROAs = roas
	m.VRPs = vrps
	return m
}

func TestNew(t *testing.T) {
	before := time.Now()
	m := runmetrics.New()
	after := time.Now()

	assert.False(t, m.Time().Before(before.Truncate(time.Second)))
	assert.False(t, m.Time().After(after))
	assert.Equal(t, time.UTC, m.Time().Location())
	assert.Equal(t, m.Time().Unix(), m.Timestamp())
	assert.Empty(t, m.TALs())
	assert.Empty(t, m.Rsync())
	assert.Empty(t, m.RRDP())
}

func TestNewTALMetrics(t *testing.T) {
	info := tal.NewInfo("anchor-A", nil, nil)
	m := runmetrics.NewTALMetrics(info)
	assert.Same(t, info, m.TAL)
	assert.Zero(t, m.ROAs)
	assert.Zero(t, m.VRPs)
	assert.Equal(t, "anchor-A", m.Name())
	assert.Equal(t, "", runmetrics.TALMetrics{}.Name())
}

func TestRsyncComplete(t *testing.T) {
	ok := rsync.Status{}
	failed := rsync.Status{ExitCode: 10}
	undetermined := rsync.Status{Err: errors.New("broken pipe")}

	tests := map[string]struct {
		modules  []rsync.ModuleMetrics
		complete bool
	}{
		"no modules": {
			modules:  nil,
			complete: true,
		},
		"empty list": {
			modules:  []rsync.ModuleMetrics{},
			complete: true,
		},
		"all success": {
			modules: []rsync.ModuleMetrics{
				module("rsync://a.example/repo/", ok),
				module("rsync://b.example/repo/", ok),
				module("rsync://c.example/repo/", ok),
			},
			complete: true,
		},
		"one failure among successes": {
			modules: []rsync.ModuleMetrics{
				module("rsync://a.example/repo/", ok),
				module("rsync://b.example/repo/", failed),
				module("rsync://c.example/repo/", ok),
			},
			complete: false,
		},
		"one undetermined among successes": {
			modules: []rsync.ModuleMetrics{
				module("rsync://a.example/repo/", ok),
				module("rsync://b.example/repo/", ok),
				module("rsync://c.example/repo/", undetermined),
			},
			complete: false,
		},
		"single undetermined": {
			modules:  []rsync.ModuleMetrics{module("rsync://a.example/repo/", undetermined)},
			complete: false,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			m := runmetrics.New()
			m.SetRsync(tc.modules)
			assert.Equal(t, tc.complete, m.RsyncComplete())
			assert.Equal(t, len(tc.modules) != 0, m.RsyncConfigured())
		})
	}
}

func TestRRDPComplete(t *testing.T) {
	m := runmetrics.New()
	assert.True(t, m.RRDPComplete())
	m.SetRRDP([]rrdp.ServerMetrics{
		{NotifyURI: "https://a.example/notify.xml", NotifyStatus: rrdp.HTTPStatus{Code: 200}},
		{NotifyURI: "https://b.example/notify.xml", NotifyStatus: rrdp.HTTPStatus{Code: 503}},
	})
	assert.False(t, m.RRDPComplete())
	// RRDP results never affect the rsync predicate.
	assert.True(t, m.RsyncComplete())
}

func TestPushTALKeepsOrder(t *testing.T) {
	m := runmetrics.New()
	var want []runmetrics.TALMetrics
	for i := 0; i < 10; i++ {
		tm := talMetrics(fmt.Sprintf("anchor-%d", 9-i), uint32(i), uint32(2*i))
		want = append(want, tm)
		m.PushTAL(tm)
	}
	// Duplicates are kept.
	m.PushTAL(want[0])
	want = append(want, want[0])

	got := m.TALs()
	require.Len(t, got, 11)
	if diff := cmp.Diff(want, got, cmp.Comparer(func(a, b *tal.Info) bool {
		return a == b
	})); diff != "" {
		t.Errorf("TALs mismatch (-want +got):\n%s", diff)
	}
}

func TestSetReplaces(t *testing.T) {
	m := runmetrics.New()
	a := []rsync.ModuleMetrics{
		module("rsync://a.example/repo/", rsync.Status{}),
		module("rsync://b.example/repo/", rsync.Status{ExitCode: 5}),
	}
	b := []rsync.ModuleMetrics{module("rsync://c.example/repo/", rsync.Status{})}
	m.SetRsync(a)
	m.SetRsync(b)
	assert.Equal(t, b, m.Rsync())
	assert.True(t, m.RsyncComplete())

	ra := []rrdp.ServerMetrics{{NotifyURI: "https://a.example/notify.xml"}}
	rb := []rrdp.ServerMetrics{
		{NotifyURI: "https://b.example/notify.xml"},
		{NotifyURI: "https://c.example/notify.xml"},
	}
	m.SetRRDP(ra)
	m.SetRRDP(rb)
	assert.Equal(t, rb, m.RRDP())
}

func TestTotals(t *testing.T) {
	m := runmetrics.New()
	m.PushTAL(talMetrics("anchor-A", 12, 30))
	m.PushTAL(talMetrics("anchor-B", 4294967295, 4294967295))
	roas, vrps := m.Totals()
	assert.Equal(t, uint64(4294967307), roas)
	assert.Equal(t, uint64(4294967325), vrps)
}

func TestSummaryScenario(t *testing.T) {
	m := runmetrics.New()
	m.PushTAL(talMetrics("anchor-A", 12, 30))
	m.SetRsync([]rsync.ModuleMetrics{
		module("rsync://a.example/repo/", rsync.Status{}),
		module("rsync://b.example/repo/", rsync.Status{ExitCode: 12}),
	})
	assert.False(t, m.RsyncComplete())
	assert.Contains(t, m.Summary(), "anchor-A: 12 valid ROAs, 30 VRPs.")
}

func TestUndeterminedScenario(t *testing.T) {
	m := runmetrics.New()
	m.SetRsync([]rsync.ModuleMetrics{
		module("rsync://a.example/repo/", rsync.Status{Err: errors.New("connection reset")}),
	})
	assert.False(t, m.RsyncComplete())
}

func TestLogSummary(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mock_runmetrics.NewMockSink(ctrl)
	gomock.InOrder(
		sink.EXPECT().Info("Summary:"),
		sink.EXPECT().Info("anchor-A: 12 valid ROAs, 30 VRPs."),
		sink.EXPECT().Info("anchor-B: 0 valid ROAs, 0 VRPs."),
	)

	m := runmetrics.New()
	m.PushTAL(talMetrics("anchor-A", 12, 30))
	m.PushTAL(runmetrics.NewTALMetrics(tal.NewInfo("anchor-B", nil, nil)))
	m.LogSummary(sink)
}

func TestConcurrentReaders(t *testing.T) {
	m := runmetrics.New()
	full := []rsync.ModuleMetrics{
		module("rsync://a.example/repo/", rsync.Status{}),
		module("rsync://b.example/repo/", rsync.Status{}),
	}
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			m.PushTAL(talMetrics("anchor", uint32(i), uint32(i)))
			m.SetRsync(full)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			if l := len(m.Rsync()); l != 0 && l != len(full) {
				t.Errorf("partial rsync list observed: %d", l)
			}
			tals := m.TALs()
			for j, tm := range tals {
				if tm.ROAs != uint32(j) {
					t.Errorf("unexpected TAL at %d: %d", j, tm.ROAs)
				}
			}
		}
	}()
	wg.Wait()
	assert.Len(t, m.TALs(), 100)
}
