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

//go:generate mockgen -destination=mock_runmetrics/mock.go -package=mock_runmetrics github.com/rpki-rp/validator/private/runmetrics Sink

// Package runmetrics collects the metrics of one validation run.
//
// A Metrics value is created when the run starts. The validator pushes one
// TALMetrics per processed trust anchor, and the rsync and RRDP collaborators
// each hand over their complete list of status records once all their fetches
// have finished. Afterwards the value is read by the reporting layer and then
// discarded.
package runmetrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/rpki-rp/validator/pkg/rpki/fetch"
	"github.com/rpki-rp/validator/pkg/rpki/rrdp"
	"github.com/rpki-rp/validator/pkg/rpki/rsync"
	"github.com/rpki-rp/validator/pkg/rpki/tal"
)

// Sink receives the summary lines. log.Logger implements it.
type Sink interface {
	Info(msg string, ctx ...any)
}

// TALMetrics are the metrics of one trust anchor.
type TALMetrics struct {
	// TAL is the shared identity of the trust anchor.
	TAL *tal.Info
	// ROAs is the number of valid ROAs.
	ROAs uint32
	// VRPs is the number of VRPs derived from the valid ROAs.
	VRPs uint32
}

// NewTALMetrics creates metrics for the trust anchor with all counts zero.
func NewTALMetrics(info *tal.Info) TALMetrics {
	return TALMetrics{TAL: info}
}

// Name returns the display name of the trust anchor.
func (m TALMetrics) Name() string {
	if m.TAL == nil {
		return ""
	}
	return m.TAL.Name()
}

// Metrics are the metrics of one validation run.
//
// Each intake method is atomic with respect to the query methods. The slices
// returned by the queries must not be modified.
type Metrics struct {
	time time.Time

	mtx   sync.RWMutex
	tals  []TALMetrics
	rsync []rsync.ModuleMetrics
	rrdp  []rrdp.ServerMetrics
}

// New creates empty metrics collected now.
func New() *Metrics {
	return &Metrics{time: time.Now().UTC()}
}

// PushTAL appends the metrics of one trust anchor. Duplicates are not
// detected.
func (m *Metrics) PushTAL(t TALMetrics) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.tals = append(m.tals, t)
}

// SetRsync replaces the rsync module metrics with the given list. It is meant
// to be called once per run, after all modules were fetched.
func (m *Metrics) SetRsync(modules []rsync.ModuleMetrics) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.rsync = modules
}

// SetRRDP replaces the RRDP server metrics with the given list. It is meant
// to be called once per run, after all servers were fetched.
func (m *Metrics) SetRRDP(servers []rrdp.ServerMetrics) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.rrdp = servers
}

// Time returns when the metrics were collected.
func (m *Metrics) Time() time.Time {
	return m.time
}

// Timestamp returns Time as seconds since the Unix epoch.
func (m *Metrics) Timestamp() int64 {
	return m.time.Unix()
}

// TALs returns the trust anchor metrics in the order they were pushed.
func (m *Metrics) TALs() []TALMetrics {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return m.tals[:len(m.tals):len(m.tals)]
}

// Rsync returns the rsync module metrics.
func (m *Metrics) Rsync() []rsync.ModuleMetrics {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return m.rsync[:len(m.rsync):len(m.rsync)]
}

// RRDP returns the RRDP server metrics.
func (m *Metrics) RRDP() []rrdp.ServerMetrics {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return m.rrdp[:len(m.rrdp):len(m.rrdp)]
}

// RsyncComplete returns whether every rsync module was fetched successfully.
// A module that failed or whose status could not be determined makes the run
// incomplete.
//
// Without any rsync modules the run counts as complete. Use RsyncConfigured
// to tell that case apart.
func (m *Metrics) RsyncComplete() bool {
	return fetch.AllSucceeded(m.Rsync())
}

// RsyncConfigured returns whether any rsync module metrics were reported.
func (m *Metrics) RsyncConfigured() bool {
	return len(m.Rsync()) != 0
}

// RRDPComplete is the RRDP counterpart of RsyncComplete.
func (m *Metrics) RRDPComplete() bool {
	return fetch.AllSucceeded(m.RRDP())
}

// Totals returns the number of ROAs and VRPs summed over all trust anchors.
func (m *Metrics) Totals() (roas, vrps uint64) {
	for _, t := range m.TALs() {
		roas += uint64(t.ROAs)
		vrps += uint64(t.VRPs)
	}
	return roas, vrps
}

// Summary returns one line per trust anchor in the order they were pushed.
func (m *Metrics) Summary() []string {
	tals := m.TALs()
	lines := make([]string, 0, len(tals))
	for _, t := range tals {
		lines = append(lines, fmt.Sprintf("%s: %d valid ROAs, %d VRPs.", t.Name(), t.ROAs, t.VRPs))
	}
	return lines
}

// LogSummary writes a "Summary:" header followed by the Summary lines to
// sink.
func (m *Metrics) LogSummary(sink Sink) {
	sink.Info("Summary:")
	for _, line := range m.Summary() {
		sink.Info(line)
	}
}
