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

package report

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rpki-rp/validator/pkg/metrics"
	"github.com/rpki-rp/validator/pkg/private/prom"
	"github.com/rpki-rp/validator/pkg/rpki/fetch"
	"github.com/rpki-rp/validator/private/runmetrics"
)

// Label names.
const (
	LabelTAL     = "tal"
	LabelModule  = "module"
	LabelServer  = "server"
	LabelOutcome = "outcome"
)

// Result values of the runs counter.
const (
	Success            = prom.Success
	ErrRsyncIncomplete = "err_rsync_incomplete"
)

// Exporter publishes run metrics as prometheus metrics. Every Publish
// replaces the values of the previous run.
type Exporter struct {
	lastUpdate    prometheus.Gauge
	rsyncComplete prometheus.Gauge
	talROAs       *prometheus.GaugeVec
	talVRPs       *prometheus.GaugeVec
	rsyncStatus   *prometheus.GaugeVec
	rsyncDuration *prometheus.GaugeVec
	rrdpStatus    *prometheus.GaugeVec
	rrdpSerial    *prometheus.GaugeVec
	rrdpDuration  *prometheus.GaugeVec
	runs          *prometheus.CounterVec
}

// NewExporter creates the exporter and registers its collectors.
func NewExporter(opts ...metrics.Option) *Exporter {
	auto := metrics.ApplyOptions(opts...).Auto()
	gauge := func(name, help string) prometheus.Gauge {
		return auto.NewGauge(prometheus.GaugeOpts{
			Namespace: metrics.Namespace,
			Name:      name,
			Help:      help,
		})
	}
	gaugeVec := func(name, help string, labels ...string) *prometheus.GaugeVec {
		return auto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metrics.Namespace,
			Name:      name,
			Help:      help,
		}, labels)
	}
	return &Exporter{
		lastUpdate: gauge("last_update_timestamp_seconds",
			"Unix time at which the metrics of the last run were collected."),
		rsyncComplete: gauge("rsync_complete",
			"Whether all rsync modules of the last run were fetched successfully."),
		talROAs: gaugeVec("tal_roas",
			"Number of valid ROAs per trust anchor.", LabelTAL),
		talVRPs: gaugeVec("tal_vrps",
			"Number of VRPs per trust anchor.", LabelTAL),
		rsyncStatus: gaugeVec("rsync_status",
			"Exit code of rsync per module, -1 if undetermined.", LabelModule, LabelOutcome),
		rsyncDuration: gaugeVec("rsync_duration_seconds",
			"Duration of the rsync fetch per module.", LabelModule),
		rrdpStatus: gaugeVec("rrdp_status",
			"HTTP status of the notification fetch per server, -1 if undetermined.",
			LabelServer, LabelOutcome),
		rrdpSerial: gaugeVec("rrdp_serial",
			"Serial number of the last update per server.", LabelServer),
		rrdpDuration: gaugeVec("rrdp_duration_seconds",
			"Duration of the RRDP update per server.", LabelServer),
		runs: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Name:      "runs_total",
			Help:      "Number of validation runs, by result.",
		}, []string{prom.LabelResult}),
	}
}

// Publish replaces all exported values with the values of m.
func (e *Exporter) Publish(m *runmetrics.Metrics) {
	e.lastUpdate.Set(float64(m.Timestamp()))
	complete := m.RsyncComplete()
	e.rsyncComplete.Set(boolToFloat(complete))
	if complete {
		e.runs.WithLabelValues(Success).Inc()
	} else {
		e.runs.WithLabelValues(ErrRsyncIncomplete).Inc()
	}

	e.talROAs.Reset()
	e.talVRPs.Reset()
	for _, t := range m.TALs() {
		// Duplicate trust anchors are summed up.
		e.talROAs.WithLabelValues(t.Name()).Add(float64(t.ROAs))
		e.talVRPs.WithLabelValues(t.Name()).Add(float64(t.VRPs))
	}

	e.rsyncStatus.Reset()
	e.rsyncDuration.Reset()
	for _, mod := range m.Rsync() {
		code := float64(mod.Status.ExitCode)
		if mod.Outcome() == fetch.Undetermined {
			code = -1
		}
		e.rsyncStatus.WithLabelValues(mod.Module, mod.Outcome().String()).Set(code)
		e.rsyncDuration.WithLabelValues(mod.Module).Set(mod.Duration.Seconds())
	}

	e.rrdpStatus.Reset()
	e.rrdpSerial.Reset()
	e.rrdpDuration.Reset()
	for _, srv := range m.RRDP() {
		code := float64(srv.NotifyStatus.Code)
		if srv.NotifyStatus.Err != nil {
			code = -1
		}
		e.rrdpStatus.WithLabelValues(srv.NotifyURI, srv.Outcome().String()).Set(code)
		e.rrdpSerial.WithLabelValues(srv.NotifyURI).Set(float64(srv.Serial))
		e.rrdpDuration.WithLabelValues(srv.NotifyURI).Set(srv.Duration.Seconds())
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

