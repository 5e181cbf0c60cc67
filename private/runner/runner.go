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

// Package runner drives one validation run from the producers' report to a
// populated runmetrics.Metrics.
package runner

import (
	"context"
	"errors"
	"runtime"

	"github.com/opentracing/opentracing-go"
	"golang.org/x/sync/errgroup"

	"github.com/rpki-rp/validator/pkg/log"
	"github.com/rpki-rp/validator/pkg/private/serrors"
	"github.com/rpki-rp/validator/pkg/rpki/fetch"
	"github.com/rpki-rp/validator/pkg/rpki/rrdp"
	"github.com/rpki-rp/validator/pkg/rpki/rsync"
	"github.com/rpki-rp/validator/pkg/rpki/tal"
	"github.com/rpki-rp/validator/private/runmetrics"
)

// ErrUnknownTAL is returned if the report names a trust anchor that is not
// in the configured TAL directory.
var ErrUnknownTAL = errors.New("unknown trust anchor")

// Runner turns a Report into run metrics.
type Runner struct {
	// TALs are the configured trust anchors by name. If nil, every trust
	// anchor in the report is accepted and gets an identity without URIs.
	TALs map[string]*tal.Info
	// Parallelism bounds the number of trust anchors processed concurrently.
	// Zero means the number of CPUs.
	Parallelism int
}

// NewTALIndex indexes the trust anchors by name.
func NewTALIndex(infos []*tal.Info) map[string]*tal.Info {
	idx := make(map[string]*tal.Info, len(infos))
	for _, info := range infos {
		idx[info.Name()] = info
	}
	return idx
}

type indexed struct {
	idx     int
	metrics runmetrics.TALMetrics
}

// Run populates a new Metrics from report. The returned Metrics is complete:
// no further intake happens after Run returns.
func (r *Runner) Run(ctx context.Context, report *Report) (*runmetrics.Metrics, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "validation_run")
	defer span.Finish()
	logger := log.FromCtx(ctx)

	m := runmetrics.New()
	span.SetTag("collected_at", m.Timestamp())

	if err := r.processTALs(ctx, report.TALs, m); err != nil {
		span.SetTag("error", true)
		return nil, err
	}

	// Both lists are converted fully before they are handed over, so readers
	// never see a partial list.
	modules := make([]rsync.ModuleMetrics, 0, len(report.Rsync))
	for _, e := range report.Rsync {
		modules = append(modules, e.ModuleMetrics())
	}
	servers := make([]rrdp.ServerMetrics, 0, len(report.RRDP))
	for _, e := range report.RRDP {
		servers = append(servers, e.ServerMetrics())
	}
	m.SetRsync(modules)
	m.SetRRDP(servers)

	m.LogSummary(logger)
	roas, vrps := m.Totals()
	logger.Info("Validation run finished",
		"tals", len(m.TALs()), "roas", roas, "vrps", vrps,
		"rsync_modules", len(modules), "rrdp_servers", len(servers))
	switch {
	case !m.RsyncConfigured():
		logger.Info("No rsync modules reported, rsync completeness is vacuous")
	case !m.RsyncComplete():
		logger.Error("Rsync incomplete", "failed", failedModules(modules))
	}
	return m, nil
}

// processTALs resolves the trust anchors concurrently. Workers hand their
// results to a single collector; the results are pushed to m in report order
// once every worker has finished.
func (r *Runner) processTALs(
	ctx context.Context,
	entries []TALEntry,
	m *runmetrics.Metrics,
) error {
	limit := r.Parallelism
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	results := make(chan indexed)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	collected := make([]runmetrics.TALMetrics, len(entries))
	done := make(chan struct{})
	go func() {
		defer log.HandlePanic()
		defer close(done)
		for res := range results {
			collected[res.idx] = res.metrics
		}
	}()

	for i, e := range entries {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			info, err := r.resolve(e.Name)
			if err != nil {
				return err
			}
			tm := runmetrics.NewTALMetrics(info)
			tm.ROAs = e.ROAs
			tm.VRPs = e.VRPs
			select {
			case results <- indexed{idx: i, metrics: tm}:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}
	err := g.Wait()
	close(results)
	<-done
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, tm := range collected {
		m.PushTAL(tm)
	}
	return nil
}

func (r *Runner) resolve(name string) (*tal.Info, error) {
	if r.TALs == nil {
		return tal.NewInfo(name, nil, nil), nil
	}
	info, ok := r.TALs[name]
	if !ok {
		return nil, serrors.Join(ErrUnknownTAL, nil, "tal", name)
	}
	return info, nil
}

func failedModules(modules []rsync.ModuleMetrics) []string {
	var failed []string
	for _, mod := range modules {
		if mod.Outcome() != fetch.Success {
			failed = append(failed, mod.Module)
		}
	}
	return failed
}
