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

package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/rpki-rp/validator/pkg/log"
	"github.com/rpki-rp/validator/pkg/metrics"
	"github.com/rpki-rp/validator/pkg/private/serrors"
	"github.com/rpki-rp/validator/pkg/rpki/tal"
	"github.com/rpki-rp/validator/private/app"
	"github.com/rpki-rp/validator/private/app/launcher"
	"github.com/rpki-rp/validator/private/httpapi"
	"github.com/rpki-rp/validator/private/periodic"
	"github.com/rpki-rp/validator/private/report"
	"github.com/rpki-rp/validator/private/rpconfig"
	"github.com/rpki-rp/validator/private/runmetrics"
	"github.com/rpki-rp/validator/private/runner"
	"github.com/rpki-rp/validator/private/storage/cleaner"
	"github.com/rpki-rp/validator/private/storage/history"
)

// ExitRsyncIncomplete is the exit code of the run mode if rsync was
// incomplete and strict validation is configured.
const ExitRsyncIncomplete = 2

const historyCacheTTL = 5 * time.Second

var (
	globalCfg rpconfig.Config
	registry  = prometheus.NewRegistry()
)

func main() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	application := launcher.Application{
		TOMLConfig: &globalCfg,
		ShortName:  "RPKI metrics",
		Registerer: registry,
		Modes: []launcher.Mode{
			{
				Use:   "run",
				Short: "Collect the metrics of one validation run and report them",
				Main:  runMain,
			},
			{
				Use:   "serve",
				Short: "Collect metrics periodically and serve them over HTTP",
				Main:  serveMain,
			},
		},
	}
	application.Run()
}

func runMain(ctx context.Context) error {
	closer, err := setupTracing()
	if err != nil {
		return err
	}
	defer closer.Close()

	r, err := newRunner()
	if err != nil {
		return err
	}
	rep, err := runner.LoadReport(globalCfg.Resolve(globalCfg.Validation.Report))
	if err != nil {
		return err
	}
	m, err := r.Run(ctx, rep)
	if err != nil {
		return err
	}
	report.NewExporter(metrics.WithRegistry(registry)).Publish(m)
	if file := globalCfg.Metrics.Textfile; file != "" {
		if err := report.WriteTextfile(globalCfg.Resolve(file), registry); err != nil {
			return err
		}
	}
	if err := storeRun(ctx, m); err != nil {
		return err
	}
	report.WriteTable(os.Stdout, m, isatty.IsTerminal(os.Stdout.Fd()))

	if globalCfg.Validation.Strict && !m.RsyncComplete() {
		return app.WithExitCode(serrors.New("rsync incomplete"), ExitRsyncIncomplete)
	}
	return nil
}

func serveMain(ctx context.Context) error {
	closer, err := setupTracing()
	if err != nil {
		return err
	}
	defer closer.Close()

	r, err := newRunner()
	if err != nil {
		return err
	}

	var store *history.Store
	var cached *httpapi.CachedHistory
	if globalCfg.History.Path != "" {
		if store, err = history.Open(globalCfg.Resolve(globalCfg.History.Path), false); err != nil {
			return err
		}
		defer store.Close()
		cached = httpapi.NewCachedHistory(store, historyCacheTTL)
	}

	latest := &httpapi.Latest{}
	exporter := report.NewExporter(metrics.WithRegistry(registry))
	task := &runner.Task{
		Runner:     r,
		ReportFile: globalCfg.Resolve(globalCfg.Validation.Report),
		Handler: func(ctx context.Context, m *runmetrics.Metrics) {
			exporter.Publish(m)
			latest.Store(m)
			if store == nil {
				return
			}
			if _, err := store.Insert(ctx, m); err != nil {
				log.FromCtx(ctx).Error("Failed to store run", "err", err)
				return
			}
			cached.Flush()
		},
	}
	interval := globalCfg.Validation.Interval.Duration
	runs := periodic.StartWithMetrics(task, periodic.NewMetrics(registry, task.Name()),
		interval, interval)
	defer runs.Kill()
	runs.TriggerRun()

	if store != nil {
		pruner := cleaner.New(func(ctx context.Context) (int, error) {
			return store.Prune(ctx, globalCfg.History.KeepRuns)
		}, "history", newCleanerMetrics())
		prune := globalCfg.History.PruneInterval.Duration
		prunes := periodic.StartWithMetrics(pruner,
			periodic.NewMetrics(registry, pruner.Name()), prune, prune)
		defer prunes.Kill()
	}

	g, errCtx := errgroup.WithContext(ctx)
	if addr := globalCfg.Metrics.Prometheus; addr != "" {
		srv := &httpapi.Server{
			Latest:   latest,
			Gatherer: registry,
			Config:   httpapi.ConfigHandler(&globalCfg),
		}
		if cached != nil {
			srv.History = cached
		}
		server := &http.Server{
			Addr:              addr,
			Handler:           httpapi.Handler(srv),
			ReadHeaderTimeout: 10 * time.Second,
		}
		log.Info("Exposing HTTP API", "addr", addr)
		g.Go(func() error {
			defer log.HandlePanic()
			err := server.ListenAndServe()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return serrors.Wrap("serving HTTP API", err, "addr", addr)
			}
			return nil
		})
		g.Go(func() error {
			defer log.HandlePanic()
			<-errCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}
	g.Go(func() error {
		<-errCtx.Done()
		return nil
	})
	return g.Wait()
}

func newRunner() (*runner.Runner, error) {
	r := &runner.Runner{Parallelism: globalCfg.Validation.Parallelism}
	if dir := globalCfg.Validation.TALDir; dir != "" {
		infos, err := tal.ReadDir(globalCfg.Resolve(dir))
		if err != nil {
			return nil, serrors.Wrap("loading TALs", err, "dir", dir)
		}
		r.TALs = runner.NewTALIndex(infos)
		log.Info("Loaded trust anchors", "count", len(infos))
	}
	return r, nil
}

func storeRun(ctx context.Context, m *runmetrics.Metrics) error {
	if globalCfg.History.Path == "" {
		return nil
	}
	store, err := history.Open(globalCfg.Resolve(globalCfg.History.Path), false)
	if err != nil {
		return err
	}
	defer store.Close()
	id, err := store.Insert(ctx, m)
	if err != nil {
		return err
	}
	deleted, err := store.Prune(ctx, globalCfg.History.KeepRuns)
	if err != nil {
		return err
	}
	log.FromCtx(ctx).Debug("Stored run", "id", id, "pruned", deleted)
	return nil
}

func setupTracing() (io.Closer, error) {
	tracer, closer, err := globalCfg.Tracing.NewTracer(globalCfg.General.ID)
	if err != nil {
		return nil, serrors.Wrap("creating tracer", err)
	}
	opentracing.SetGlobalTracer(tracer)
	return closer, nil
}

func newCleanerMetrics() cleaner.Metrics {
	counter := func(name, help string) prometheus.Counter {
		c := prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "history",
			Name:      name,
			Help:      help,
		})
		registry.MustRegister(c)
		return c
	}
	return cleaner.Metrics{
		ErrorsTotal:  counter("prune_errors_total", "Number of failed history prunes."),
		RunsTotal:    counter("prune_runs_total", "Number of successful history prunes."),
		DeletedTotal: counter("pruned_runs_total", "Number of runs deleted from the history."),
	}
}
