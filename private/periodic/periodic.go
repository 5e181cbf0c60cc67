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

// Package periodic runs tasks periodically until they are stopped.
package periodic

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rpki-rp/validator/pkg/log"
)

// Values of the event type passed to Metrics.Events.
const (
	EventStop    = "stop"
	EventKill    = "kill"
	EventTrigger = "triggered"
)

// A Task that has to be periodically executed.
type Task interface {
	// Run executes the task once, it should return within the context's timeout.
	Run(context.Context)
	// Name returns the task's name for use in metrics and logs.
	Name() string
}

// Metrics are the metrics of a periodic task runner. All fields are optional.
type Metrics struct {
	Events    func(event string) prometheus.Counter
	Period    prometheus.Gauge
	Runtime   prometheus.Gauge
	StartTime prometheus.Gauge
}

func (m *Metrics) event(e string) {
	if m == nil || m.Events == nil {
		return
	}
	m.Events(e).Inc()
}

func (m *Metrics) setPeriod(p time.Duration) {
	if m == nil || m.Period == nil {
		return
	}
	m.Period.Set(p.Seconds())
}

func (m *Metrics) observe(start time.Time) {
	if m == nil {
		return
	}
	if m.StartTime != nil {
		m.StartTime.Set(float64(start.Unix()))
	}
	if m.Runtime != nil {
		m.Runtime.Set(time.Since(start).Seconds())
	}
}

// NewMetrics creates metrics for the task with the given name and registers
// them on reg.
func NewMetrics(reg prometheus.Registerer, name string) *Metrics {
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   "rpki",
		Subsystem:   "periodic",
		Name:        "events_total",
		Help:        "Number of events of periodic tasks.",
		ConstLabels: prometheus.Labels{"task": name},
	}, []string{"event_type"})
	gauge := func(n, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "rpki",
			Subsystem:   "periodic",
			Name:        n,
			Help:        help,
			ConstLabels: prometheus.Labels{"task": name},
		})
	}
	m := &Metrics{
		Events: func(e string) prometheus.Counter {
			return events.WithLabelValues(e)
		},
		Period:    gauge("period_seconds", "Period of the task."),
		Runtime:   gauge("runtime_seconds", "Duration of the last run of the task."),
		StartTime: gauge("start_time_seconds", "Unix time of the last start of the task."),
	}
	reg.MustRegister(events, m.Period, m.Runtime, m.StartTime)
	return m
}

// Runner runs a task periodically.
type Runner struct {
	task         Task
	ticker       *time.Ticker
	timeout      time.Duration
	stop         chan struct{}
	loopFinished chan struct{}
	ctx          context.Context
	cancelF      context.CancelFunc
	trigger      chan struct{}
	metrics      *Metrics
}

// Start creates and starts a new Runner to run the given task peridiocally.
// The timeout is used for the context timeout of the task. The timeout can be
// larger than the period. That means if a task takes a long time it will be
// immediately retriggered.
func Start(task Task, period, timeout time.Duration) *Runner {
	return StartWithMetrics(task, nil, period, timeout)
}

// StartWithMetrics is like Start but additionally reports metrics.
func StartWithMetrics(task Task, metrics *Metrics, period, timeout time.Duration) *Runner {
	ctx, cancelF := context.WithCancel(context.Background())
	logger := log.New("task", task.Name())
	ctx = log.CtxWith(ctx, logger)
	runner := &Runner{
		task:         task,
		ticker:       time.NewTicker(period),
		timeout:      timeout,
		stop:         make(chan struct{}),
		loopFinished: make(chan struct{}),
		ctx:          ctx,
		cancelF:      cancelF,
		trigger:      make(chan struct{}),
		metrics:      metrics,
	}
	logger.Info("Starting periodic task", "period", period, "timeout", timeout)
	metrics.setPeriod(period)
	go func() {
		defer log.HandlePanic()
		runner.runLoop()
	}()
	return runner
}

// Stop stops the periodic execution of the Runner.
// If the task is currently running this method will block until it is done.
func (r *Runner) Stop() {
	r.ticker.Stop()
	close(r.stop)
	<-r.loopFinished
	r.metrics.event(EventStop)
}

// Kill is like stop but it also cancels the context of the current running method.
func (r *Runner) Kill() {
	r.ticker.Stop()
	close(r.stop)
	r.cancelF()
	<-r.loopFinished
	r.metrics.event(EventKill)
}

// TriggerRun triggers the periodic task to run now.
// This does not impact the normal periodicity of this task.
// That means if the periodicity is 5m and you call TriggerRun() after 2 minutes,
// the next execution will be in 3 minutes.
//
// The method blocks until either the triggered run was started or the runner was stopped,
// in which case the triggered run will not be executed.
func (r *Runner) TriggerRun() {
	select {
	// Either we were stopped or we can put something in the trigger channel.
	case <-r.stop:
	case r.trigger <- struct{}{}:
		r.metrics.event(EventTrigger)
	}
}

func (r *Runner) runLoop() {
	defer close(r.loopFinished)
	defer r.cancelF()
	for {
		select {
		case <-r.stop:
			return
		case <-r.ticker.C:
			r.onTick()
		case <-r.trigger:
			r.onTick()
		}
	}
}

func (r *Runner) onTick() {
	select {
	// Make sure that stop case is evaluated first,
	// so that when we kill and both channels are ready we always go into stop first.
	case <-r.stop:
		return
	default:
		start := time.Now()
		ctx, cancelF := context.WithTimeout(r.ctx, r.timeout)
		r.task.Run(ctx)
		cancelF()
		r.metrics.observe(start)
	}
}
