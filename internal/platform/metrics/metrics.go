// Package metrics exposes Prometheus instrumentation for the task pool and
// the HTTP surface.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/filepool/internal/events"
	"github.com/phrazzld/filepool/internal/task"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "filepool"

// Metrics holds all Prometheus collectors of the service.
type Metrics struct {
	// Task lifecycle metrics
	TasksStarted  *prometheus.CounterVec
	TasksFinished *prometheus.CounterVec
	TaskDuration  *prometheus.HistogramVec

	// HTTP request metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	registerer prometheus.Registerer
}

// New creates the collectors and registers them with registerer.
// A nil registerer means prometheus.DefaultRegisterer.
func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &Metrics{
		TasksStarted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tasks_started_total",
				Help:      "Total number of tasks handed to an execution unit",
			},
			[]string{"operation"},
		),
		TasksFinished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tasks_finished_total",
				Help:      "Total number of finished tasks by outcome",
			},
			[]string{"operation", "status"}, // status: completed, failed
		),
		TaskDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "task_duration_seconds",
				Help:      "Time from submission to completion of successful tasks",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8), // 1ms to ~16s
			},
			[]string{"operation"},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		registerer: registerer,
	}
}

// RegisterPoolGauges exposes the pool statistics as gauges sampled at scrape
// time.
func (m *Metrics) RegisterPoolGauges(stats func() task.Stats) {
	factory := promauto.With(m.registerer)
	gauge := func(name, help string, value func(task.Stats) int) {
		factory.NewGaugeFunc(
			prometheus.GaugeOpts{Namespace: namespace, Subsystem: "pool", Name: name, Help: help},
			func() float64 { return float64(value(stats())) },
		)
	}

	gauge("slots", "Execution units currently alive",
		func(s task.Stats) int { return s.TotalSlots })
	gauge("busy_slots", "Execution units running a task",
		func(s task.Stats) int { return s.BusySlots })
	gauge("queued_tasks", "Tasks waiting for an execution unit",
		func(s task.Stats) int { return s.QueuedTasks })
	gauge("active_tasks", "Tasks currently running",
		func(s task.Stats) int { return s.ActiveTasks })
	gauge("max_slots", "Configured bound on execution units",
		func(s task.Stats) int { return s.MaxSlots })
}

// HandleEvent implements events.EventHandler.
func (m *Metrics) HandleEvent(_ context.Context, event *events.TaskEvent) error {
	switch event.Kind {
	case events.TaskStarted:
		m.TasksStarted.WithLabelValues(event.Operation).Inc()
	case events.TaskCompleted:
		m.TasksFinished.WithLabelValues(event.Operation, "completed").Inc()
		m.TaskDuration.WithLabelValues(event.Operation).Observe(event.ExecutionTime.Seconds())
	case events.TaskFailed:
		m.TasksFinished.WithLabelValues(event.Operation, "failed").Inc()
	}
	return nil
}

// Middleware records request count and latency labelled by the chi route
// pattern, so path parameters do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
