package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/filepool/internal/events"
	"github.com/phrazzld/filepool/internal/task"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleEvent(t *testing.T) {
	m := New(prometheus.NewRegistry())
	ctx := context.Background()

	require.NoError(t, m.HandleEvent(ctx, events.NewTaskEvent(events.TaskStarted, 1, "read")))
	require.NoError(t, m.HandleEvent(ctx, events.NewTaskEvent(events.TaskStarted, 2, "read")))

	completed := events.NewTaskEvent(events.TaskCompleted, 1, "read")
	completed.ExecutionTime = 5 * time.Millisecond
	require.NoError(t, m.HandleEvent(ctx, completed))

	failed := events.NewTaskEvent(events.TaskFailed, 2, "read")
	failed.Error = "boom"
	require.NoError(t, m.HandleEvent(ctx, failed))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TasksStarted.WithLabelValues("read")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TasksFinished.WithLabelValues("read", "completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TasksFinished.WithLabelValues("read", "failed")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.TaskDuration))
}

func TestRegisterPoolGauges(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	stats := task.Stats{TotalSlots: 3, BusySlots: 2, QueuedTasks: 4, ActiveTasks: 2, MaxSlots: 8}
	m.RegisterPoolGauges(func() task.Stats { return stats })

	expected := `
# HELP filepool_pool_queued_tasks Tasks waiting for an execution unit
# TYPE filepool_pool_queued_tasks gauge
filepool_pool_queued_tasks 4
# HELP filepool_pool_slots Execution units currently alive
# TYPE filepool_pool_slots gauge
filepool_pool_slots 3
`
	err := testutil.GatherAndCompare(registry, strings.NewReader(expected),
		"filepool_pool_queued_tasks", "filepool_pool_slots")
	assert.NoError(t, err)

	count, err := testutil.GatherAndCount(registry, "filepool_pool_busy_slots", "filepool_pool_max_slots")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMiddleware(t *testing.T) {
	m := New(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/files/read", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for _, path := range []string{"/api/files/read?path=x", "/ok", "/ok"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/files/read", "404")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/ok", "200")))
}
