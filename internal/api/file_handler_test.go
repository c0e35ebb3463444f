package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/filepool/internal/events"
	"github.com/phrazzld/filepool/internal/platform/logger"
	"github.com/phrazzld/filepool/internal/service"
	"github.com/phrazzld/filepool/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Count   int             `json:"count"`
}

func newTestRouter(t *testing.T, svc service.FileService) http.Handler {
	t.Helper()
	log, _ := logger.GetTestLogger(t)
	h := NewFileHandler(svc, log)

	r := chi.NewRouter()
	r.Route("/api/files", func(r chi.Router) {
		r.Get("/read", h.ReadFile)
		r.Post("/write", h.WriteFile)
		r.Post("/copy", h.CopyFile)
		r.Post("/process", h.ProcessFile)
		r.Post("/batch", h.ProcessBatch)
		r.Get("/stats", h.GetStats)
	})
	return r
}

func newRealService(t *testing.T) service.FileService {
	t.Helper()
	log, _ := logger.GetTestLogger(t)
	emitter := events.NewInMemoryEventEmitter(log)
	pool := task.NewWorkerPool(task.WorkerPoolConfig{MaxSlots: 2}, task.NewFileExecutor(), emitter, log)
	svc, err := service.NewFileService(pool, emitter, log)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = svc.Shutdown(ctx)
	})
	return svc
}

func doRequest(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "body: %s", rec.Body.String())
	return rec, env
}

func mustJSON(t *testing.T, v interface{}) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestFileHandler_WriteReadCopyProcess(t *testing.T) {
	router := newTestRouter(t, newRealService(t))
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")

	rec, env := doRequest(t, router, http.MethodPost, "/api/files/write",
		mustJSON(t, WriteRequest{Path: path, Content: "hello world"}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	var written task.Result
	require.NoError(t, json.Unmarshal(env.Data, &written))
	assert.Equal(t, int64(11), written.Size)

	rec, env = doRequest(t, router, http.MethodGet, "/api/files/read?path="+url.QueryEscape(path), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var read task.Result
	require.NoError(t, json.Unmarshal(env.Data, &read))
	require.NotNil(t, read.Content)
	assert.Equal(t, "hello world", *read.Content)

	copyPath := filepath.Join(dir, "copy.txt")
	rec, _ = doRequest(t, router, http.MethodPost, "/api/files/copy",
		mustJSON(t, CopyRequest{Source: path, Destination: copyPath}))
	require.Equal(t, http.StatusOK, rec.Code)
	data, err := os.ReadFile(copyPath)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	rec, env = doRequest(t, router, http.MethodPost, "/api/files/process", mustJSON(t, ProcessRequest{Path: path}))
	require.Equal(t, http.StatusOK, rec.Code)
	var processed task.Result
	require.NoError(t, json.Unmarshal(env.Data, &processed))
	assert.Equal(t, filepath.Join(dir, "note_processed.txt"), processed.ProcessedFile)
	assert.Equal(t, int64(11), processed.ProcessedSize)
}

func TestFileHandler_BadRequests(t *testing.T) {
	router := newTestRouter(t, newRealService(t))

	tests := []struct {
		name    string
		method  string
		target  string
		body    string
		wantErr string
	}{
		{"read without path", http.MethodGet, "/api/files/read", "", "Path is required"},
		{"write without content", http.MethodPost, "/api/files/write", `{"path":"a.txt"}`, "Path and content are required"},
		{"write with empty body", http.MethodPost, "/api/files/write", "", "Path and content are required"},
		{"write with malformed body", http.MethodPost, "/api/files/write", `{"path":`, "Invalid request format"},
		{"copy without destination", http.MethodPost, "/api/files/copy", `{"source":"a"}`, "Source and destination are required"},
		{"process without path", http.MethodPost, "/api/files/process", `{}`, "Path is required"},
		{"batch without files", http.MethodPost, "/api/files/batch", `{"operation":"read"}`, "Files array is required"},
		{"batch with empty files", http.MethodPost, "/api/files/batch", `{"files":[],"operation":"read"}`, "Files array is required"},
		{"batch without operation", http.MethodPost, "/api/files/batch", `{"files":["a"]}`, "Operation is required"},
		{"batch with unsupported operation", http.MethodPost, "/api/files/batch", `{"files":["a"],"operation":"write"}`, `unsupported operation: "write"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := doRequest(t, router, tt.method, tt.target, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantErr, env.Error)
		})
	}
}

func TestFileHandler_ReadMissingFile(t *testing.T) {
	router := newTestRouter(t, newRealService(t))
	missing := filepath.Join(t.TempDir(), "missing.txt")

	rec, env := doRequest(t, router, http.MethodGet, "/api/files/read?path="+url.QueryEscape(missing), "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "File not found", env.Error)
}

func TestFileHandler_Batch(t *testing.T) {
	router := newTestRouter(t, newRealService(t))
	dir := t.TempDir()
	files := []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "missing.txt"), filepath.Join(dir, "c.txt")}
	require.NoError(t, os.WriteFile(files[0], []byte("aaa"), 0o644))
	require.NoError(t, os.WriteFile(files[2], []byte("ccc"), 0o644))

	rec, env := doRequest(t, router, http.MethodPost, "/api/files/batch",
		mustJSON(t, BatchRequest{Files: files, Operation: "read"}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, 3, env.Count)

	var items []BatchItemResponse
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 3)
	for i, item := range items {
		assert.Equal(t, files[i], item.File)
	}
	assert.True(t, items[0].Success)
	require.NotNil(t, items[0].Data)
	assert.Equal(t, "aaa", *items[0].Data.Content)
	assert.False(t, items[1].Success)
	assert.Equal(t, "File not found", items[1].Error)
	assert.Nil(t, items[1].Data)
	assert.True(t, items[2].Success)
}

func TestFileHandler_Stats(t *testing.T) {
	router := newTestRouter(t, newRealService(t))

	rec, env := doRequest(t, router, http.MethodGet, "/api/files/stats", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var stats map[string]int
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 2, stats["maxWorkers"])
	assert.Equal(t, 0, stats["queuedTasks"])
	assert.Contains(t, stats, "totalWorkers")
	assert.Contains(t, stats, "busyWorkers")
	assert.Contains(t, stats, "activeTasks")
}

// failingService returns err from every operation.
type failingService struct {
	service.FileService
	err error
}

func (f failingService) WriteFile(context.Context, string, string) (*task.Result, error) {
	return nil, f.err
}

func TestFileHandler_InternalErrorsAreSanitized(t *testing.T) {
	svc := failingService{err: errors.New("disk /dev/sda1 exploded")}
	router := newTestRouter(t, svc)

	rec, env := doRequest(t, router, http.MethodPost, "/api/files/write", `{"path":"a","content":"b"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to write file", env.Error)
	assert.NotContains(t, rec.Body.String(), "/dev/sda1")
}

func TestFileHandler_PoolClosed(t *testing.T) {
	svc := failingService{err: service.NewFileServiceError("write_file", "operation failed", task.ErrPoolClosed)}
	router := newTestRouter(t, svc)

	rec, env := doRequest(t, router, http.MethodPost, "/api/files/write", `{"path":"a","content":"b"}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Service is shutting down", env.Error)
}

func TestFileHandler_TaskTimeout(t *testing.T) {
	log, _ := logger.GetTestLogger(t)
	emitter := events.NewInMemoryEventEmitter(log)
	slow := task.ExecutorFunc(func(ctx context.Context, op task.Operation, payload task.Payload) (*task.Result, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	pool := task.NewWorkerPool(task.WorkerPoolConfig{MaxSlots: 1, TaskTimeout: 20 * time.Millisecond}, slow, emitter, log)
	svc, err := service.NewFileService(pool, emitter, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Shutdown(context.Background()) })
	router := newTestRouter(t, svc)

	rec, env := doRequest(t, router, http.MethodGet, "/api/files/read?path=slow.txt", "")

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Equal(t, "Operation timed out", env.Error)
}

func TestNewFileHandler_NilService(t *testing.T) {
	assert.Panics(t, func() { NewFileHandler(nil, nil) })
}

func TestHealthHandler(t *testing.T) {
	started := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	h := NewHealthHandler(started)
	h.now = func() time.Time { return started.Add(90 * time.Second) }

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "OK", body.Status)
	assert.Equal(t, os.Getpid(), body.PID)
	assert.Equal(t, 90.0, body.Uptime)
}

func TestNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "Not Found", env.Error)
}
