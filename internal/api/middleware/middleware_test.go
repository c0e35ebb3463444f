package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/filepool/internal/api/shared"
	"github.com/phrazzld/filepool/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceMiddleware(t *testing.T) {
	base, logBuf := logger.GetTestLogger(t)

	var traceID string
	handler := NewTraceMiddleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/files/stats", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotEmpty(t, traceID)

	received := logger.FindLogEntry(t, logBuf, "request received")
	require.NotNil(t, received)
	assert.Equal(t, traceID, received["trace_id"])
	assert.Equal(t, "/api/files/stats", received["path"])

	inside := logger.FindLogEntry(t, logBuf, "inside handler")
	require.NotNil(t, inside)
	assert.Equal(t, traceID, inside["trace_id"], "handlers log through the request-scoped logger")
}

func TestTraceMiddleware_DistinctIDs(t *testing.T) {
	ids := make(map[string]bool)
	handler := NewTraceMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids[shared.GetTraceID(r.Context())] = true
	}))

	for i := 0; i < 3; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}
	assert.Len(t, ids, 3)
}

func TestCORSMiddleware(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		origin     string
		method     string
		wantOrigin string
		wantNext   bool
	}{
		{"preflight short-circuits", "*", http.MethodOptions, "*", false},
		{"get passes through", "https://example.org", http.MethodGet, "https://example.org", true},
		{"empty origin means any", "", http.MethodPost, "*", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called = false
			rec := httptest.NewRecorder()
			NewCORSMiddleware(tt.origin)(next).ServeHTTP(rec, httptest.NewRequest(tt.method, "/api/files/write", nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
			assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
			assert.Equal(t, tt.wantNext, called)
			if !tt.wantNext {
				assert.Empty(t, rec.Body.String())
			}
		})
	}
}
