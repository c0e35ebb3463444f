package api

import (
	"github.com/phrazzld/filepool/internal/task"
)

// Common request/response structures

// ReadRequest is built from the query string of GET /api/files/read.
type ReadRequest struct {
	Path string `validate:"required"`
}

// WriteRequest defines the payload for POST /api/files/write.
type WriteRequest struct {
	Path    string `json:"path"    validate:"required"`
	Content string `json:"content" validate:"required"`
}

// CopyRequest defines the payload for POST /api/files/copy.
type CopyRequest struct {
	Source      string `json:"source"      validate:"required"`
	Destination string `json:"destination" validate:"required"`
}

// ProcessRequest defines the payload for POST /api/files/process.
type ProcessRequest struct {
	Path string `json:"path" validate:"required"`
}

// BatchRequest defines the payload for POST /api/files/batch.
type BatchRequest struct {
	Files     []string `json:"files"     validate:"required,min=1"`
	Operation string   `json:"operation" validate:"required"`
}

// BatchItemResponse is the per-file entry of a batch response.
type BatchItemResponse struct {
	File    string       `json:"file"`
	Success bool         `json:"success"`
	Data    *task.Result `json:"data,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string  `json:"status"`
	PID    int     `json:"pid"`
	Uptime float64 `json:"uptime"`
}
