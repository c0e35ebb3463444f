package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/filepool/internal/api/shared"
	"github.com/phrazzld/filepool/internal/platform/logger"
	"github.com/phrazzld/filepool/internal/service"
	"github.com/phrazzld/filepool/internal/task"
)

// FileHandler handles the /api/files endpoints.
type FileHandler struct {
	fileService service.FileService
	logger      *slog.Logger
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(fileService service.FileService, logger *slog.Logger) *FileHandler {
	if fileService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("fileService cannot be nil for FileHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &FileHandler{
		fileService: fileService,
		logger:      logger.With(slog.String("component", "file_handler")),
	}
}

// ReadFile handles GET /api/files/read?path=
func (h *FileHandler) ReadFile(w http.ResponseWriter, r *http.Request) {
	req := ReadRequest{Path: r.URL.Query().Get("path")}
	if !validateRequest(w, r, &req, "Path is required") {
		return
	}

	result, err := h.fileService.ReadFile(r.Context(), req.Path)
	if err != nil {
		h.log(r).Error("error reading file", "path", req.Path, "error", err)
		HandleAPIError(w, r, err, "Failed to read file")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, result)
}

// WriteFile handles POST /api/files/write
func (h *FileHandler) WriteFile(w http.ResponseWriter, r *http.Request) {
	var req WriteRequest
	if !decodeAndValidate(w, r, &req, "Path and content are required") {
		return
	}

	result, err := h.fileService.WriteFile(r.Context(), req.Path, req.Content)
	if err != nil {
		h.log(r).Error("error writing file", "path", req.Path, "error", err)
		HandleAPIError(w, r, err, "Failed to write file")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, result)
}

// CopyFile handles POST /api/files/copy
func (h *FileHandler) CopyFile(w http.ResponseWriter, r *http.Request) {
	var req CopyRequest
	if !decodeAndValidate(w, r, &req, "Source and destination are required") {
		return
	}

	result, err := h.fileService.CopyFile(r.Context(), req.Source, req.Destination)
	if err != nil {
		h.log(r).Error("error copying file",
			"source", req.Source,
			"destination", req.Destination,
			"error", err)
		HandleAPIError(w, r, err, "Failed to copy file")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, result)
}

// ProcessFile handles POST /api/files/process
func (h *FileHandler) ProcessFile(w http.ResponseWriter, r *http.Request) {
	var req ProcessRequest
	if !decodeAndValidate(w, r, &req, "Path is required") {
		return
	}

	result, err := h.fileService.ProcessFile(r.Context(), req.Path)
	if err != nil {
		h.log(r).Error("error processing file", "path", req.Path, "error", err)
		HandleAPIError(w, r, err, "Failed to process file")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, result)
}

// ProcessBatch handles POST /api/files/batch. Every file gets an entry in
// the response; a failed file does not fail the request.
func (h *FileHandler) ProcessBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleAPIError(w, r, err, "Invalid request format")
		return
	}
	if len(req.Files) == 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Files array is required")
		return
	}
	if !validateRequest(w, r, &req, "Operation is required") {
		return
	}

	items, err := h.fileService.ProcessBatch(r.Context(), req.Files, task.Operation(req.Operation))
	if err != nil {
		h.log(r).Error("error processing batch",
			"operation", req.Operation,
			"files", len(req.Files),
			"error", err)
		HandleAPIError(w, r, err, "Failed to process batch")
		return
	}

	response := make([]BatchItemResponse, len(items))
	for i, item := range items {
		response[i] = BatchItemResponse{File: item.File, Success: item.Err == nil, Data: item.Result}
		if item.Err != nil {
			response[i].Error = GetSafeErrorMessage(item.Err, "Operation failed")
		}
	}

	shared.RespondWithList(w, r, response, len(response))
}

// GetStats handles GET /api/files/stats
func (h *FileHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithData(w, r, http.StatusOK, h.fileService.Stats())
}

func (h *FileHandler) log(r *http.Request) *slog.Logger {
	return logger.FromContextOrDefault(r.Context(), h.logger)
}
