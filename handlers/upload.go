package handlers

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/serisow/ragone/ragtype"
	"github.com/serisow/ragone/services/document_service"
)

type UploadResponse struct {
	Message    string                    `json:"message"`
	DocumentID int                       `json:"document_id,omitempty"`
	Status     string                    `json:"status,omitempty"`
	Metadata   *ragtype.DocumentMetadata `json:"metadata,omitempty"`
}

type UploadHandler struct {
	coordinator *document_service.Coordinator
	logger      *slog.Logger
}

func NewUploadHandler(coordinator *document_service.Coordinator, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{
		coordinator: coordinator,
		logger:      logger,
	}
}

func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("Received file upload request")

	err := r.ParseMultipartForm(10 << 20) // 10 MB limit
	if err != nil {
		writeJSONError(w, "Failed to parse multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, "Failed to get file from form", http.StatusBadRequest)
		return
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		writeJSONError(w, "Failed to read file", http.StatusInternalServerError)
		return
	}

	h.logger.Debug("Starting document ingest",
		slog.String("filename", header.Filename),
		slog.String("content_type", header.Header.Get("Content-Type")),
		slog.Int64("size", header.Size))

	documentID, metadata, err := h.coordinator.Ingest(r.Context(), header.Filename, buf.Bytes())
	if err != nil {
		var validationErr *ragtype.ValidationError
		if errors.As(err, &validationErr) {
			writeJSONError(w, validationErr.Message, http.StatusBadRequest)
			return
		}
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{
		Message:    "File uploaded and processed successfully",
		DocumentID: documentID,
		Status:     string(ragtype.StatusIndexed),
		Metadata:   metadata,
	})
}
