package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/serisow/ragone/ragtype"
	"github.com/serisow/ragone/services/document_service"
)

type DocumentListResponse struct {
	Documents []ragtype.Document `json:"documents"`
	Count     int                `json:"count"`
}

type DeleteRequest struct {
	DocumentID int `json:"document_id"`
}

type DocumentsHandler struct {
	coordinator *document_service.Coordinator
	logger      *slog.Logger
}

func NewDocumentsHandler(coordinator *document_service.Coordinator, logger *slog.Logger) *DocumentsHandler {
	return &DocumentsHandler{
		coordinator: coordinator,
		logger:      logger,
	}
}

func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	documents, err := h.coordinator.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list documents",
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to list documents", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, DocumentListResponse{
		Documents: documents,
		Count:     len(documents),
	})
}

func (h *DocumentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.DocumentID <= 0 {
		writeJSONError(w, "document_id must be a positive integer", http.StatusBadRequest)
		return
	}

	if err := h.coordinator.Delete(r.Context(), req.DocumentID); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Document deleted",
		"document_id": req.DocumentID,
	})
}
