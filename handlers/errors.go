package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/serisow/ragone/ragtype"
)

func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeDomainError maps the typed service errors onto HTTP responses. Raw
// provider and store errors stay in the logs; clients only see stable
// messages.
func writeDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var validationErr *ragtype.ValidationError
	if errors.As(err, &validationErr) {
		writeJSONError(w, validationErr.Message, http.StatusBadRequest)
		return
	}

	var notFoundErr *ragtype.NotFoundError
	if errors.As(err, &notFoundErr) {
		writeJSONError(w, notFoundErr.Error(), http.StatusNotFound)
		return
	}

	var inconsistencyErr *ragtype.DeleteInconsistencyError
	if errors.As(err, &inconsistencyErr) {
		logger.Error("Delete left stores inconsistent",
			slog.Int("document_id", inconsistencyErr.DocumentID),
			slog.Bool("vectors_deleted", inconsistencyErr.VectorsDeleted),
			slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error":           "Document deletion did not complete; retry the delete",
			"document_id":     inconsistencyErr.DocumentID,
			"vectors_deleted": inconsistencyErr.VectorsDeleted,
		})
		return
	}

	var generationErr *ragtype.GenerationError
	if errors.As(err, &generationErr) {
		logger.Error("Generation failed",
			slog.String("model", generationErr.Model),
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to generate an answer", http.StatusInternalServerError)
		return
	}

	var retrievalErr *ragtype.RetrievalError
	if errors.As(err, &retrievalErr) {
		logger.Error("Retrieval failed", slog.String("error", err.Error()))
		writeJSONError(w, "Failed to retrieve document context", http.StatusInternalServerError)
		return
	}

	var ingestErr *ragtype.IngestError
	if errors.As(err, &ingestErr) {
		logger.Error("Ingest failed",
			slog.String("filename", ingestErr.Filename),
			slog.String("stage", ingestErr.Stage),
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to process document", http.StatusInternalServerError)
		return
	}

	logger.Error("Unhandled error", slog.String("error", err.Error()))
	writeJSONError(w, "Internal server error", http.StatusInternalServerError)
}
