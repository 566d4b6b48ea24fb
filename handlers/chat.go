package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/serisow/ragone/chat_store"
	"github.com/serisow/ragone/lockstore"
	"github.com/serisow/ragone/ragtype"
	"github.com/serisow/ragone/services/chat_service"
)

type ChatRequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
	Model     string `json:"model"`
}

type ChatResponse struct {
	SessionID string   `json:"session_id"`
	Answer    string   `json:"answer"`
	Model     string   `json:"model"`
	Sources   []string `json:"sources"`
}

// ChatHandler runs the answer chain and persists the finished turn. The
// append happens here, after a successful generation, so failed requests
// never leave a turn in the session log.
type ChatHandler struct {
	chain   *chat_service.Chain
	history chat_store.Store
	locks   *lockstore.LockStore
	logger  *slog.Logger
}

func NewChatHandler(chain *chat_service.Chain, history chat_store.Store, locks *lockstore.LockStore, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		chain:   chain,
		history: history,
		locks:   locks,
		logger:  logger,
	}
}

func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		writeJSONError(w, "Question cannot be empty", http.StatusBadRequest)
		return
	}

	// A missing session id starts a fresh conversation.
	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}

	result, err := h.chain.Answer(r.Context(), req.SessionID, req.Question, req.Model)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	// Serialize appends per session so concurrent requests cannot interleave
	// their history writes.
	unlock := h.locks.Lock("session:" + req.SessionID)
	err = h.history.Append(r.Context(), req.SessionID, ragtype.Turn{
		UserQuery: req.Question,
		Answer:    result.Answer,
		Model:     result.Model,
	})
	unlock()
	if err != nil {
		// The answer exists; losing one history turn degrades future rewrites
		// but is not worth failing the request over.
		h.logger.Error("Failed to persist chat turn",
			slog.String("session_id", req.SessionID),
			slog.String("error", err.Error()))
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		SessionID: req.SessionID,
		Answer:    result.Answer,
		Model:     result.Model,
		Sources:   result.Sources,
	})
}
