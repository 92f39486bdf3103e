// Copyright 2025 LoaniFi
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"loanifi/backend/conversation"
	"loanifi/backend/store"
)

// Handler provides HTTP handlers for the chat API
type Handler struct {
	service *Service
}

// NewHandler creates a new chat handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers all chat routes with a gorilla/mux router
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/v1/chat/message", h.PostMessage).Methods("POST")
	r.HandleFunc("/api/v1/chat/history/{conversation_id}", h.GetHistory).Methods("GET")
	r.HandleFunc("/api/v1/chat/conversations/user/{user_id}", h.ListUserConversations).Methods("GET")
}

// PostMessage handles POST /api/v1/chat/message
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		h.writeError(w, "message is required", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		h.writeError(w, "user_id is required", http.StatusBadRequest)
		return
	}

	resp, err := h.service.ProcessMessage(r.Context(), req)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// HistoryResponse is the payload for GET /api/v1/chat/history/{conversation_id}
type HistoryResponse struct {
	ConversationID string                 `json:"conversation_id"`
	Messages       []conversation.Message `json:"messages"`
}

// GetHistory handles GET /api/v1/chat/history/{conversation_id}
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	conversationID := mux.Vars(r)["conversation_id"]

	messages, err := h.service.GetHistory(r.Context(), conversationID)
	if err != nil {
		if errors.Is(err, store.ErrConversationNotFound) {
			h.writeError(w, "Conversation not found", http.StatusNotFound)
			return
		}
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if messages == nil {
		messages = []conversation.Message{}
	}

	h.writeJSON(w, http.StatusOK, HistoryResponse{
		ConversationID: conversationID,
		Messages:       messages,
	})
}

// ConversationSummary is one entry in the user's conversation list
type ConversationSummary struct {
	ConversationID    string                 `json:"conversation_id"`
	CurrentAgent      conversation.AgentType `json:"current_agent"`
	Status            conversation.Status    `json:"status"`
	Stage             conversation.Stage     `json:"stage"`
	ApplicationNumber string                 `json:"application_number,omitempty"`
	UpdatedAt         string                 `json:"updated_at"`
}

// ListConversationsResponse is the payload for the user conversation list
type ListConversationsResponse struct {
	UserID        string                `json:"user_id"`
	Conversations []ConversationSummary `json:"conversations"`
	Total         int                   `json:"total"`
}

// ListUserConversations handles GET /api/v1/chat/conversations/user/{user_id}
func (h *Handler) ListUserConversations(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	conversations, total, err := h.service.ListUserConversations(r.Context(), userID, limit, offset)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	summaries := make([]ConversationSummary, 0, len(conversations))
	for _, conv := range conversations {
		summary := ConversationSummary{
			ConversationID: conv.ID,
			CurrentAgent:   conv.CurrentAgent,
			Status:         conv.Status,
			UpdatedAt:      conv.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
		if conv.Context != nil {
			summary.Stage = conv.Context.CurrentStage()
			summary.ApplicationNumber = conv.Context.ApplicationNumber
		}
		summaries = append(summaries, summary)
	}

	h.writeJSON(w, http.StatusOK, ListConversationsResponse{
		UserID:        userID,
		Conversations: summaries,
		Total:         total,
	})
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Healthy(r.Context()); err != nil {
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (h *Handler) writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   http.StatusText(status),
		"message": message,
	})
}
