// Copyright 2025 LoaniFi
// SPDX-License-Identifier: Apache-2.0

// Package orchestrator coordinates the loan-origination conversation: it
// owns the agent registry, runs one turn per incoming message, applies
// handoffs, and persists state across the Postgres/Mongo/Redis stores.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"loanifi/backend/agents"
	"loanifi/backend/conversation"
	"loanifi/backend/llm"
	"loanifi/backend/shared/logger"
	"loanifi/backend/store"
)

// Dependencies carries the external services the orchestrator wires into
// the agents.
type Dependencies struct {
	Client    llm.Client
	Bureau    agents.CreditBureau
	Verifier  agents.DocumentVerifier
	Renderer  agents.LetterRenderer
	Deliverer agents.LetterDeliverer

	Repository store.ConversationRepository
	History    store.HistoryStore
	Cache      store.SessionCache
}

// Service processes chat messages through the agent pipeline
type Service struct {
	runner *agents.Runner
	agents map[conversation.AgentType]agents.Agent

	repo    store.ConversationRepository
	history store.HistoryStore
	cache   store.SessionCache

	log *logger.Logger

	// locks serializes turns per conversation. Entries are evicted when a
	// conversation completes so the map only tracks live conversations.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates the orchestrator service with its full agent registry
func NewService(deps Dependencies) *Service {
	registry := map[conversation.AgentType]agents.Agent{
		conversation.AgentMaster:     agents.NewMasterAgent(),
		conversation.AgentEngage:     agents.NewEngageAgent(),
		conversation.AgentVerify:     agents.NewVerifyAgent(deps.Verifier, deps.Bureau),
		conversation.AgentUnderwrite: agents.NewUnderwriteAgent(),
		conversation.AgentSanction:   agents.NewSanctionAgent(deps.Renderer, deps.Deliverer),
	}

	return &Service{
		runner:  agents.NewRunner(&instrumentedClient{inner: deps.Client}),
		agents:  registry,
		repo:    deps.Repository,
		history: deps.History,
		cache:   deps.Cache,
		log:     logger.New("orchestrator"),
		locks:   make(map[string]*sync.Mutex),
	}
}

// ChatRequest is one incoming user message
type ChatRequest struct {
	ConversationID    string `json:"conversation_id,omitempty"`
	UserID            string `json:"user_id"`
	Message           string `json:"message"`
	UserName          string `json:"user_name,omitempty"`
	PreferredLanguage string `json:"preferred_language,omitempty"`
}

// ChatResponse is the assistant's reply for one turn
type ChatResponse struct {
	ConversationID    string                 `json:"conversation_id"`
	Reply             string                 `json:"reply"`
	Agent             conversation.AgentType `json:"agent"`
	Stage             conversation.Stage     `json:"stage"`
	Completed         bool                   `json:"completed"`
	ApplicationNumber string                 `json:"application_number,omitempty"`
}

// conversationLock returns the per-conversation mutex, creating it on first
// use. Turns for the same conversation are strictly serialized.
func (s *Service) conversationLock(conversationID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[conversationID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[conversationID] = lock
	}
	return lock
}

// releaseConversationLock drops a completed conversation's mutex entry. A
// later turn on the same conversation simply recreates it.
func (s *Service) releaseConversationLock(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, conversationID)
}

func newApplicationNumber() string {
	return "APP" + strings.ToUpper(uuid.NewString()[:8])
}

// ProcessMessage runs one turn: load or create the conversation, run the
// current agent, apply any handoff, and persist everything.
func (s *Service) ProcessMessage(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if req.Message == "" {
		return nil, fmt.Errorf("message is required")
	}
	if req.UserID == "" {
		return nil, fmt.Errorf("user_id is required")
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	lock := s.conversationLock(conversationID)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()

	conv, err := s.loadOrCreate(ctx, conversationID, req.UserID)
	if err != nil {
		return nil, err
	}

	if req.UserName != "" {
		conv.Context.UserName = req.UserName
	}
	if req.PreferredLanguage != "" {
		conv.Context.PreferredLanguage = req.PreferredLanguage
	}

	history, err := s.history.GetHistory(ctx, conversationID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	agent := s.agentFor(conv.CurrentAgent)
	result := s.runner.Process(ctx, agent, req.Message, history, conv.Context)

	status := "success"
	if result.Err {
		status = "error"
	}
	promTurnsTotal.WithLabelValues(string(result.Agent), status).Inc()
	promTurnDuration.WithLabelValues(string(result.Agent)).
		Observe(float64(time.Since(start).Milliseconds()))

	if result.ShouldHandoff && result.NextAgent != "" {
		promHandoffsTotal.WithLabelValues(string(conv.CurrentAgent), string(result.NextAgent)).Inc()
		conv.CurrentAgent = result.NextAgent
	}

	if result.Completed {
		conv.Status = conversation.StatusCompleted
		defer s.releaseConversationLock(conversationID)
	}

	if err := s.persistTurn(ctx, conv, req.Message, result.Reply, result.Agent); err != nil {
		return nil, err
	}

	return &ChatResponse{
		ConversationID:    conversationID,
		Reply:             result.Reply,
		Agent:             result.Agent,
		Stage:             conv.Context.CurrentStage(),
		Completed:         result.Completed,
		ApplicationNumber: conv.Context.ApplicationNumber,
	}, nil
}

// loadOrCreate fetches the conversation, preferring the session cache for
// its context, and creates the conversation plus its loan application on
// first contact.
func (s *Service) loadOrCreate(ctx context.Context, conversationID, userID string) (*store.Conversation, error) {
	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err == nil {
		if cached, cerr := s.cache.GetContext(ctx, conversationID); cerr == nil {
			conv.Context = cached
		}
		return conv, nil
	}
	if !errors.Is(err, store.ErrConversationNotFound) {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	now := time.Now().UTC()
	appNumber := newApplicationNumber()

	state := conversation.NewContext(conversationID)
	state.ApplicationNumber = appNumber

	conv = &store.Conversation{
		ID:           conversationID,
		UserID:       userID,
		CurrentAgent: conversation.AgentMaster,
		Status:       conversation.StatusActive,
		Context:      state,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateConversation(ctx, conv); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	app := &store.LoanApplication{
		ApplicationNumber: appNumber,
		ConversationID:    conversationID,
		UserID:            userID,
		Status:            string(conversation.StageInitial),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repo.CreateApplication(ctx, app); err != nil {
		return nil, fmt.Errorf("failed to create loan application: %w", err)
	}

	s.log.Info(conversationID, "", "conversation_created", map[string]interface{}{
		"user_id":            userID,
		"application_number": appNumber,
	})

	return conv, nil
}

// agentFor returns the registered agent, defaulting to master
func (s *Service) agentFor(agentType conversation.AgentType) agents.Agent {
	if agent, ok := s.agents[agentType]; ok {
		return agent
	}
	return s.agents[conversation.AgentMaster]
}

// persistTurn writes the turn's outcome to all three stores. Postgres is
// authoritative; a history or cache failure is logged but does not fail
// the turn.
func (s *Service) persistTurn(ctx context.Context, conv *store.Conversation, userMessage, reply string, agent conversation.AgentType) error {
	if err := s.repo.UpdateConversation(ctx, conv); err != nil {
		return fmt.Errorf("failed to persist conversation: %w", err)
	}

	if conv.Context.ApplicationNumber != "" {
		appStatus := string(conv.Context.CurrentStage())
		if err := s.repo.UpdateApplicationStatus(ctx, conv.Context.ApplicationNumber, appStatus); err != nil {
			s.log.ErrorWithErr(conv.ID, "", "application_status_update_failed", err, nil)
		}
	}

	messages := []conversation.Message{
		{Role: conversation.RoleUser, Content: userMessage},
		{Role: conversation.RoleAssistant, Content: reply, Agent: agent},
	}
	if err := s.history.AppendMessages(ctx, conv.ID, messages); err != nil {
		s.log.ErrorWithErr(conv.ID, "", "history_append_failed", err, nil)
	}

	if err := s.cache.SetContext(ctx, conv.ID, conv.Context); err != nil {
		s.log.ErrorWithErr(conv.ID, "", "session_cache_write_failed", err, nil)
	}

	return nil
}

// GetHistory returns a conversation's full message history
func (s *Service) GetHistory(ctx context.Context, conversationID string) ([]conversation.Message, error) {
	if _, err := s.repo.GetConversation(ctx, conversationID); err != nil {
		return nil, err
	}
	return s.history.GetHistory(ctx, conversationID, 0)
}

// ListUserConversations returns a user's conversations, newest first
func (s *Service) ListUserConversations(ctx context.Context, userID string, limit, offset int) ([]store.Conversation, int, error) {
	return s.repo.ListConversationsByUser(ctx, userID, limit, offset)
}

// Healthy reports whether the authoritative store is reachable
func (s *Service) Healthy(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
