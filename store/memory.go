// Copyright 2025 LoaniFi
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"sync"
	"time"

	"loanifi/backend/conversation"
)

// MemoryRepository is an in-memory ConversationRepository for tests and
// local development.
type MemoryRepository struct {
	mu            sync.RWMutex
	conversations map[string]*Conversation
	applications  map[string]*LoanApplication
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		conversations: make(map[string]*Conversation),
		applications:  make(map[string]*LoanApplication),
	}
}

// CreateConversation creates a new conversation record
func (r *MemoryRepository) CreateConversation(ctx context.Context, conv *Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conversations[conv.ID]; ok {
		return ErrConversationExists
	}
	clone := *conv
	r.conversations[conv.ID] = &clone
	return nil
}

// GetConversation retrieves a conversation by ID
func (r *MemoryRepository) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conv, ok := r.conversations[id]
	if !ok {
		return nil, ErrConversationNotFound
	}
	clone := *conv
	return &clone, nil
}

// UpdateConversation updates an existing conversation record
func (r *MemoryRepository) UpdateConversation(ctx context.Context, conv *Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conversations[conv.ID]; !ok {
		return ErrConversationNotFound
	}
	clone := *conv
	clone.UpdatedAt = time.Now().UTC()
	r.conversations[conv.ID] = &clone
	return nil
}

// ListConversationsByUser lists a user's conversations
func (r *MemoryRepository) ListConversationsByUser(ctx context.Context, userID string, limit, offset int) ([]Conversation, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []Conversation
	for _, conv := range r.conversations {
		if conv.UserID == userID {
			matched = append(matched, *conv)
		}
	}

	total := len(matched)
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return nil, total, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, total, nil
}

// CreateApplication creates a new loan application record
func (r *MemoryRepository) CreateApplication(ctx context.Context, app *LoanApplication) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.applications[app.ApplicationNumber]; ok {
		return ErrApplicationExists
	}
	clone := *app
	r.applications[app.ApplicationNumber] = &clone
	return nil
}

// GetApplication retrieves a loan application by its number
func (r *MemoryRepository) GetApplication(ctx context.Context, applicationNumber string) (*LoanApplication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	app, ok := r.applications[applicationNumber]
	if !ok {
		return nil, ErrApplicationNotFound
	}
	clone := *app
	return &clone, nil
}

// UpdateApplicationStatus updates a loan application's status
func (r *MemoryRepository) UpdateApplicationStatus(ctx context.Context, applicationNumber, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	app, ok := r.applications[applicationNumber]
	if !ok {
		return ErrApplicationNotFound
	}
	app.Status = status
	app.UpdatedAt = time.Now().UTC()
	return nil
}

// Ping always succeeds
func (r *MemoryRepository) Ping(ctx context.Context) error {
	return nil
}

// MemoryHistoryStore is an in-memory HistoryStore for tests
type MemoryHistoryStore struct {
	mu      sync.RWMutex
	history map[string][]conversation.Message
}

// NewMemoryHistoryStore creates an empty in-memory history store
func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{history: make(map[string][]conversation.Message)}
}

// AppendMessages appends messages to the conversation's history
func (s *MemoryHistoryStore) AppendMessages(ctx context.Context, conversationID string, messages []conversation.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history[conversationID] = append(s.history[conversationID], messages...)
	return nil
}

// GetHistory returns the conversation's messages oldest first
func (s *MemoryHistoryStore) GetHistory(ctx context.Context, conversationID string, limit int) ([]conversation.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := s.history[conversationID]
	if limit > 0 && limit < len(messages) {
		messages = messages[:limit]
	}
	out := make([]conversation.Message, len(messages))
	copy(out, messages)
	return out, nil
}

// MemorySessionCache is an in-memory SessionCache for tests. It does not
// expire entries.
type MemorySessionCache struct {
	mu       sync.RWMutex
	sessions map[string][]byte
}

// NewMemorySessionCache creates an empty in-memory session cache
func NewMemorySessionCache() *MemorySessionCache {
	return &MemorySessionCache{sessions: make(map[string][]byte)}
}

// GetContext returns the cached context, or ErrCacheMiss
func (c *MemorySessionCache) GetContext(ctx context.Context, conversationID string) (*conversation.Context, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, ok := c.sessions[conversationID]
	if !ok {
		return nil, ErrCacheMiss
	}
	return conversation.UnmarshalContext(data)
}

// SetContext caches the context
func (c *MemorySessionCache) SetContext(ctx context.Context, conversationID string, conv *conversation.Context) error {
	data, err := conv.Marshal()
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[conversationID] = data
	return nil
}

// Invalidate drops the cached context
func (c *MemorySessionCache) Invalidate(ctx context.Context, conversationID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, conversationID)
	return nil
}
