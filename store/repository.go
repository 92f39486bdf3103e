// Copyright 2025 LoaniFi
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"

	"loanifi/backend/conversation"
)

// ConversationRepository defines the interface for authoritative
// conversation and loan-application persistence
type ConversationRepository interface {
	// Conversation operations
	CreateConversation(ctx context.Context, conv *Conversation) error
	GetConversation(ctx context.Context, id string) (*Conversation, error)
	UpdateConversation(ctx context.Context, conv *Conversation) error
	ListConversationsByUser(ctx context.Context, userID string, limit, offset int) ([]Conversation, int, error)

	// Loan application operations
	CreateApplication(ctx context.Context, app *LoanApplication) error
	GetApplication(ctx context.Context, applicationNumber string) (*LoanApplication, error)
	UpdateApplicationStatus(ctx context.Context, applicationNumber, status string) error

	// Utility
	Ping(ctx context.Context) error
}

// HistoryStore defines the interface for the append-only message history
type HistoryStore interface {
	AppendMessages(ctx context.Context, conversationID string, messages []conversation.Message) error
	GetHistory(ctx context.Context, conversationID string, limit int) ([]conversation.Message, error)
}

// SessionCache defines the interface for the hot session context cache.
// A miss returns ErrCacheMiss; callers fall back to the repository.
type SessionCache interface {
	GetContext(ctx context.Context, conversationID string) (*conversation.Context, error)
	SetContext(ctx context.Context, conversationID string, conv *conversation.Context) error
	Invalidate(ctx context.Context, conversationID string) error
}
