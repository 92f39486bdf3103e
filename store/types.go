// Copyright 2025 LoaniFi
// SPDX-License-Identifier: Apache-2.0

// Package store persists conversation state across three backends:
// PostgreSQL holds the authoritative conversation record and loan
// applications, MongoDB keeps the append-only message history, and Redis
// caches hot session context between turns.
package store

import (
	"time"

	"loanifi/backend/conversation"
)

// Conversation is the authoritative per-conversation record. Context holds
// the typed pipeline state serialized as JSONB.
type Conversation struct {
	ID           string                 `json:"conversation_id"`
	UserID       string                 `json:"user_id"`
	CurrentAgent conversation.AgentType `json:"current_agent"`
	Status       conversation.Status    `json:"status"`
	Context      *conversation.Context  `json:"context"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// LoanApplication tracks one loan application through the pipeline. Status
// mirrors the conversation stage at the time of the last update.
type LoanApplication struct {
	ApplicationNumber string    `json:"application_number"`
	ConversationID    string    `json:"conversation_id"`
	UserID            string    `json:"user_id"`
	Status            string    `json:"status"`
	LoanAmount        float64   `json:"loan_amount"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
