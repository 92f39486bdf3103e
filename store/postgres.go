// Copyright 2025 LoaniFi
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq" // postgres driver

	"loanifi/backend/conversation"
)

// PostgresRepository implements ConversationRepository using PostgreSQL
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// OpenPostgres opens and pings a PostgreSQL connection
func OpenPostgres(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return db, nil
}

// CreateConversation creates a new conversation record
func (r *PostgresRepository) CreateConversation(ctx context.Context, conv *Conversation) error {
	state, err := marshalContext(conv.Context)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO conversations (
			conversation_id, user_id, current_agent, status, conversation_state,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.db.ExecContext(ctx, query,
		conv.ID, conv.UserID, string(conv.CurrentAgent), string(conv.Status),
		state, conv.CreatedAt, conv.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return ErrConversationExists
		}
		return fmt.Errorf("failed to create conversation: %w", err)
	}

	return nil
}

// GetConversation retrieves a conversation by ID
func (r *PostgresRepository) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	query := `
		SELECT conversation_id, user_id, current_agent, status, conversation_state,
			   created_at, updated_at
		FROM conversations
		WHERE conversation_id = $1
	`

	var conv Conversation
	var currentAgent, status string
	var state []byte

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&conv.ID, &conv.UserID, &currentAgent, &status, &state,
		&conv.CreatedAt, &conv.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	conv.CurrentAgent = conversation.AgentType(currentAgent)
	conv.Status = conversation.Status(status)

	conv.Context, err = conversation.UnmarshalContext(state)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation state: %w", err)
	}

	return &conv, nil
}

// UpdateConversation updates an existing conversation record
func (r *PostgresRepository) UpdateConversation(ctx context.Context, conv *Conversation) error {
	state, err := marshalContext(conv.Context)
	if err != nil {
		return err
	}

	query := `
		UPDATE conversations SET
			current_agent = $2, status = $3, conversation_state = $4, updated_at = $5
		WHERE conversation_id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		conv.ID, string(conv.CurrentAgent), string(conv.Status), state, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to update conversation: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rows == 0 {
		return ErrConversationNotFound
	}

	return nil
}

// ListConversationsByUser lists a user's conversations, newest first
func (r *PostgresRepository) ListConversationsByUser(ctx context.Context, userID string, limit, offset int) ([]Conversation, int, error) {
	countQuery := `SELECT COUNT(*) FROM conversations WHERE user_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count conversations: %w", err)
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT conversation_id, user_id, current_agent, status, conversation_state,
			   created_at, updated_at
		FROM conversations
		WHERE user_id = $1
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var conversations []Conversation
	for rows.Next() {
		var conv Conversation
		var currentAgent, status string
		var state []byte

		if err := rows.Scan(
			&conv.ID, &conv.UserID, &currentAgent, &status, &state,
			&conv.CreatedAt, &conv.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan conversation: %w", err)
		}

		conv.CurrentAgent = conversation.AgentType(currentAgent)
		conv.Status = conversation.Status(status)

		conv.Context, err = conversation.UnmarshalContext(state)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to unmarshal conversation state: %w", err)
		}

		conversations = append(conversations, conv)
	}

	return conversations, total, nil
}

// CreateApplication creates a new loan application record
func (r *PostgresRepository) CreateApplication(ctx context.Context, app *LoanApplication) error {
	query := `
		INSERT INTO loan_applications (
			application_number, conversation_id, user_id, status, loan_amount,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		app.ApplicationNumber, app.ConversationID, app.UserID, app.Status,
		app.LoanAmount, app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return ErrApplicationExists
		}
		return fmt.Errorf("failed to create loan application: %w", err)
	}

	return nil
}

// GetApplication retrieves a loan application by its number
func (r *PostgresRepository) GetApplication(ctx context.Context, applicationNumber string) (*LoanApplication, error) {
	query := `
		SELECT application_number, conversation_id, user_id, status, loan_amount,
			   created_at, updated_at
		FROM loan_applications
		WHERE application_number = $1
	`

	var app LoanApplication
	err := r.db.QueryRowContext(ctx, query, applicationNumber).Scan(
		&app.ApplicationNumber, &app.ConversationID, &app.UserID, &app.Status,
		&app.LoanAmount, &app.CreatedAt, &app.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrApplicationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get loan application: %w", err)
	}

	return &app, nil
}

// UpdateApplicationStatus updates a loan application's status
func (r *PostgresRepository) UpdateApplicationStatus(ctx context.Context, applicationNumber, status string) error {
	query := `
		UPDATE loan_applications SET status = $2, updated_at = $3
		WHERE application_number = $1
	`

	result, err := r.db.ExecContext(ctx, query, applicationNumber, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update loan application: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rows == 0 {
		return ErrApplicationNotFound
	}

	return nil
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func marshalContext(c *conversation.Context) ([]byte, error) {
	if c == nil {
		return json.Marshal(struct{}{})
	}
	data, err := c.Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal conversation state: %w", err)
	}
	return data, nil
}
