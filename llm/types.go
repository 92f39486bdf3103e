// Copyright 2025 LoaniFi
// SPDX-License-Identifier: Apache-2.0

// Package llm defines the request/response contract with the external
// language model: chat messages, function (tool) schemas, and the Client
// interface the agent turn protocol depends on. Provider implementations
// live in subpackages.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
)

// Roles for chat messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleFunction  = "function"
)

// Message is one chat message sent to or received from the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`

	// Name is the function name for role "function" messages.
	Name string `json:"name,omitempty"`

	// FunctionCall echoes a model-requested call on assistant messages.
	FunctionCall *FunctionCall `json:"function_call,omitempty"`
}

// FunctionCall is a model-requested tool invocation.
type FunctionCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// FunctionDef describes a callable tool offered to the model. Parameters is
// a JSON-schema object; required parameter names must match the tool surface
// exactly for model compatibility.
type FunctionDef struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// ChatRequest encapsulates one completion call.
type ChatRequest struct {
	Messages    []Message     `json:"messages"`
	Functions   []FunctionDef `json:"functions,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Model       string        `json:"model,omitempty"`
}

// ChatResponse is the model's reply: either text content or a function call.
type ChatResponse struct {
	Content      string        `json:"content"`
	FunctionCall *FunctionCall `json:"function_call,omitempty"`
	Model        string        `json:"model,omitempty"`
	TokensUsed   int           `json:"tokens_used,omitempty"`
	FinishReason string        `json:"finish_reason,omitempty"`
}

// Client is the boundary to the external model endpoint.
type Client interface {
	ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// APIError is an error returned by a model endpoint.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Provider, e.Message)
}

// IsRateLimitError reports whether the error is a rate-limit rejection.
func (e *APIError) IsRateLimitError() bool {
	return e.StatusCode == 429
}

// IsAuthError reports whether the error is an authentication failure.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == 401
}
