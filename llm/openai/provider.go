// Copyright 2025 LoaniFi
// SPDX-License-Identifier: Apache-2.0

// Package openai implements the llm.Client interface against the OpenAI
// chat-completions API with function calling enabled.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"loanifi/backend/llm"
)

const (
	// DefaultBaseURL is the default OpenAI API endpoint
	DefaultBaseURL = "https://api.openai.com"

	// DefaultModel is used when a request does not name a model
	DefaultModel = "gpt-4-turbo-preview"

	// DefaultTimeout is the default HTTP timeout
	DefaultTimeout = 120 * time.Second

	// DefaultMaxTokens bounds the completion when the request leaves it unset
	DefaultMaxTokens = 1000
)

// HTTPClient is an interface for HTTP client operations (enables testing)
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config contains configuration for the OpenAI provider
type Config struct {
	APIKey  string        // Required: OpenAI API key
	BaseURL string        // Optional: API base URL (default: https://api.openai.com)
	Model   string        // Optional: default model
	Timeout time.Duration // Optional: HTTP timeout (default: 120s)
}

// Provider implements llm.Client for the OpenAI chat-completions API
type Provider struct {
	apiKey  string
	baseURL string
	model   string
	client  HTTPClient
	healthy bool
	mu      sync.RWMutex
}

// NewProvider creates a new OpenAI provider instance
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Provider{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		client:  &http.Client{Timeout: cfg.Timeout},
		healthy: true,
	}, nil
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return "openai"
}

// IsHealthy reports whether the last API interaction succeeded
func (p *Provider) IsHealthy() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.healthy
}

func (p *Provider) setHealthy(healthy bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.healthy = healthy
}

// wire types for the chat-completions endpoint

type apiRequest struct {
	Model        string            `json:"model"`
	Messages     []apiMessage      `json:"messages"`
	Functions    []llm.FunctionDef `json:"functions,omitempty"`
	FunctionCall string            `json:"function_call,omitempty"`
	Temperature  float64           `json:"temperature"`
	MaxTokens    int               `json:"max_tokens"`
}

// apiMessage is the request-side message encoding. The API transports
// function-call arguments as a JSON-encoded string, not an object, so
// assistant echoes convert llm.FunctionCall.Arguments back to a string here
// (the mirror of the response decoding below).
type apiMessage struct {
	Role         string           `json:"role"`
	Content      string           `json:"content"`
	Name         string           `json:"name,omitempty"`
	FunctionCall *apiFunctionCall `json:"function_call,omitempty"`
}

type apiFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

func toAPIMessages(messages []llm.Message) []apiMessage {
	out := make([]apiMessage, len(messages))
	for i, msg := range messages {
		out[i] = apiMessage{
			Role:    msg.Role,
			Content: msg.Content,
			Name:    msg.Name,
		}
		if msg.FunctionCall != nil {
			out[i].FunctionCall = &apiFunctionCall{
				Name:      msg.FunctionCall.Name,
				Arguments: string(msg.FunctionCall.Arguments),
			}
		}
	}
	return out
}

type apiResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role         string `json:"role"`
			Content      string `json:"content"`
			FunctionCall *struct {
				Name      string `json:"name"`
				Arguments string `json:"arguments"`
			} `json:"function_call"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// ChatCompletion sends one completion request. When the request carries
// function definitions, function_call is set to "auto" so the model may
// answer with either text or a tool invocation.
func (p *Provider) ChatCompletion(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	apiReq := apiRequest{
		Model:       model,
		Messages:    toAPIMessages(req.Messages),
		Temperature: req.Temperature,
		MaxTokens:   maxTokens,
	}
	if len(req.Functions) > 0 {
		apiReq.Functions = req.Functions
		apiReq.FunctionCall = "auto"
	}

	reqBody, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/v1/chat/completions", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		p.setHealthy(false)
		return nil, fmt.Errorf("openai API error: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 500 {
			p.setHealthy(false)
		}
		return nil, p.parseAPIError(resp.StatusCode, body)
	}

	p.setHealthy(true)

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	out := &llm.ChatResponse{
		Model:      apiResp.Model,
		TokensUsed: apiResp.Usage.TotalTokens,
	}
	if len(apiResp.Choices) > 0 {
		choice := apiResp.Choices[0]
		out.Content = choice.Message.Content
		out.FinishReason = choice.FinishReason
		if fc := choice.Message.FunctionCall; fc != nil {
			out.FunctionCall = &llm.FunctionCall{
				Name:      fc.Name,
				Arguments: json.RawMessage(fc.Arguments),
			}
		}
	}
	return out, nil
}

func (p *Provider) parseAPIError(statusCode int, body []byte) error {
	var errBody apiErrorBody
	message := string(body)
	if err := json.Unmarshal(body, &errBody); err == nil && errBody.Error.Message != "" {
		message = errBody.Error.Message
	}
	return &llm.APIError{
		Provider:   "openai",
		StatusCode: statusCode,
		Message:    message,
	}
}
