// Copyright 2025 LoaniFi
// SPDX-License-Identifier: Apache-2.0

package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"loanifi/backend/llm"
)

// MockHTTPClient is a mock implementation of HTTPClient
type MockHTTPClient struct {
	mock.Mock
}

func (m *MockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*http.Response), args.Error(1)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestNewProvider_Success(t *testing.T) {
	provider, err := NewProvider(Config{APIKey: "test-api-key"})

	require.NoError(t, err)
	assert.NotNil(t, provider)
	assert.Equal(t, "openai", provider.Name())
	assert.Equal(t, DefaultBaseURL, provider.baseURL)
	assert.Equal(t, DefaultModel, provider.model)
	assert.True(t, provider.IsHealthy())
}

func TestNewProvider_MissingAPIKey(t *testing.T) {
	_, err := NewProvider(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestNewProvider_CustomConfig(t *testing.T) {
	provider, err := NewProvider(Config{
		APIKey:  "test-api-key",
		BaseURL: "https://llm.internal",
		Model:   "gpt-4o",
		Timeout: 30 * time.Second,
	})

	require.NoError(t, err)
	assert.Equal(t, "https://llm.internal", provider.baseURL)
	assert.Equal(t, "gpt-4o", provider.model)
}

func TestChatCompletion_TextReply(t *testing.T) {
	mockClient := new(MockHTTPClient)
	mockClient.On("Do", mock.Anything).Return(jsonResponse(200, `{
		"model": "gpt-4-turbo-preview",
		"choices": [{
			"message": {"role": "assistant", "content": "Hello! How can I help with your loan?"},
			"finish_reason": "stop"
		}],
		"usage": {"total_tokens": 42}
	}`), nil)

	provider, err := NewProvider(Config{APIKey: "test-api-key"})
	require.NoError(t, err)
	provider.client = mockClient

	resp, err := provider.ChatCompletion(context.Background(), llm.ChatRequest{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
		Temperature: 0.7,
	})

	require.NoError(t, err)
	assert.Equal(t, "Hello! How can I help with your loan?", resp.Content)
	assert.Nil(t, resp.FunctionCall)
	assert.Equal(t, 42, resp.TokensUsed)
	assert.True(t, provider.IsHealthy())
}

func TestChatCompletion_FunctionCall(t *testing.T) {
	mockClient := new(MockHTTPClient)
	mockClient.On("Do", mock.Anything).Return(jsonResponse(200, `{
		"choices": [{
			"message": {
				"role": "assistant",
				"content": "",
				"function_call": {
					"name": "check_basic_eligibility",
					"arguments": "{\"monthly_income\": 40000, \"employment_type\": \"salaried\"}"
				}
			},
			"finish_reason": "function_call"
		}],
		"usage": {"total_tokens": 51}
	}`), nil)

	provider, err := NewProvider(Config{APIKey: "test-api-key"})
	require.NoError(t, err)
	provider.client = mockClient

	resp, err := provider.ChatCompletion(context.Background(), llm.ChatRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "am I eligible?"}},
		Functions: []llm.FunctionDef{
			{Name: "check_basic_eligibility", Parameters: map[string]interface{}{"type": "object"}},
		},
	})

	require.NoError(t, err)
	require.NotNil(t, resp.FunctionCall)
	assert.Equal(t, "check_basic_eligibility", resp.FunctionCall.Name)

	var args map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.FunctionCall.Arguments, &args))
	assert.Equal(t, float64(40000), args["monthly_income"])
}

func TestChatCompletion_SendsFunctionCallAuto(t *testing.T) {
	mockClient := new(MockHTTPClient)
	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		body, _ := io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewBuffer(body))
		var payload map[string]interface{}
		if err := json.Unmarshal(body, &payload); err != nil {
			return false
		}
		return payload["function_call"] == "auto" && req.Header.Get("Authorization") == "Bearer test-api-key"
	})).Return(jsonResponse(200, `{"choices":[{"message":{"role":"assistant","content":"ok"}}],"usage":{"total_tokens":1}}`), nil)

	provider, err := NewProvider(Config{APIKey: "test-api-key"})
	require.NoError(t, err)
	provider.client = mockClient

	_, err = provider.ChatCompletion(context.Background(), llm.ChatRequest{
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
		Functions: []llm.FunctionDef{{Name: "route_to_agent"}},
	})
	require.NoError(t, err)
	mockClient.AssertExpectations(t)
}

func TestChatCompletion_EchoesFunctionCallArgumentsAsString(t *testing.T) {
	mockClient := new(MockHTTPClient)
	var captured []byte
	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		captured, _ = io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewBuffer(captured))
		return true
	})).Return(jsonResponse(200, `{"choices":[{"message":{"role":"assistant","content":"You qualify."}}],"usage":{"total_tokens":7}}`), nil)

	provider, err := NewProvider(Config{APIKey: "test-api-key"})
	require.NoError(t, err)
	provider.client = mockClient

	_, err = provider.ChatCompletion(context.Background(), llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: "am I eligible?"},
			{Role: llm.RoleAssistant, FunctionCall: &llm.FunctionCall{
				Name:      "check_basic_eligibility",
				Arguments: json.RawMessage(`{"monthly_income":50000}`),
			}},
			{Role: llm.RoleFunction, Name: "check_basic_eligibility", Content: `{"eligible":true}`},
		},
	})
	require.NoError(t, err)

	var payload struct {
		Messages []struct {
			Role         string `json:"role"`
			FunctionCall *struct {
				Name      string `json:"name"`
				Arguments string `json:"arguments"`
			} `json:"function_call"`
		} `json:"messages"`
	}
	// The API transports arguments as a JSON-encoded string; decoding the
	// field into a string fails if it were serialized as an object.
	require.NoError(t, json.Unmarshal(captured, &payload))
	require.Len(t, payload.Messages, 3)
	require.NotNil(t, payload.Messages[1].FunctionCall)
	assert.Equal(t, "check_basic_eligibility", payload.Messages[1].FunctionCall.Name)
	assert.JSONEq(t, `{"monthly_income":50000}`, payload.Messages[1].FunctionCall.Arguments)
}

func TestChatCompletion_APIError(t *testing.T) {
	mockClient := new(MockHTTPClient)
	mockClient.On("Do", mock.Anything).Return(jsonResponse(429, `{
		"error": {"message": "Rate limit reached", "type": "rate_limit_error"}
	}`), nil)

	provider, err := NewProvider(Config{APIKey: "test-api-key"})
	require.NoError(t, err)
	provider.client = mockClient

	_, err = provider.ChatCompletion(context.Background(), llm.ChatRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
	})

	require.Error(t, err)
	var apiErr *llm.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 429, apiErr.StatusCode)
	assert.True(t, apiErr.IsRateLimitError())
	assert.Contains(t, apiErr.Message, "Rate limit")
}

func TestChatCompletion_ServerErrorMarksUnhealthy(t *testing.T) {
	mockClient := new(MockHTTPClient)
	mockClient.On("Do", mock.Anything).Return(jsonResponse(500, `{"error":{"message":"upstream"}}`), nil)

	provider, err := NewProvider(Config{APIKey: "test-api-key"})
	require.NoError(t, err)
	provider.client = mockClient

	_, err = provider.ChatCompletion(context.Background(), llm.ChatRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
	})

	require.Error(t, err)
	assert.False(t, provider.IsHealthy())
}

func TestChatCompletion_NetworkError(t *testing.T) {
	mockClient := new(MockHTTPClient)
	mockClient.On("Do", mock.Anything).Return(nil, errors.New("connection refused"))

	provider, err := NewProvider(Config{APIKey: "test-api-key"})
	require.NoError(t, err)
	provider.client = mockClient

	_, err = provider.ChatCompletion(context.Background(), llm.ChatRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.False(t, provider.IsHealthy())
}
