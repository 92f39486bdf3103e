// Copyright 2025 LoaniFi
// SPDX-License-Identifier: Apache-2.0

// Package agents implements the specialized conversation agents that walk a
// customer through loan origination: engagement and qualification, document
// verification, underwriting, and sanction-letter issuance, plus the master
// agent that dispatches a fresh conversation. All variants implement the
// Agent interface and are driven by the shared turn Runner; there is no
// shared base struct, only the common contract.
package agents

import (
	"context"
	"encoding/json"

	"loanifi/backend/conversation"
	"loanifi/backend/llm"
)

// historyWindow is the number of trailing history messages included in a prompt.
const historyWindow = 10

// ToolName identifies one of the closed set of tools agents expose to the
// model. Agents match on it exhaustively; anything else is an unknown tool.
type ToolName string

const (
	ToolCaptureRequirements    ToolName = "capture_customer_requirements"
	ToolCheckBasicEligibility  ToolName = "check_basic_eligibility"
	ToolRouteToAgent           ToolName = "route_to_agent"
	ToolCheckDocumentStatus    ToolName = "check_document_status"
	ToolVerifyDocument         ToolName = "verify_document"
	ToolCheckCreditScore       ToolName = "check_credit_score"
	ToolCalculateEligibility   ToolName = "calculate_eligibility"
	ToolDetermineInterestRate  ToolName = "determine_interest_rate"
	ToolGenerateSanctionLetter ToolName = "generate_sanction_letter"
	ToolSendSanctionLetter     ToolName = "send_sanction_letter"
)

// ToolResult is the structured outcome of a tool invocation, serialized back
// to the model as the function-result message.
type ToolResult map[string]interface{}

// failure is the result for unknown tool names and malformed arguments.
// Tool-surface problems are reported to the model, not raised as errors.
func failure() ToolResult {
	return ToolResult{"success": false}
}

// TurnResult is what every agent returns at the end of a turn.
// If ShouldHandoff is set, NextAgent names a valid agent identifier.
type TurnResult struct {
	Reply         string                 `json:"reply"`
	Agent         conversation.AgentType `json:"agent"`
	ShouldHandoff bool                   `json:"should_handoff,omitempty"`
	NextAgent     conversation.AgentType `json:"next_agent,omitempty"`
	Completed     bool                   `json:"completed,omitempty"`
	Err           bool                   `json:"error,omitempty"`
}

// Agent is the common contract all specialized agents implement.
//
// During a turn the agent is lent mutable access to the conversation Context;
// the orchestrator persists it afterwards. HandleTool returns an error only
// for backend failures (bureau down, letter rendering failed); the Runner
// converts those into the apology reply. Unknown tool names and malformed
// arguments yield a failure ToolResult instead.
type Agent interface {
	Type() conversation.AgentType
	BuildPrompt(userMessage string, history []conversation.Message, conv *conversation.Context) []llm.Message
	Tools() []llm.FunctionDef
	HandleTool(ctx context.Context, name ToolName, args json.RawMessage, conv *conversation.Context) (ToolResult, error)
	PostProcess(reply string, conv *conversation.Context) TurnResult
}

// buildPrompt assembles the message list every agent sends to the model:
// the agent's system prompt (augmented with customer name and preferred
// language when known), up to the last historyWindow history turns, then
// the current user message.
func buildPrompt(systemPrompt, userMessage string, history []conversation.Message, conv *conversation.Context) []llm.Message {
	prompt := systemPrompt
	if conv.UserName != "" {
		prompt += "\n\nCustomer name: " + conv.UserName
	}
	if conv.PreferredLanguage != "" {
		prompt += "\nPreferred language: " + conv.PreferredLanguage
	}

	messages := []llm.Message{{Role: llm.RoleSystem, Content: prompt}}

	start := 0
	if len(history) > historyWindow {
		start = len(history) - historyWindow
	}
	for _, msg := range history[start:] {
		messages = append(messages, llm.Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	return append(messages, llm.Message{Role: llm.RoleUser, Content: userMessage})
}
