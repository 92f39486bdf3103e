// Copyright 2025 LoaniFi
// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"context"
	"encoding/json"

	"loanifi/backend/conversation"
	"loanifi/backend/llm"
	"loanifi/backend/shared/logger"
)

// Turn protocol defaults.
const (
	turnTemperature = 0.7
	turnMaxTokens   = 1000
)

// apologyReply is the fixed user-facing reply for any failure during a turn.
const apologyReply = "I apologize, but I'm having trouble processing your request. Could you please try again?"

// Runner executes one conversation turn against an agent: first model call
// with the agent's tool schemas, at most one synchronous tool invocation,
// and an optional second model call to produce the final user-facing text.
//
// Every failure inside the turn (prompt assembly, model call, or tool
// backend) is caught here: the context is restored to its pre-turn value,
// the reply becomes a fixed apology, and the turn result carries the error
// flag. The conversation stays usable on the next turn.
type Runner struct {
	client llm.Client
	log    *logger.Logger
}

// NewRunner creates a turn runner backed by the given model client.
func NewRunner(client llm.Client) *Runner {
	return &Runner{
		client: client,
		log:    logger.New("agents.runner"),
	}
}

// Process runs one turn of the given agent.
func (r *Runner) Process(ctx context.Context, agent Agent, userMessage string, history []conversation.Message, conv *conversation.Context) TurnResult {
	snapshot, err := conv.Marshal()
	if err != nil {
		return r.fail(agent, conv, nil, "context_snapshot_failed", err)
	}

	messages := agent.BuildPrompt(userMessage, history, conv)

	first, err := r.client.ChatCompletion(ctx, llm.ChatRequest{
		Messages:    messages,
		Functions:   agent.Tools(),
		Temperature: turnTemperature,
		MaxTokens:   turnMaxTokens,
	})
	if err != nil {
		return r.fail(agent, conv, snapshot, "model_call_failed", err)
	}

	reply := first.Content

	// At most one tool call is serviced per turn.
	if first.FunctionCall != nil {
		name := ToolName(first.FunctionCall.Name)

		toolResult, err := agent.HandleTool(ctx, name, first.FunctionCall.Arguments, conv)
		if err != nil {
			return r.fail(agent, conv, snapshot, "tool_call_failed", err)
		}

		payload, err := json.Marshal(toolResult)
		if err != nil {
			return r.fail(agent, conv, snapshot, "tool_result_marshal_failed", err)
		}

		messages = append(messages,
			llm.Message{Role: llm.RoleAssistant, FunctionCall: first.FunctionCall},
			llm.Message{Role: llm.RoleFunction, Name: string(name), Content: string(payload)},
		)

		// Second call carries no tools; it only phrases the final reply.
		second, err := r.client.ChatCompletion(ctx, llm.ChatRequest{
			Messages:    messages,
			Temperature: turnTemperature,
			MaxTokens:   turnMaxTokens,
		})
		if err != nil {
			return r.fail(agent, conv, snapshot, "model_call_failed", err)
		}
		reply = second.Content
	}

	result := agent.PostProcess(reply, conv)

	r.log.Info(conv.ConversationID, "", "agent_processed", map[string]interface{}{
		"agent":          string(agent.Type()),
		"message_length": len(userMessage),
		"should_handoff": result.ShouldHandoff,
	})

	return result
}

// fail restores the pre-turn context and produces the apology result.
func (r *Runner) fail(agent Agent, conv *conversation.Context, snapshot []byte, event string, err error) TurnResult {
	r.log.ErrorWithErr(conv.ConversationID, "", event, err, map[string]interface{}{
		"agent": string(agent.Type()),
	})

	if snapshot != nil {
		if restored, rerr := conversation.UnmarshalContext(snapshot); rerr == nil {
			*conv = *restored
		}
	}

	return TurnResult{
		Reply: apologyReply,
		Agent: agent.Type(),
		Err:   true,
	}
}
