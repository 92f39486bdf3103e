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

// stageToAgent is the static dispatch table the master uses for initial
// routing. Readiness for each transition is decided by the stage's own
// agent, never by the master.
var stageToAgent = map[conversation.Stage]conversation.AgentType{
	conversation.StageInitial:           conversation.AgentEngage,
	conversation.StageQualified:         conversation.AgentVerify,
	conversation.StageDocumentsVerified: conversation.AgentUnderwrite,
	conversation.StageApproved:          conversation.AgentSanction,
}

// MasterAgent greets the customer and dispatches the conversation to the
// specialist for the current pipeline stage.
type MasterAgent struct {
	log *logger.Logger
}

// NewMasterAgent creates the routing agent.
func NewMasterAgent() *MasterAgent {
	return &MasterAgent{log: logger.New("agent.master")}
}

// Type returns the agent identifier.
func (a *MasterAgent) Type() conversation.AgentType {
	return conversation.AgentMaster
}

// BuildPrompt assembles the routing prompt.
func (a *MasterAgent) BuildPrompt(userMessage string, history []conversation.Message, conv *conversation.Context) []llm.Message {
	return buildPrompt(masterPrompt, userMessage, history, conv)
}

// Tools returns the routing tool schema.
func (a *MasterAgent) Tools() []llm.FunctionDef {
	return masterTools()
}

type routeArgs struct {
	AgentType string `json:"agent_type"`
	Reason    string `json:"reason"`
}

// HandleTool records the model's routing request. Actual dispatch stays
// table-driven in PostProcess; the tool result only acknowledges the route.
func (a *MasterAgent) HandleTool(ctx context.Context, name ToolName, args json.RawMessage, conv *conversation.Context) (ToolResult, error) {
	switch name {
	case ToolRouteToAgent:
		var req routeArgs
		if err := json.Unmarshal(args, &req); err != nil || !conversation.ValidAgentType(req.AgentType) {
			return failure(), nil
		}
		a.log.Info(conv.ConversationID, "", "routing_to_agent", map[string]interface{}{
			"agent_type": req.AgentType,
			"reason":     req.Reason,
		})
		return ToolResult{
			"agent_type": req.AgentType,
			"reason":     req.Reason,
			"success":    true,
		}, nil
	default:
		return failure(), nil
	}
}

// PostProcess dispatches to the stage's specialist.
func (a *MasterAgent) PostProcess(reply string, conv *conversation.Context) TurnResult {
	result := TurnResult{Reply: reply, Agent: conversation.AgentMaster}
	if next, ok := stageToAgent[conv.CurrentStage()]; ok {
		conv.NextAgent = next
		result.ShouldHandoff = true
		result.NextAgent = next
	}
	return result
}
