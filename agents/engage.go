// Copyright 2025 LoaniFi
// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"loanifi/backend/conversation"
	"loanifi/backend/llm"
	"loanifi/backend/shared/logger"
	"loanifi/backend/underwriting"
)

// Minimum monthly income for the first eligibility screen.
const (
	minIncomeSalaried = 15000.0
	minIncomeOther    = 25000.0
)

// EngageAgent qualifies a new lead: it captures the customer's loan
// requirements and runs the basic income screen.
type EngageAgent struct {
	log *logger.Logger
}

// NewEngageAgent creates the engagement agent.
func NewEngageAgent() *EngageAgent {
	return &EngageAgent{log: logger.New("agent.engage")}
}

// Type returns the agent identifier.
func (a *EngageAgent) Type() conversation.AgentType {
	return conversation.AgentEngage
}

// BuildPrompt assembles the engagement prompt.
func (a *EngageAgent) BuildPrompt(userMessage string, history []conversation.Message, conv *conversation.Context) []llm.Message {
	return buildPrompt(engagePrompt, userMessage, history, conv)
}

// Tools returns the engagement tool schemas.
func (a *EngageAgent) Tools() []llm.FunctionDef {
	return engageTools()
}

type eligibilityArgs struct {
	MonthlyIncome  float64 `json:"monthly_income"`
	EmploymentType string  `json:"employment_type"`
}

// HandleTool captures requirements and runs the basic eligibility screen.
func (a *EngageAgent) HandleTool(ctx context.Context, name ToolName, args json.RawMessage, conv *conversation.Context) (ToolResult, error) {
	switch name {
	case ToolCaptureRequirements:
		var req conversation.LoanRequirements
		if err := json.Unmarshal(args, &req); err != nil || req.Purpose == "" {
			return failure(), nil
		}
		conv.LoanRequirements = &req
		a.log.Info(conv.ConversationID, "", "customer_requirements_captured", map[string]interface{}{
			"loan_purpose":    req.Purpose,
			"loan_amount":     req.Amount,
			"tenure_months":   req.TenureMonths,
			"monthly_income":  req.MonthlyIncome,
			"employment_type": req.EmploymentType,
		})
		return ToolResult{
			"success": true,
			"message": "Requirements captured successfully",
		}, nil

	case ToolCheckBasicEligibility:
		var req eligibilityArgs
		if err := json.Unmarshal(args, &req); err != nil || req.EmploymentType == "" {
			return failure(), nil
		}

		minIncome := minIncomeOther
		if req.EmploymentType == underwriting.EmploymentSalaried {
			minIncome = minIncomeSalaried
		}
		eligible := req.MonthlyIncome >= minIncome

		conv.BasicEligibility = &conversation.BasicEligibility{
			Eligible:       eligible,
			MonthlyIncome:  req.MonthlyIncome,
			EmploymentType: req.EmploymentType,
		}

		a.log.Info(conv.ConversationID, "", "eligibility_checked", map[string]interface{}{
			"eligible": eligible,
			"income":   req.MonthlyIncome,
		})

		if eligible {
			return ToolResult{
				"eligible": true,
				"message": fmt.Sprintf(
					"You meet the basic eligibility criteria! With your income of ₹%.0f, you can proceed with the loan application.",
					req.MonthlyIncome),
			}, nil
		}
		return ToolResult{
			"eligible": false,
			"message": fmt.Sprintf(
				"Unfortunately, the minimum monthly income requirement is ₹%.0f for %s applicants.",
				minIncome, req.EmploymentType),
		}, nil

	default:
		return failure(), nil
	}
}

// PostProcess hands off to verification once the loan purpose is captured
// and the basic eligibility screen passed.
func (a *EngageAgent) PostProcess(reply string, conv *conversation.Context) TurnResult {
	result := TurnResult{Reply: reply, Agent: conversation.AgentEngage}

	hasRequirements := conv.LoanRequirements != nil && conv.LoanRequirements.Purpose != ""
	isEligible := conv.BasicEligibility != nil && conv.BasicEligibility.Eligible

	if hasRequirements && isEligible {
		_ = conv.AdvanceStage(conversation.StageQualified)
		conv.NextAgent = conversation.AgentVerify
		result.ShouldHandoff = true
		result.NextAgent = conversation.AgentVerify
	}
	return result
}
