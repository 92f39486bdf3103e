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

// UnderwriteAgent runs the risk assessment: debt-to-income, interest-rate
// pricing and the approval decision, via the underwriting calculator.
type UnderwriteAgent struct {
	log *logger.Logger
}

// NewUnderwriteAgent creates the underwriting agent.
func NewUnderwriteAgent() *UnderwriteAgent {
	return &UnderwriteAgent{log: logger.New("agent.underwrite")}
}

// Type returns the agent identifier.
func (a *UnderwriteAgent) Type() conversation.AgentType {
	return conversation.AgentUnderwrite
}

// BuildPrompt assembles the underwriting prompt.
func (a *UnderwriteAgent) BuildPrompt(userMessage string, history []conversation.Message, conv *conversation.Context) []llm.Message {
	return buildPrompt(underwritePrompt, userMessage, history, conv)
}

// Tools returns the underwriting tool schemas.
func (a *UnderwriteAgent) Tools() []llm.FunctionDef {
	return underwriteTools()
}

type calculateArgs struct {
	MonthlyIncome   float64 `json:"monthly_income"`
	ExistingEMIs    float64 `json:"existing_emis"`
	CreditScore     int     `json:"credit_score"`
	RequestedAmount float64 `json:"requested_amount"`
	TenureMonths    int     `json:"tenure_months"`
}

type rateArgs struct {
	CreditScore    int     `json:"credit_score"`
	EmploymentType string  `json:"employment_type"`
	MonthlyIncome  float64 `json:"monthly_income"`
}

// employmentType reads the customer's employment type from earlier stages,
// defaulting to salaried when never captured.
func employmentType(conv *conversation.Context) string {
	if conv.LoanRequirements != nil && conv.LoanRequirements.EmploymentType != "" {
		return conv.LoanRequirements.EmploymentType
	}
	if conv.BasicEligibility != nil && conv.BasicEligibility.EmploymentType != "" {
		return conv.BasicEligibility.EmploymentType
	}
	return underwriting.EmploymentSalaried
}

// HandleTool services eligibility calculation and rate lookups.
func (a *UnderwriteAgent) HandleTool(ctx context.Context, name ToolName, args json.RawMessage, conv *conversation.Context) (ToolResult, error) {
	switch name {
	case ToolCalculateEligibility:
		var req calculateArgs
		if err := json.Unmarshal(args, &req); err != nil || req.CreditScore == 0 {
			return failure(), nil
		}

		result := underwriting.Evaluate(underwriting.Input{
			MonthlyIncome:   req.MonthlyIncome,
			ExistingEMIs:    req.ExistingEMIs,
			CreditScore:     req.CreditScore,
			RequestedAmount: req.RequestedAmount,
			TenureMonths:    req.TenureMonths,
			EmploymentType:  employmentType(conv),
		})

		// A new attempt replaces any previous result.
		conv.UnderwritingResult = &result

		a.log.Info(conv.ConversationID, "", "eligibility_calculated", map[string]interface{}{
			"approved":        result.Approved,
			"approved_amount": result.ApprovedAmount,
			"interest_rate":   result.InterestRate,
			"dti_ratio":       result.DTIRatio,
			"risk_category":   result.RiskCategory,
		})

		return ToolResult{
			"approved":            result.Approved,
			"approved_amount":     result.ApprovedAmount,
			"max_eligible_amount": result.MaxEligibleAmount,
			"interest_rate":       result.InterestRate,
			"tenure_months":       result.TenureMonths,
			"monthly_emi":         result.MonthlyEMI,
			"dti_ratio":           result.DTIRatio,
			"risk_category":       result.RiskCategory,
			"credit_score":        result.CreditScore,
		}, nil

	case ToolDetermineInterestRate:
		var req rateArgs
		if err := json.Unmarshal(args, &req); err != nil || req.CreditScore == 0 || req.EmploymentType == "" {
			return failure(), nil
		}

		rate := underwriting.InterestRate(req.CreditScore, req.EmploymentType, req.MonthlyIncome)
		return ToolResult{
			"interest_rate": rate,
			"explanation": fmt.Sprintf("Rate based on credit score of %d and %s employment",
				req.CreditScore, req.EmploymentType),
		}, nil

	default:
		return failure(), nil
	}
}

// PostProcess hands off to sanction once the loan is approved.
func (a *UnderwriteAgent) PostProcess(reply string, conv *conversation.Context) TurnResult {
	result := TurnResult{Reply: reply, Agent: conversation.AgentUnderwrite}

	if conv.UnderwritingResult != nil && conv.UnderwritingResult.Approved {
		_ = conv.AdvanceStage(conversation.StageApproved)
		conv.NextAgent = conversation.AgentSanction
		result.ShouldHandoff = true
		result.NextAgent = conversation.AgentSanction
	}
	return result
}
