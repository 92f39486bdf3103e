// Copyright 2025 LoaniFi
// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"loanifi/backend/conversation"
	"loanifi/backend/llm"
	"loanifi/backend/shared/logger"
)

// SanctionAgent produces and delivers the loan sanction letter, closing the
// origination pipeline.
type SanctionAgent struct {
	renderer  LetterRenderer
	deliverer LetterDeliverer
	log       *logger.Logger
}

// NewSanctionAgent creates the sanction agent with its letter services.
func NewSanctionAgent(renderer LetterRenderer, deliverer LetterDeliverer) *SanctionAgent {
	return &SanctionAgent{
		renderer:  renderer,
		deliverer: deliverer,
		log:       logger.New("agent.sanction"),
	}
}

// Type returns the agent identifier.
func (a *SanctionAgent) Type() conversation.AgentType {
	return conversation.AgentSanction
}

// BuildPrompt assembles the sanction prompt.
func (a *SanctionAgent) BuildPrompt(userMessage string, history []conversation.Message, conv *conversation.Context) []llm.Message {
	return buildPrompt(sanctionPrompt, userMessage, history, conv)
}

// Tools returns the sanction tool schemas.
func (a *SanctionAgent) Tools() []llm.FunctionDef {
	return sanctionTools()
}

type generateLetterArgs struct {
	CustomerName string  `json:"customer_name"`
	Email        string  `json:"email"`
	LoanAmount   float64 `json:"loan_amount"`
	InterestRate float64 `json:"interest_rate"`
	TenureMonths int     `json:"tenure_months"`
	MonthlyEMI   float64 `json:"monthly_emi"`
}

type sendLetterArgs struct {
	Email              string `json:"email"`
	SanctionLetterPath string `json:"sanction_letter_path"`
}

// HandleTool services letter generation and delivery.
func (a *SanctionAgent) HandleTool(ctx context.Context, name ToolName, args json.RawMessage, conv *conversation.Context) (ToolResult, error) {
	switch name {
	case ToolGenerateSanctionLetter:
		var req generateLetterArgs
		if err := json.Unmarshal(args, &req); err != nil || req.CustomerName == "" || req.Email == "" {
			return failure(), nil
		}

		appNumber := conv.ApplicationNumber
		if appNumber == "" {
			appNumber = "APP" + strings.ToUpper(uuid.NewString()[:8])
			conv.ApplicationNumber = appNumber
		}

		path, err := a.renderer.Render(ctx, SanctionLetter{
			CustomerName:      req.CustomerName,
			Email:             req.Email,
			LoanAmount:        req.LoanAmount,
			InterestRate:      req.InterestRate,
			TenureMonths:      req.TenureMonths,
			MonthlyEMI:        req.MonthlyEMI,
			ApplicationNumber: appNumber,
			SanctionDate:      time.Now().Format("2006-01-02"),
		})
		if err != nil {
			return nil, err
		}

		conv.SanctionLetterPath = path
		conv.SanctionLetterGenerated = true

		a.log.Info(conv.ConversationID, "", "sanction_letter_generated", map[string]interface{}{
			"application_number": appNumber,
			"customer":           req.CustomerName,
		})

		return ToolResult{
			"success": true,
			"path":    path,
			"message": "Sanction letter generated successfully",
		}, nil

	case ToolSendSanctionLetter:
		var req sendLetterArgs
		if err := json.Unmarshal(args, &req); err != nil || req.Email == "" || req.SanctionLetterPath == "" {
			return failure(), nil
		}

		sent, err := a.deliverer.SendEmail(ctx,
			req.Email,
			"Loan Sanction Letter - LoaniFi",
			"Congratulations! Please find your loan sanction letter attached.",
			req.SanctionLetterPath,
		)
		if err != nil {
			return nil, err
		}

		conv.SanctionLetterSent = sent

		a.log.Info(conv.ConversationID, "", "sanction_letter_sent", map[string]interface{}{
			"email": req.Email,
		})

		return ToolResult{
			"success": sent,
			"message": fmt.Sprintf("Sanction letter sent to %s", req.Email),
		}, nil

	default:
		return failure(), nil
	}
}

// PostProcess marks the conversation completed once the letter is delivered.
func (a *SanctionAgent) PostProcess(reply string, conv *conversation.Context) TurnResult {
	result := TurnResult{Reply: reply, Agent: conversation.AgentSanction}

	if conv.SanctionLetterSent {
		_ = conv.AdvanceStage(conversation.StageSanctioned)
		conv.Completed = true
		result.Completed = true
	}
	return result
}
