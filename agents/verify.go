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

// RequiredDocuments is the fixed KYC document set. Underwriting is gated on
// all of these being verified.
var RequiredDocuments = []string{
	"pan_card",
	"aadhaar_card",
	"bank_statement",
	"income_proof",
	"address_proof",
	"photo",
}

// VerifyAgent collects and verifies KYC documents and pulls the customer's
// credit report before handing off to underwriting.
type VerifyAgent struct {
	verifier DocumentVerifier
	bureau   CreditBureau
	log      *logger.Logger
}

// NewVerifyAgent creates the verification agent with its backing services.
func NewVerifyAgent(verifier DocumentVerifier, bureau CreditBureau) *VerifyAgent {
	return &VerifyAgent{
		verifier: verifier,
		bureau:   bureau,
		log:      logger.New("agent.verify"),
	}
}

// Type returns the agent identifier.
func (a *VerifyAgent) Type() conversation.AgentType {
	return conversation.AgentVerify
}

// BuildPrompt assembles the verification prompt.
func (a *VerifyAgent) BuildPrompt(userMessage string, history []conversation.Message, conv *conversation.Context) []llm.Message {
	return buildPrompt(verifyPrompt, userMessage, history, conv)
}

// Tools returns the verification tool schemas.
func (a *VerifyAgent) Tools() []llm.FunctionDef {
	return verifyTools()
}

type verifyDocumentArgs struct {
	DocumentType string `json:"document_type"`
	DocumentID   string `json:"document_id"`
}

type creditScoreArgs struct {
	PANNumber string `json:"pan_number"`
}

// HandleTool services document status, document verification and credit
// bureau lookups.
func (a *VerifyAgent) HandleTool(ctx context.Context, name ToolName, args json.RawMessage, conv *conversation.Context) (ToolResult, error) {
	switch name {
	case ToolCheckDocumentStatus:
		submitted := make(map[string]bool, len(conv.SubmittedDocuments))
		for _, d := range conv.SubmittedDocuments {
			submitted[d] = true
		}
		var pending []string
		for _, d := range RequiredDocuments {
			if !submitted[d] {
				pending = append(pending, d)
			}
		}
		return ToolResult{
			"total_required": len(RequiredDocuments),
			"submitted":      len(conv.SubmittedDocuments),
			"verified":       len(conv.VerifiedDocuments),
			"pending":        pending,
		}, nil

	case ToolVerifyDocument:
		var req verifyDocumentArgs
		if err := json.Unmarshal(args, &req); err != nil || req.DocumentType == "" || req.DocumentID == "" {
			return failure(), nil
		}

		verification, err := a.verifier.Verify(ctx, req.DocumentType, req.DocumentID)
		if err != nil {
			return nil, err
		}

		if verification.Valid {
			conv.AddVerifiedDocument(req.DocumentType)
		}

		a.log.Info(conv.ConversationID, "", "document_verified", map[string]interface{}{
			"document_type": req.DocumentType,
			"valid":         verification.Valid,
		})

		return ToolResult{
			"valid":            verification.Valid,
			"document_type":    verification.DocumentType,
			"confidence":       verification.Confidence,
			"extracted_fields": verification.ExtractedFields,
			"fraud_flags":      verification.FraudFlags,
		}, nil

	case ToolCheckCreditScore:
		var req creditScoreArgs
		if err := json.Unmarshal(args, &req); err != nil || req.PANNumber == "" {
			return failure(), nil
		}

		report, err := a.bureau.Check(ctx, req.PANNumber)
		if err != nil {
			return nil, err
		}

		score := report.Score
		conv.CreditScore = &score
		conv.CreditReport = report

		a.log.Info(conv.ConversationID, "", "credit_score_checked", map[string]interface{}{
			"score": report.Score,
		})

		return ToolResult{
			"score":      report.Score,
			"rating":     report.Rating,
			"risk_level": report.RiskLevel,
		}, nil

	default:
		return failure(), nil
	}
}

// PostProcess hands off to underwriting once every required document is
// verified and a credit score is on file.
func (a *VerifyAgent) PostProcess(reply string, conv *conversation.Context) TurnResult {
	result := TurnResult{Reply: reply, Agent: conversation.AgentVerify}

	allDocsVerified := len(conv.VerifiedDocuments) >= len(RequiredDocuments)
	hasCreditScore := conv.CreditScore != nil

	if allDocsVerified && hasCreditScore {
		_ = conv.AdvanceStage(conversation.StageDocumentsVerified)
		conv.NextAgent = conversation.AgentUnderwrite
		result.ShouldHandoff = true
		result.NextAgent = conversation.AgentUnderwrite
	}
	return result
}
