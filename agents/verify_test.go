// Copyright 2025 LoaniFi
// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanifi/backend/conversation"
)

type stubVerifier struct {
	verification *DocumentVerification
	err          error
}

func (s *stubVerifier) Verify(ctx context.Context, docType, docID string) (*DocumentVerification, error) {
	if s.err != nil {
		return nil, s.err
	}
	v := *s.verification
	v.DocumentType = docType
	v.DocumentID = docID
	return &v, nil
}

type stubBureau struct {
	report *conversation.CreditReport
	err    error
}

func (s *stubBureau) Check(ctx context.Context, pan string) (*conversation.CreditReport, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.report, nil
}

func TestVerify_CheckDocumentStatus(t *testing.T) {
	agent := NewVerifyAgent(&stubVerifier{}, &stubBureau{})
	conv := conversation.NewContext("conv-1")
	conv.SubmittedDocuments = []string{"pan_card", "photo"}
	conv.VerifiedDocuments = []string{"pan_card"}

	result, err := agent.HandleTool(context.Background(), ToolCheckDocumentStatus, nil, conv)

	require.NoError(t, err)
	assert.Equal(t, 6, result["total_required"])
	assert.Equal(t, 2, result["submitted"])
	assert.Equal(t, 1, result["verified"])
	assert.ElementsMatch(t, []string{"aadhaar_card", "bank_statement", "income_proof", "address_proof"},
		result["pending"])
}

func TestVerify_VerifyDocument_Valid(t *testing.T) {
	verifier := &stubVerifier{verification: &DocumentVerification{Valid: true, Confidence: 92.5}}
	agent := NewVerifyAgent(verifier, &stubBureau{})
	conv := conversation.NewContext("conv-1")

	args, _ := json.Marshal(map[string]string{"document_type": "pan_card", "document_id": "ABCDE1234F"})
	result, err := agent.HandleTool(context.Background(), ToolVerifyDocument, args, conv)

	require.NoError(t, err)
	assert.Equal(t, true, result["valid"])
	assert.Contains(t, conv.VerifiedDocuments, "pan_card")
}

func TestVerify_VerifyDocument_Invalid(t *testing.T) {
	verifier := &stubVerifier{verification: &DocumentVerification{
		Valid:      false,
		Confidence: 76.0,
		FraudFlags: []string{"document_tampering_suspected"},
	}}
	agent := NewVerifyAgent(verifier, &stubBureau{})
	conv := conversation.NewContext("conv-1")

	args, _ := json.Marshal(map[string]string{"document_type": "pan_card", "document_id": "ABCDE1234F"})
	result, err := agent.HandleTool(context.Background(), ToolVerifyDocument, args, conv)

	require.NoError(t, err)
	assert.Equal(t, false, result["valid"])
	assert.Empty(t, conv.VerifiedDocuments)
}

func TestVerify_VerifyDocument_BackendError(t *testing.T) {
	verifier := &stubVerifier{err: errors.New("verification service down")}
	agent := NewVerifyAgent(verifier, &stubBureau{})
	conv := conversation.NewContext("conv-1")

	args, _ := json.Marshal(map[string]string{"document_type": "pan_card", "document_id": "ABCDE1234F"})
	_, err := agent.HandleTool(context.Background(), ToolVerifyDocument, args, conv)

	assert.Error(t, err)
}

func TestVerify_CheckCreditScore(t *testing.T) {
	bureau := &stubBureau{report: &conversation.CreditReport{Score: 760, Rating: "Excellent", RiskLevel: "Low"}}
	agent := NewVerifyAgent(&stubVerifier{}, bureau)
	conv := conversation.NewContext("conv-1")

	args, _ := json.Marshal(map[string]string{"pan_number": "ABCDE1234F"})
	result, err := agent.HandleTool(context.Background(), ToolCheckCreditScore, args, conv)

	require.NoError(t, err)
	assert.Equal(t, 760, result["score"])
	require.NotNil(t, conv.CreditScore)
	assert.Equal(t, 760, *conv.CreditScore)
	assert.Equal(t, "Excellent", conv.CreditReport.Rating)
}

func TestVerify_PostProcess_AllDocsAndScore(t *testing.T) {
	agent := NewVerifyAgent(&stubVerifier{}, &stubBureau{})
	conv := conversation.NewContext("conv-1")
	conv.Stage = conversation.StageQualified
	conv.VerifiedDocuments = append([]string{}, RequiredDocuments...)
	score := 720
	conv.CreditScore = &score

	result := agent.PostProcess("all set", conv)

	assert.True(t, result.ShouldHandoff)
	assert.Equal(t, conversation.AgentUnderwrite, result.NextAgent)
	assert.Equal(t, conversation.StageDocumentsVerified, conv.Stage)
}

func TestVerify_PostProcess_MissingOneDocument(t *testing.T) {
	agent := NewVerifyAgent(&stubVerifier{}, &stubBureau{})
	conv := conversation.NewContext("conv-1")
	conv.Stage = conversation.StageQualified
	conv.VerifiedDocuments = RequiredDocuments[:5]
	score := 720
	conv.CreditScore = &score

	result := agent.PostProcess("almost there", conv)

	assert.False(t, result.ShouldHandoff)
	assert.Equal(t, conversation.StageQualified, conv.Stage)
}

func TestVerify_PostProcess_NoCreditScore(t *testing.T) {
	agent := NewVerifyAgent(&stubVerifier{}, &stubBureau{})
	conv := conversation.NewContext("conv-1")
	conv.Stage = conversation.StageQualified
	conv.VerifiedDocuments = append([]string{}, RequiredDocuments...)

	result := agent.PostProcess("need your PAN", conv)

	assert.False(t, result.ShouldHandoff)
}
