// Copyright 2025 LoaniFi
// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanifi/backend/conversation"
)

type stubRenderer struct {
	path   string
	err    error
	letter SanctionLetter
}

func (s *stubRenderer) Render(ctx context.Context, letter SanctionLetter) (string, error) {
	s.letter = letter
	if s.err != nil {
		return "", s.err
	}
	return s.path, nil
}

type stubDeliverer struct {
	sent bool
	err  error
	to   string
}

func (s *stubDeliverer) SendEmail(ctx context.Context, to, subject, body, attachmentPath string) (bool, error) {
	s.to = to
	if s.err != nil {
		return false, s.err
	}
	return s.sent, nil
}

func TestSanction_GenerateLetter(t *testing.T) {
	renderer := &stubRenderer{path: "/tmp/letters/sanction_letter_APP12345678.txt"}
	agent := NewSanctionAgent(renderer, &stubDeliverer{})
	conv := conversation.NewContext("conv-1")
	conv.ApplicationNumber = "APP12345678"

	args, _ := json.Marshal(map[string]interface{}{
		"customer_name": "Priya Sharma",
		"email":         "priya@example.com",
		"loan_amount":   450000,
		"interest_rate": 10.5,
		"tenure_months": 36,
		"monthly_emi":   14625.5,
	})
	result, err := agent.HandleTool(context.Background(), ToolGenerateSanctionLetter, args, conv)

	require.NoError(t, err)
	assert.Equal(t, true, result["success"])
	assert.Equal(t, renderer.path, conv.SanctionLetterPath)
	assert.True(t, conv.SanctionLetterGenerated)
	assert.Equal(t, "APP12345678", renderer.letter.ApplicationNumber)
	assert.Equal(t, "Priya Sharma", renderer.letter.CustomerName)
}

func TestSanction_GenerateLetter_AssignsApplicationNumber(t *testing.T) {
	renderer := &stubRenderer{path: "/tmp/letter.txt"}
	agent := NewSanctionAgent(renderer, &stubDeliverer{})
	conv := conversation.NewContext("conv-1")

	args, _ := json.Marshal(map[string]interface{}{
		"customer_name": "Priya Sharma",
		"email":         "priya@example.com",
		"loan_amount":   450000,
	})
	_, err := agent.HandleTool(context.Background(), ToolGenerateSanctionLetter, args, conv)

	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^APP[0-9A-F]{8}$`), conv.ApplicationNumber)
}

func TestSanction_GenerateLetter_MissingEmail(t *testing.T) {
	agent := NewSanctionAgent(&stubRenderer{}, &stubDeliverer{})
	conv := conversation.NewContext("conv-1")

	result, err := agent.HandleTool(context.Background(), ToolGenerateSanctionLetter,
		json.RawMessage(`{"customer_name": "Priya Sharma"}`), conv)

	require.NoError(t, err)
	assert.Equal(t, false, result["success"])
	assert.False(t, conv.SanctionLetterGenerated)
}

func TestSanction_SendLetter(t *testing.T) {
	deliverer := &stubDeliverer{sent: true}
	agent := NewSanctionAgent(&stubRenderer{}, deliverer)
	conv := conversation.NewContext("conv-1")

	args, _ := json.Marshal(map[string]string{
		"email":                "priya@example.com",
		"sanction_letter_path": "/tmp/letter.txt",
	})
	result, err := agent.HandleTool(context.Background(), ToolSendSanctionLetter, args, conv)

	require.NoError(t, err)
	assert.Equal(t, true, result["success"])
	assert.True(t, conv.SanctionLetterSent)
	assert.Equal(t, "priya@example.com", deliverer.to)
}

func TestSanction_SendLetter_DeliveryError(t *testing.T) {
	deliverer := &stubDeliverer{err: errors.New("attachment not found")}
	agent := NewSanctionAgent(&stubRenderer{}, deliverer)
	conv := conversation.NewContext("conv-1")

	args, _ := json.Marshal(map[string]string{
		"email":                "priya@example.com",
		"sanction_letter_path": "/tmp/missing.txt",
	})
	_, err := agent.HandleTool(context.Background(), ToolSendSanctionLetter, args, conv)

	assert.Error(t, err)
	assert.False(t, conv.SanctionLetterSent)
}

func TestSanction_PostProcess_Completed(t *testing.T) {
	agent := NewSanctionAgent(&stubRenderer{}, &stubDeliverer{})
	conv := conversation.NewContext("conv-1")
	conv.Stage = conversation.StageApproved
	conv.SanctionLetterSent = true

	result := agent.PostProcess("all done", conv)

	assert.True(t, result.Completed)
	assert.True(t, conv.Completed)
	assert.Equal(t, conversation.StageSanctioned, conv.Stage)
}

func TestSanction_PostProcess_NotSent(t *testing.T) {
	agent := NewSanctionAgent(&stubRenderer{}, &stubDeliverer{})
	conv := conversation.NewContext("conv-1")
	conv.Stage = conversation.StageApproved

	result := agent.PostProcess("generating", conv)

	assert.False(t, result.Completed)
	assert.Equal(t, conversation.StageApproved, conv.Stage)
}
