// Copyright 2025 LoaniFi
// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanifi/backend/conversation"
)

func TestUnderwrite_CalculateEligibility_Approved(t *testing.T) {
	agent := NewUnderwriteAgent()
	conv := conversation.NewContext("conv-1")
	conv.Stage = conversation.StageDocumentsVerified
	conv.BasicEligibility = &conversation.BasicEligibility{EmploymentType: "salaried"}

	args, _ := json.Marshal(map[string]interface{}{
		"monthly_income":   80000,
		"existing_emis":    10000,
		"credit_score":     780,
		"requested_amount": 500000,
		"tenure_months":    36,
	})
	result, err := agent.HandleTool(context.Background(), ToolCalculateEligibility, args, conv)

	require.NoError(t, err)
	assert.Equal(t, true, result["approved"])
	assert.Equal(t, 10.5, result["interest_rate"])
	assert.Equal(t, 12.5, result["dti_ratio"])
	assert.Equal(t, float64(500000), result["approved_amount"])
	require.NotNil(t, conv.UnderwritingResult)
	assert.True(t, conv.UnderwritingResult.Approved)
}

func TestUnderwrite_CalculateEligibility_Rejected(t *testing.T) {
	agent := NewUnderwriteAgent()
	conv := conversation.NewContext("conv-1")

	args, _ := json.Marshal(map[string]interface{}{
		"monthly_income":   30000,
		"existing_emis":    20000,
		"credit_score":     580,
		"requested_amount": 500000,
	})
	result, err := agent.HandleTool(context.Background(), ToolCalculateEligibility, args, conv)

	require.NoError(t, err)
	assert.Equal(t, false, result["approved"])
	require.NotNil(t, conv.UnderwritingResult)
	assert.False(t, conv.UnderwritingResult.Approved)
}

func TestUnderwrite_CalculateEligibility_MissingScore(t *testing.T) {
	agent := NewUnderwriteAgent()
	conv := conversation.NewContext("conv-1")

	result, err := agent.HandleTool(context.Background(), ToolCalculateEligibility,
		json.RawMessage(`{"monthly_income": 50000}`), conv)

	require.NoError(t, err)
	assert.Equal(t, false, result["success"])
	assert.Nil(t, conv.UnderwritingResult)
}

func TestUnderwrite_DetermineInterestRate(t *testing.T) {
	agent := NewUnderwriteAgent()
	conv := conversation.NewContext("conv-1")

	args, _ := json.Marshal(map[string]interface{}{
		"credit_score":    760,
		"employment_type": "salaried",
		"monthly_income":  60000,
	})
	result, err := agent.HandleTool(context.Background(), ToolDetermineInterestRate, args, conv)

	require.NoError(t, err)
	assert.Equal(t, 10.5, result["interest_rate"])
	assert.Contains(t, result["explanation"], "760")
}

func TestUnderwrite_PostProcess_Approved(t *testing.T) {
	agent := NewUnderwriteAgent()
	conv := conversation.NewContext("conv-1")
	conv.Stage = conversation.StageDocumentsVerified

	args, _ := json.Marshal(map[string]interface{}{
		"monthly_income":   80000,
		"existing_emis":    0,
		"credit_score":     780,
		"requested_amount": 300000,
	})
	_, err := agent.HandleTool(context.Background(), ToolCalculateEligibility, args, conv)
	require.NoError(t, err)

	result := agent.PostProcess("congratulations", conv)

	assert.True(t, result.ShouldHandoff)
	assert.Equal(t, conversation.AgentSanction, result.NextAgent)
	assert.Equal(t, conversation.StageApproved, conv.Stage)
}

func TestUnderwrite_PostProcess_Rejected(t *testing.T) {
	agent := NewUnderwriteAgent()
	conv := conversation.NewContext("conv-1")
	conv.Stage = conversation.StageDocumentsVerified

	args, _ := json.Marshal(map[string]interface{}{
		"monthly_income":   20000,
		"existing_emis":    15000,
		"credit_score":     610,
		"requested_amount": 500000,
	})
	_, err := agent.HandleTool(context.Background(), ToolCalculateEligibility, args, conv)
	require.NoError(t, err)

	result := agent.PostProcess("sorry", conv)

	assert.False(t, result.ShouldHandoff)
	assert.Equal(t, conversation.StageDocumentsVerified, conv.Stage)
}
