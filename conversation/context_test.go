// Copyright 2025 LoaniFi
// SPDX-License-Identifier: Apache-2.0

package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvanceStage_Forward(t *testing.T) {
	conv := NewContext("conv-1")

	require.NoError(t, conv.AdvanceStage(StageQualified))
	require.NoError(t, conv.AdvanceStage(StageDocumentsVerified))
	require.NoError(t, conv.AdvanceStage(StageApproved))
	require.NoError(t, conv.AdvanceStage(StageSanctioned))
	assert.Equal(t, StageSanctioned, conv.Stage)
}

func TestAdvanceStage_RejectsBackward(t *testing.T) {
	conv := NewContext("conv-1")
	conv.Stage = StageApproved

	err := conv.AdvanceStage(StageQualified)

	assert.Error(t, err)
	assert.Equal(t, StageApproved, conv.Stage)
}

func TestAdvanceStage_SameStageIsNoop(t *testing.T) {
	conv := NewContext("conv-1")
	conv.Stage = StageQualified

	assert.NoError(t, conv.AdvanceStage(StageQualified))
	assert.Equal(t, StageQualified, conv.Stage)
}

func TestAdvanceStage_UnknownStage(t *testing.T) {
	conv := NewContext("conv-1")

	assert.Error(t, conv.AdvanceStage(Stage("review")))
	assert.Equal(t, StageInitial, conv.CurrentStage())
}

func TestCurrentStage_ZeroValueIsInitial(t *testing.T) {
	conv := &Context{}
	assert.Equal(t, StageInitial, conv.CurrentStage())
}

func TestAddVerifiedDocument_Dedupes(t *testing.T) {
	conv := NewContext("conv-1")

	conv.AddVerifiedDocument("pan_card")
	conv.AddVerifiedDocument("pan_card")
	conv.AddVerifiedDocument("photo")

	assert.Equal(t, []string{"pan_card", "photo"}, conv.VerifiedDocuments)
	assert.True(t, conv.HasVerifiedDocument("pan_card"))
	assert.False(t, conv.HasVerifiedDocument("aadhaar_card"))
}

func TestMarshalRoundTrip(t *testing.T) {
	conv := NewContext("conv-1")
	conv.UserName = "Priya"
	conv.PreferredLanguage = "hindi"
	conv.Stage = StageQualified
	conv.LoanRequirements = &LoanRequirements{Purpose: "medical", Amount: 300000}
	score := 720
	conv.CreditScore = &score
	conv.VerifiedDocuments = []string{"pan_card"}

	data, err := conv.Marshal()
	require.NoError(t, err)

	restored, err := UnmarshalContext(data)
	require.NoError(t, err)

	assert.Equal(t, conv.ConversationID, restored.ConversationID)
	assert.Equal(t, conv.UserName, restored.UserName)
	assert.Equal(t, conv.Stage, restored.Stage)
	require.NotNil(t, restored.LoanRequirements)
	assert.Equal(t, "medical", restored.LoanRequirements.Purpose)
	require.NotNil(t, restored.CreditScore)
	assert.Equal(t, 720, *restored.CreditScore)
	assert.Equal(t, []string{"pan_card"}, restored.VerifiedDocuments)
}

func TestUnmarshalContext_EmptyIsFresh(t *testing.T) {
	restored, err := UnmarshalContext(nil)

	require.NoError(t, err)
	assert.Equal(t, StageInitial, restored.CurrentStage())
	assert.False(t, restored.Completed)
}

func TestValidAgentType(t *testing.T) {
	for _, a := range []string{"master", "engage", "verify", "underwrite", "sanction"} {
		assert.True(t, ValidAgentType(a), a)
	}
	assert.False(t, ValidAgentType("concierge"))
	assert.False(t, ValidAgentType(""))
}
