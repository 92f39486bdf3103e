// Copyright 2025 LoaniFi
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanifi/backend/conversation"
)

func TestHistoryDocs_BatchOrdering(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 123456789, time.UTC)
	docs := historyDocs("conv-1", []conversation.Message{
		{Role: conversation.RoleUser, Content: "I need a loan"},
		{Role: conversation.RoleAssistant, Content: "Happy to help", Agent: conversation.AgentEngage},
	}, now)

	require.Len(t, docs, 2)
	first := docs[0].(historyDocument)
	second := docs[1].(historyDocument)

	assert.Equal(t, "conv-1", first.ConversationID)
	assert.Equal(t, conversation.RoleUser, first.Role)
	assert.Equal(t, conversation.RoleAssistant, second.Role)
	assert.Equal(t, conversation.AgentEngage, second.Agent)

	// BSON datetimes truncate to millisecond precision, so same-batch
	// documents must not rely on the timestamp for relative order: equal
	// timestamps, strictly increasing sequence.
	assert.True(t, first.Timestamp.Equal(second.Timestamp))
	assert.Equal(t, 0, first.Sequence)
	assert.Equal(t, 1, second.Sequence)

	truncated := []historyDocument{first, second}
	for i := range truncated {
		truncated[i].Timestamp = truncated[i].Timestamp.Truncate(time.Millisecond)
	}
	assert.True(t, truncated[0].Timestamp.Equal(truncated[1].Timestamp))
	assert.Less(t, truncated[0].Sequence, truncated[1].Sequence)
}

func TestHistoryDocs_Empty(t *testing.T) {
	docs := historyDocs("conv-1", nil, time.Now().UTC())
	assert.Empty(t, docs)
}
