// Copyright 2025 LoaniFi
// SPDX-License-Identifier: Apache-2.0

// Package conversation defines the typed state threaded through a
// loan-origination conversation: the pipeline stage, the specialized agent
// identifiers, and the Context record each agent reads and mutates during
// a turn. The Context is serialized between turns; the orchestrator owns
// the authoritative persisted copy.
package conversation

import (
	"encoding/json"
	"fmt"

	"loanifi/backend/underwriting"
)

// Stage is a named point in the fixed loan-origination pipeline.
type Stage string

const (
	StageInitial           Stage = "initial"
	StageQualified         Stage = "qualified"
	StageDocumentsVerified Stage = "documents_verified"
	StageApproved          Stage = "approved"
	StageSanctioned        Stage = "sanctioned"
)

// stageOrder fixes the forward-only pipeline order.
var stageOrder = map[Stage]int{
	StageInitial:           0,
	StageQualified:         1,
	StageDocumentsVerified: 2,
	StageApproved:          3,
	StageSanctioned:        4,
}

// AgentType identifies one of the specialized agents.
type AgentType string

const (
	AgentMaster     AgentType = "master"
	AgentEngage     AgentType = "engage"
	AgentVerify     AgentType = "verify"
	AgentUnderwrite AgentType = "underwrite"
	AgentSanction   AgentType = "sanction"
)

// ValidAgentType reports whether s names a known agent.
func ValidAgentType(s string) bool {
	switch AgentType(s) {
	case AgentMaster, AgentEngage, AgentVerify, AgentUnderwrite, AgentSanction:
		return true
	}
	return false
}

// Status is the lifecycle state of a conversation.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
)

// MessageRole identifies who produced a history message.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleFunction  MessageRole = "function"
)

// Message is one entry in the append-only conversation history.
type Message struct {
	Role    MessageRole `json:"role" bson:"role"`
	Content string      `json:"content" bson:"content"`
	Agent   AgentType   `json:"agent,omitempty" bson:"agent,omitempty"`
}

// LoanRequirements captures what the customer asked for.
type LoanRequirements struct {
	Purpose        string  `json:"loan_purpose"`
	Amount         float64 `json:"loan_amount,omitempty"`
	TenureMonths   int     `json:"tenure_months,omitempty"`
	MonthlyIncome  float64 `json:"monthly_income,omitempty"`
	EmploymentType string  `json:"employment_type,omitempty"`
}

// BasicEligibility is the result of the initial income screen.
type BasicEligibility struct {
	Eligible       bool    `json:"eligible"`
	MonthlyIncome  float64 `json:"monthly_income"`
	EmploymentType string  `json:"employment_type"`
}

// CreditReport is the bureau response snapshot kept in the context.
type CreditReport struct {
	Score             int    `json:"score"`
	Rating            string `json:"rating"`
	RiskLevel         string `json:"risk_level"`
	PANNumber         string `json:"pan_number"`
	ReportDate        string `json:"report_date"`
	CreditUtilization int    `json:"credit_utilization"`
	CreditAgeMonths   int    `json:"credit_age_months"`
	RecentInquiries   int    `json:"recent_inquiries"`
}

// Context is the state accumulated over one conversation's lifetime.
// It is created empty when a conversation starts, lent to the active agent
// for the duration of a turn, and persisted after every turn. Fields set by
// an earlier stage are read, never discarded, by later stages.
type Context struct {
	ConversationID    string `json:"conversation_id,omitempty"`
	ApplicationNumber string `json:"application_number,omitempty"`
	UserName          string `json:"user_name,omitempty"`
	PreferredLanguage string `json:"preferred_language,omitempty"`

	Stage Stage `json:"stage,omitempty"`

	LoanRequirements *LoanRequirements `json:"loan_requirements,omitempty"`
	BasicEligibility *BasicEligibility `json:"basic_eligibility,omitempty"`

	SubmittedDocuments []string `json:"submitted_documents,omitempty"`
	VerifiedDocuments  []string `json:"verified_documents,omitempty"`

	CreditScore  *int          `json:"credit_score,omitempty"`
	CreditReport *CreditReport `json:"credit_report,omitempty"`

	UnderwritingResult *underwriting.Result `json:"underwriting_result,omitempty"`

	SanctionLetterPath      string `json:"sanction_letter_path,omitempty"`
	SanctionLetterGenerated bool   `json:"sanction_letter_generated,omitempty"`
	SanctionLetterSent      bool   `json:"sanction_letter_sent,omitempty"`

	Completed bool      `json:"completed,omitempty"`
	NextAgent AgentType `json:"next_agent,omitempty"`
}

// NewContext creates an empty context at the initial stage.
func NewContext(conversationID string) *Context {
	return &Context{
		ConversationID: conversationID,
		Stage:          StageInitial,
	}
}

// CurrentStage returns the stage, treating the zero value as initial.
func (c *Context) CurrentStage() Stage {
	if c.Stage == "" {
		return StageInitial
	}
	return c.Stage
}

// AdvanceStage moves the pipeline forward to next. Backward transitions
// are rejected; advancing to the current stage is a no-op.
func (c *Context) AdvanceStage(next Stage) error {
	to, ok := stageOrder[next]
	if !ok {
		return fmt.Errorf("unknown stage %q", next)
	}
	from := stageOrder[c.CurrentStage()]
	if to < from {
		return fmt.Errorf("stage cannot move backward from %q to %q", c.CurrentStage(), next)
	}
	c.Stage = next
	return nil
}

// HasVerifiedDocument reports whether the given document type has been verified.
func (c *Context) HasVerifiedDocument(docType string) bool {
	for _, d := range c.VerifiedDocuments {
		if d == docType {
			return true
		}
	}
	return false
}

// AddVerifiedDocument records a verified document type once.
func (c *Context) AddVerifiedDocument(docType string) {
	if !c.HasVerifiedDocument(docType) {
		c.VerifiedDocuments = append(c.VerifiedDocuments, docType)
	}
}

// Marshal serializes the context for persistence.
func (c *Context) Marshal() ([]byte, error) {
	return json.Marshal(c)
}

// UnmarshalContext deserializes a persisted context. Empty input yields a
// fresh context rather than an error so a first turn can proceed.
func UnmarshalContext(data []byte) (*Context, error) {
	if len(data) == 0 {
		return &Context{Stage: StageInitial}, nil
	}
	var c Context
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal context: %w", err)
	}
	return &c, nil
}
