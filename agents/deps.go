// Copyright 2025 LoaniFi
// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"context"

	"loanifi/backend/conversation"
)

// DocumentVerification is the outcome of verifying one submitted document.
type DocumentVerification struct {
	Valid           bool              `json:"valid"`
	DocumentType    string            `json:"document_type"`
	DocumentID      string            `json:"document_id"`
	Confidence      float64           `json:"confidence"`
	ExtractedFields map[string]string `json:"extracted_fields,omitempty"`
	FraudFlags      []string          `json:"fraud_flags,omitempty"`
}

// SanctionLetter holds the structured loan terms for letter rendering.
type SanctionLetter struct {
	CustomerName      string  `json:"customer_name"`
	Email             string  `json:"email"`
	LoanAmount        float64 `json:"loan_amount"`
	InterestRate      float64 `json:"interest_rate"`
	TenureMonths      int     `json:"tenure_months"`
	MonthlyEMI        float64 `json:"monthly_emi"`
	ApplicationNumber string  `json:"application_number"`
	SanctionDate      string  `json:"sanction_date"`
}

// CreditBureau is the credit-score lookup boundary (CIBIL/Experian stand-in).
type CreditBureau interface {
	Check(ctx context.Context, panNumber string) (*conversation.CreditReport, error)
}

// DocumentVerifier is the document verification boundary (OCR and fraud
// screening stand-in).
type DocumentVerifier interface {
	Verify(ctx context.Context, documentType, documentID string) (*DocumentVerification, error)
}

// LetterRenderer renders a sanction letter and returns the artifact location.
type LetterRenderer interface {
	Render(ctx context.Context, letter SanctionLetter) (string, error)
}

// LetterDeliverer delivers a rendered sanction letter to the customer.
type LetterDeliverer interface {
	SendEmail(ctx context.Context, to, subject, body, attachmentPath string) (bool, error)
}
