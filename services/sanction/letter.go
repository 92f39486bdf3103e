// Copyright 2025 LoaniFi
// SPDX-License-Identifier: Apache-2.0

// Package sanction renders loan sanction letters to the artifact directory
// and delivers them to the customer. Delivery is a stand-in for a real
// email/SMS gateway (SendGrid/Twilio) behind the same interface.
package sanction

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"loanifi/backend/agents"
	"loanifi/backend/shared/logger"
)

const letterTemplate = `LoaniFi
Personal Loan Sanction Letter
=============================

Application Number : {{.ApplicationNumber}}
Sanction Date      : {{.SanctionDate}}

Dear {{.CustomerName}},

We are pleased to inform you that your personal loan has been sanctioned
with the following terms:

  Sanctioned Amount : INR {{printf "%.2f" .LoanAmount}}
  Interest Rate     : {{printf "%.2f" .InterestRate}}% p.a.
  Tenure            : {{.TenureMonths}} months
  Monthly EMI       : INR {{printf "%.2f" .MonthlyEMI}}

This sanction is valid for 30 days from the sanction date and is subject
to execution of the loan agreement.

Warm regards,
LoaniFi Lending Team
`

// Renderer writes sanction letters to the configured output directory.
type Renderer struct {
	outputDir string
	tmpl      *template.Template
	log       *logger.Logger
}

// NewRenderer creates a letter renderer, ensuring the output directory exists.
func NewRenderer(outputDir string) (*Renderer, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create letter directory: %w", err)
	}
	tmpl, err := template.New("sanction_letter").Parse(letterTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse letter template: %w", err)
	}
	return &Renderer{
		outputDir: outputDir,
		tmpl:      tmpl,
		log:       logger.New("services.sanction"),
	}, nil
}

// Render writes the sanction letter and returns the artifact path.
func (r *Renderer) Render(ctx context.Context, letter agents.SanctionLetter) (string, error) {
	filename := fmt.Sprintf("sanction_letter_%s.txt", letter.ApplicationNumber)
	path := filepath.Join(r.outputDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create sanction letter: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	if err := r.tmpl.Execute(f, letter); err != nil {
		return "", fmt.Errorf("failed to render sanction letter: %w", err)
	}

	r.log.Info("", "", "sanction_letter_rendered", map[string]interface{}{
		"application_number": letter.ApplicationNumber,
		"path":               path,
	})

	return path, nil
}

// Notifier is the mock delivery gateway.
type Notifier struct {
	log *logger.Logger
}

// NewNotifier creates the mock delivery gateway.
func NewNotifier() *Notifier {
	return &Notifier{log: logger.New("services.notify")}
}

// SendEmail delivers the letter by email. The mock verifies the attachment
// exists and reports success.
func (n *Notifier) SendEmail(ctx context.Context, to, subject, body, attachmentPath string) (bool, error) {
	if attachmentPath != "" {
		if _, err := os.Stat(attachmentPath); err != nil {
			return false, fmt.Errorf("sanction letter attachment missing: %w", err)
		}
	}

	n.log.Info("", "", "email_sent", map[string]interface{}{
		"to":             to,
		"subject":        subject,
		"has_attachment": attachmentPath != "",
	})

	return true, nil
}

// SendSMS delivers a short notification. Mock implementation.
func (n *Notifier) SendSMS(ctx context.Context, phoneNumber, message string) (bool, error) {
	n.log.Info("", "", "sms_sent", map[string]interface{}{
		"to":             phoneNumber,
		"message_length": len(message),
	})
	return true, nil
}
