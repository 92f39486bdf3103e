// Copyright 2025 LoaniFi
// SPDX-License-Identifier: Apache-2.0

package agents

import "loanifi/backend/llm"

// Tool schemas offered to the model. Names and required parameters are part
// of the model-facing contract and must not drift.

func masterTools() []llm.FunctionDef {
	return []llm.FunctionDef{
		{
			Name:        string(ToolRouteToAgent),
			Description: "Route the conversation to a specialized agent",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"agent_type": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"engage", "verify", "underwrite", "sanction"},
						"description": "The agent to route to",
					},
					"reason": map[string]interface{}{
						"type":        "string",
						"description": "Reason for routing to this agent",
					},
				},
				"required": []string{"agent_type", "reason"},
			},
		},
	}
}

func engageTools() []llm.FunctionDef {
	return []llm.FunctionDef{
		{
			Name:        string(ToolCaptureRequirements),
			Description: "Capture customer's loan requirements",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"loan_purpose": map[string]interface{}{
						"type":        "string",
						"description": "Purpose of the loan",
					},
					"loan_amount": map[string]interface{}{
						"type":        "number",
						"description": "Desired loan amount",
					},
					"tenure_months": map[string]interface{}{
						"type":        "number",
						"description": "Desired tenure in months",
					},
					"monthly_income": map[string]interface{}{
						"type":        "number",
						"description": "Customer's monthly income",
					},
					"employment_type": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"salaried", "self_employed", "business"},
						"description": "Type of employment",
					},
				},
				"required": []string{"loan_purpose"},
			},
		},
		{
			Name:        string(ToolCheckBasicEligibility),
			Description: "Check if customer meets basic eligibility criteria",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"monthly_income": map[string]interface{}{
						"type":        "number",
						"description": "Monthly income",
					},
					"employment_type": map[string]interface{}{
						"type":        "string",
						"description": "Employment type",
					},
				},
				"required": []string{"monthly_income", "employment_type"},
			},
		},
	}
}

func verifyTools() []llm.FunctionDef {
	return []llm.FunctionDef{
		{
			Name:        string(ToolCheckDocumentStatus),
			Description: "Check status of document collection",
			Parameters: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
				"required":   []string{},
			},
		},
		{
			Name:        string(ToolVerifyDocument),
			Description: "Verify a specific document",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"document_type": map[string]interface{}{
						"type":        "string",
						"description": "Type of document to verify",
					},
					"document_id": map[string]interface{}{
						"type":        "string",
						"description": "Document ID",
					},
				},
				"required": []string{"document_type", "document_id"},
			},
		},
		{
			Name:        string(ToolCheckCreditScore),
			Description: "Check customer's credit score",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"pan_number": map[string]interface{}{
						"type":        "string",
						"description": "PAN number for credit check",
					},
				},
				"required": []string{"pan_number"},
			},
		},
	}
}

func underwriteTools() []llm.FunctionDef {
	return []llm.FunctionDef{
		{
			Name:        string(ToolCalculateEligibility),
			Description: "Calculate loan eligibility based on income and obligations",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"monthly_income": map[string]interface{}{
						"type":        "number",
						"description": "Monthly income",
					},
					"existing_emis": map[string]interface{}{
						"type":        "number",
						"description": "Existing monthly EMI obligations",
					},
					"credit_score": map[string]interface{}{
						"type":        "number",
						"description": "Credit score",
					},
					"requested_amount": map[string]interface{}{
						"type":        "number",
						"description": "Requested loan amount",
					},
					"tenure_months": map[string]interface{}{
						"type":        "number",
						"description": "Requested tenure in months",
					},
				},
				"required": []string{"monthly_income", "credit_score"},
			},
		},
		{
			Name:        string(ToolDetermineInterestRate),
			Description: "Determine interest rate based on risk profile",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"credit_score": map[string]interface{}{
						"type":        "number",
						"description": "Credit score",
					},
					"employment_type": map[string]interface{}{
						"type":        "string",
						"description": "Employment type",
					},
					"monthly_income": map[string]interface{}{
						"type":        "number",
						"description": "Monthly income",
					},
				},
				"required": []string{"credit_score", "employment_type"},
			},
		},
	}
}

func sanctionTools() []llm.FunctionDef {
	return []llm.FunctionDef{
		{
			Name:        string(ToolGenerateSanctionLetter),
			Description: "Generate the loan sanction letter",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"customer_name": map[string]interface{}{
						"type":        "string",
						"description": "Customer's full name",
					},
					"email": map[string]interface{}{
						"type":        "string",
						"description": "Customer's email address",
					},
					"loan_amount": map[string]interface{}{
						"type":        "number",
						"description": "Approved loan amount",
					},
					"interest_rate": map[string]interface{}{
						"type":        "number",
						"description": "Interest rate",
					},
					"tenure_months": map[string]interface{}{
						"type":        "number",
						"description": "Loan tenure in months",
					},
					"monthly_emi": map[string]interface{}{
						"type":        "number",
						"description": "Monthly EMI amount",
					},
				},
				"required": []string{"customer_name", "email", "loan_amount", "interest_rate", "tenure_months", "monthly_emi"},
			},
		},
		{
			Name:        string(ToolSendSanctionLetter),
			Description: "Send sanction letter via email",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"email": map[string]interface{}{
						"type":        "string",
						"description": "Email address",
					},
					"sanction_letter_path": map[string]interface{}{
						"type":        "string",
						"description": "Path to the rendered sanction letter",
					},
				},
				"required": []string{"email", "sanction_letter_path"},
			},
		},
	}
}
