// Copyright 2025 LoaniFi
// SPDX-License-Identifier: Apache-2.0

// Package underwriting implements the loan underwriting calculator: DTI,
// affordable EMI, risk-based interest rate, maximum eligible amount and the
// approval decision. Evaluate is a pure function; calling it twice with the
// same input yields the same result.
package underwriting

import "math"

// Risk categories assigned by the calculator.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Employment types recognized by the rate table.
const (
	EmploymentSalaried     = "salaried"
	EmploymentSelfEmployed = "self_employed"
	EmploymentBusiness     = "business"
)

// DefaultTenureMonths is used when the customer did not request a tenure.
const DefaultTenureMonths = 36

// Approval thresholds.
const (
	maxApprovalDTI   = 60.0
	minApprovalScore = 600
	emiIncomeShare   = 0.5
)

// Input holds the borrower profile for one underwriting attempt.
type Input struct {
	MonthlyIncome   float64 `json:"monthly_income"`
	ExistingEMIs    float64 `json:"existing_emis"`
	CreditScore     int     `json:"credit_score"`
	RequestedAmount float64 `json:"requested_amount,omitempty"`
	TenureMonths    int     `json:"tenure_months,omitempty"`
	EmploymentType  string  `json:"employment_type,omitempty"`
}

// Result is the outcome of one underwriting attempt. It is immutable once
// computed; a new attempt produces a fresh Result.
type Result struct {
	Approved          bool    `json:"approved"`
	ApprovedAmount    float64 `json:"approved_amount"`
	MaxEligibleAmount float64 `json:"max_eligible_amount"`
	InterestRate      float64 `json:"interest_rate"`
	TenureMonths      int     `json:"tenure_months"`
	MonthlyEMI        float64 `json:"monthly_emi"`
	DTIRatio          float64 `json:"dti_ratio"`
	RiskCategory      string  `json:"risk_category"`
	CreditScore       int     `json:"credit_score"`
}

// Evaluate computes eligibility for the given borrower profile.
//
// Income at or below zero fails closed: DTI is pinned to 100%, which falls
// outside every approval threshold. Negative existing EMIs are treated as
// zero, and a missing tenure defaults to DefaultTenureMonths.
func Evaluate(in Input) Result {
	tenure := in.TenureMonths
	if tenure <= 0 {
		tenure = DefaultTenureMonths
	}
	emis := in.ExistingEMIs
	if emis < 0 {
		emis = 0
	}
	employment := in.EmploymentType
	if employment == "" {
		employment = EmploymentSalaried
	}

	dti := 100.0
	if in.MonthlyIncome > 0 {
		dti = emis / in.MonthlyIncome * 100
	}

	maxEMI := in.MonthlyIncome*emiIncomeShare - emis

	rate := InterestRate(in.CreditScore, employment, in.MonthlyIncome)

	monthlyRate := rate / 100 / 12
	var maxLoan float64
	if monthlyRate > 0 {
		maxLoan = maxEMI * (1 - math.Pow(1+monthlyRate, float64(-tenure))) / monthlyRate
	} else {
		maxLoan = maxEMI * float64(tenure)
	}

	risk := riskCategory(in.CreditScore, dti)

	approved := dti < maxApprovalDTI && in.CreditScore >= minApprovalScore && maxLoan > 0

	var approvedAmount float64
	switch {
	case approved && in.RequestedAmount > 0:
		approvedAmount = math.Min(in.RequestedAmount, maxLoan)
	case approved:
		approvedAmount = maxLoan
	}

	var emi float64
	if approvedAmount > 0 && monthlyRate > 0 {
		growth := math.Pow(1+monthlyRate, float64(tenure))
		emi = approvedAmount * monthlyRate * growth / (growth - 1)
	}

	return Result{
		Approved:          approved,
		ApprovedAmount:    round2(approvedAmount),
		MaxEligibleAmount: round2(maxLoan),
		InterestRate:      rate,
		TenureMonths:      tenure,
		MonthlyEMI:        round2(emi),
		DTIRatio:          round2(dti),
		RiskCategory:      risk,
		CreditScore:       in.CreditScore,
	}
}

// InterestRate returns the annual rate (percent) for the given risk profile.
// The bracket boundaries and rate values are the bank's fixed pricing table.
func InterestRate(creditScore int, employmentType string, monthlyIncome float64) float64 {
	switch {
	case creditScore >= 750:
		if employmentType == EmploymentSalaried && monthlyIncome >= 50000 {
			return 10.5
		}
		if employmentType == EmploymentSelfEmployed && monthlyIncome >= 75000 {
			return 11.5
		}
		return 12.5
	case creditScore >= 700:
		if employmentType == EmploymentSalaried && monthlyIncome >= 30000 {
			return 13.5
		}
		return 15.0
	case creditScore >= 650:
		if employmentType == EmploymentSalaried {
			return 17.0
		}
		return 18.5
	default:
		return 22.0
	}
}

func riskCategory(creditScore int, dti float64) string {
	switch {
	case creditScore >= 750 && dti < 35:
		return RiskLow
	case creditScore >= 650 && dti < 45:
		return RiskMedium
	default:
		return RiskHigh
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
