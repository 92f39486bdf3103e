// Copyright 2025 LoaniFi
// SPDX-License-Identifier: Apache-2.0

// Package bureau is a stand-in for a real credit bureau integration
// (CIBIL/Experian). It returns randomized but shape-accurate credit reports;
// the production integration replaces this behind the same interface.
package bureau

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"loanifi/backend/conversation"
	"loanifi/backend/shared/logger"
)

// Score bounds for the generated reports.
const (
	minScore = 550
	maxScore = 850
)

// Service is the mock credit bureau client.
type Service struct {
	mu  sync.Mutex
	rng *rand.Rand
	log *logger.Logger
}

// NewService creates a mock bureau seeded from the clock.
func NewService() *Service {
	return &Service{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		log: logger.New("services.bureau"),
	}
}

// NewServiceWithSeed creates a deterministic mock bureau for tests.
func NewServiceWithSeed(seed int64) *Service {
	return &Service{
		rng: rand.New(rand.NewSource(seed)),
		log: logger.New("services.bureau"),
	}
}

// Check fetches a credit report for the given PAN number.
func (s *Service) Check(ctx context.Context, panNumber string) (*conversation.CreditReport, error) {
	s.mu.Lock()
	score := minScore + s.rng.Intn(maxScore-minScore+1)
	utilization := 20 + s.rng.Intn(61)
	creditAge := 24 + s.rng.Intn(97)
	inquiries := s.rng.Intn(4)
	s.mu.Unlock()

	rating, riskLevel := RatingForScore(score)

	report := &conversation.CreditReport{
		Score:             score,
		Rating:            rating,
		RiskLevel:         riskLevel,
		PANNumber:         panNumber,
		ReportDate:        time.Now().Format("2006-01-02"),
		CreditUtilization: utilization,
		CreditAgeMonths:   creditAge,
		RecentInquiries:   inquiries,
	}

	s.log.Info("", "", "credit_score_fetched", map[string]interface{}{
		"pan_number": panNumber,
		"score":      score,
		"rating":     rating,
	})

	return report, nil
}

// RatingForScore maps a bureau score to its rating and risk level.
func RatingForScore(score int) (rating, riskLevel string) {
	switch {
	case score >= 750:
		return "Excellent", "Low"
	case score >= 700:
		return "Good", "Low"
	case score >= 650:
		return "Fair", "Medium"
	case score >= 600:
		return "Poor", "High"
	default:
		return "Very Poor", "Very High"
	}
}
