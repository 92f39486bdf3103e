// Copyright 2025 LoaniFi
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"loanifi/backend/llm"
)

// Prometheus metrics
var (
	promTurnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loanifi_chat_turns_total",
			Help: "Total number of conversation turns processed",
		},
		[]string{"agent", "status"},
	)
	promTurnDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "loanifi_chat_turn_duration_milliseconds",
			Help:    "Turn processing duration in milliseconds",
			Buckets: []float64{50, 100, 200, 500, 1000, 2000, 5000, 10000, 30000},
		},
		[]string{"agent"},
	)
	promHandoffsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loanifi_agent_handoffs_total",
			Help: "Total number of agent handoffs",
		},
		[]string{"from", "to"},
	)
	promLLMCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loanifi_llm_calls_total",
			Help: "Total number of LLM API calls",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(promTurnsTotal)
	prometheus.MustRegister(promTurnDuration)
	prometheus.MustRegister(promHandoffsTotal)
	prometheus.MustRegister(promLLMCalls)
}

// instrumentedClient wraps an llm.Client and counts every call
type instrumentedClient struct {
	inner llm.Client
}

func (c *instrumentedClient) ChatCompletion(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	resp, err := c.inner.ChatCompletion(ctx, req)
	if err != nil {
		promLLMCalls.WithLabelValues("error").Inc()
		return nil, err
	}
	promLLMCalls.WithLabelValues("success").Inc()
	return resp, nil
}
