// Copyright 2025 LoaniFi
// SPDX-License-Identifier: Apache-2.0

// Package main is the entry point for the LoaniFi chat backend.
//
// The backend is a conversational loan-origination service that:
// - Routes each customer message to a specialized agent (engage, verify,
//   underwrite, sanction) via a master routing agent
// - Runs underwriting decisions through a deterministic calculator
// - Persists conversation state in PostgreSQL, message history in MongoDB,
//   and hot session context in Redis
//
// Usage:
//
//	./server
//
// Environment Variables:
//
//	PORT - HTTP server port (default: 8000)
//	DATABASE_URL - PostgreSQL connection string
//	MONGO_URL - MongoDB connection string
//	REDIS_URL - Redis connection string
//	OPENAI_API_KEY - OpenAI API key
//	LLM_MODEL - chat model name (optional)
//	LETTER_DIR - sanction letter output directory (optional)
package main

import (
	"log"

	"loanifi/backend/orchestrator"
)

func main() {
	if err := orchestrator.Run(); err != nil {
		log.Fatal(err)
	}
}
