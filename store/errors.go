// Copyright 2025 LoaniFi
// SPDX-License-Identifier: Apache-2.0

package store

import "errors"

var (
	// ErrConversationNotFound is returned when a conversation is not found
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrConversationExists is returned when trying to create a conversation that already exists
	ErrConversationExists = errors.New("conversation already exists")

	// ErrApplicationNotFound is returned when a loan application is not found
	ErrApplicationNotFound = errors.New("loan application not found")

	// ErrApplicationExists is returned when trying to create an application that already exists
	ErrApplicationExists = errors.New("loan application already exists")

	// ErrCacheMiss is returned by the session cache when no entry exists
	ErrCacheMiss = errors.New("session cache miss")
)
