// Copyright 2025 LoaniFi
// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"encoding/json"
	"log"
	"os"
	"time"
)

// LogLevel represents the severity of a log entry
type LogLevel string

const (
	DEBUG LogLevel = "DEBUG"
	INFO  LogLevel = "INFO"
	WARN  LogLevel = "WARN"
	ERROR LogLevel = "ERROR"
)

// Logger provides structured JSON logging scoped to a component.
// Entries carry the conversation and request identifiers so log lines
// from one loan-origination conversation can be correlated across
// the orchestrator, agents and backing services.
type Logger struct {
	Component string
	Container string
}

// LogEntry is the wire format written to stdout, one JSON object per line.
type LogEntry struct {
	Timestamp      string                 `json:"timestamp"`
	Level          LogLevel               `json:"level"`
	Component      string                 `json:"component"`
	Container      string                 `json:"container"`
	ConversationID string                 `json:"conversation_id,omitempty"`
	RequestID      string                 `json:"request_id,omitempty"`
	Message        string                 `json:"message"`
	Fields         map[string]interface{} `json:"fields,omitempty"`
}

// New creates a new Logger for the specified component
func New(component string) *Logger {
	container, err := os.Hostname()
	if err != nil {
		container = "unknown"
	}

	return &Logger{
		Component: component,
		Container: container,
	}
}

// Log creates a structured log entry and writes it to stdout
func (l *Logger) Log(level LogLevel, conversationID, requestID, message string, fields map[string]interface{}) {
	entry := LogEntry{
		Timestamp:      time.Now().UTC().Format(time.RFC3339Nano),
		Level:          level,
		Component:      l.Component,
		Container:      l.Container,
		ConversationID: conversationID,
		RequestID:      requestID,
		Message:        message,
		Fields:         fields,
	}

	jsonBytes, err := json.Marshal(entry)
	if err != nil {
		// Fallback to plain text if JSON marshaling fails
		log.Printf("ERROR: failed to marshal log entry: %v", err)
		return
	}

	log.Println(string(jsonBytes))
}

// Info logs an informational message
func (l *Logger) Info(conversationID, requestID, message string, fields map[string]interface{}) {
	l.Log(INFO, conversationID, requestID, message, fields)
}

// Error logs an error message
func (l *Logger) Error(conversationID, requestID, message string, fields map[string]interface{}) {
	l.Log(ERROR, conversationID, requestID, message, fields)
}

// Warn logs a warning message
func (l *Logger) Warn(conversationID, requestID, message string, fields map[string]interface{}) {
	l.Log(WARN, conversationID, requestID, message, fields)
}

// Debug logs a debug message
func (l *Logger) Debug(conversationID, requestID, message string, fields map[string]interface{}) {
	l.Log(DEBUG, conversationID, requestID, message, fields)
}

// ErrorWithErr logs an error message with the error attached as a field
func (l *Logger) ErrorWithErr(conversationID, requestID, message string, err error, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	l.Error(conversationID, requestID, message, fields)
}

// InfoWithDuration logs an info message with duration field
func (l *Logger) InfoWithDuration(conversationID, requestID, message string, durationMS float64, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["duration_ms"] = durationMS
	l.Info(conversationID, requestID, message, fields)
}
