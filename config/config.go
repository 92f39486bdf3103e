// Copyright 2025 LoaniFi
// SPDX-License-Identifier: Apache-2.0

// Package config loads service configuration from environment variables,
// optionally layered over a YAML file. Environment variables always win.
// The YAML file may reference environment variables using ${VAR_NAME} or
// ${VAR_NAME:-default} syntax.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults for local development.
const (
	DefaultPort       = "8000"
	DefaultMongoDB    = "loanifi"
	DefaultLLMModel   = "gpt-4-turbo-preview"
	DefaultLetterDir  = "./sanction_letters"
	DefaultSessionTTL = 30 * time.Minute
)

// Config holds the service configuration
type Config struct {
	Port string `yaml:"port"`

	DatabaseURL   string `yaml:"database_url"`
	MongoURL      string `yaml:"mongo_url"`
	MongoDatabase string `yaml:"mongo_database"`
	RedisURL      string `yaml:"redis_url"`

	OpenAIAPIKey string `yaml:"openai_api_key"`
	LLMModel     string `yaml:"llm_model"`

	LetterDir string `yaml:"letter_dir"`

	SessionTTL time.Duration `yaml:"-"`
	// SessionTTLMinutes is the YAML-facing form of SessionTTL.
	SessionTTLMinutes int `yaml:"session_ttl_minutes"`
}

// Load builds the configuration. If CONFIG_FILE is set (or a path is passed
// explicitly), the YAML file is read first; environment variables then
// override any file values.
func Load(filePath string) (*Config, error) {
	cfg := &Config{
		Port:          DefaultPort,
		MongoDatabase: DefaultMongoDB,
		LLMModel:      DefaultLLMModel,
		LetterDir:     DefaultLetterDir,
		SessionTTL:    DefaultSessionTTL,
	}

	if filePath == "" {
		filePath = os.Getenv("CONFIG_FILE")
	}
	if filePath != "" {
		if err := cfg.loadFile(filePath); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if cfg.SessionTTLMinutes > 0 {
		cfg.SessionTTL = time.Duration(cfg.SessionTTLMinutes) * time.Minute
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expanded := expandEnvVars(string(data))

	if err := yaml.Unmarshal([]byte(expanded), c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	setFromEnv(&c.Port, "PORT")
	setFromEnv(&c.DatabaseURL, "DATABASE_URL")
	setFromEnv(&c.MongoURL, "MONGO_URL")
	setFromEnv(&c.MongoDatabase, "MONGO_DATABASE")
	setFromEnv(&c.RedisURL, "REDIS_URL")
	setFromEnv(&c.OpenAIAPIKey, "OPENAI_API_KEY")
	setFromEnv(&c.LLMModel, "LLM_MODEL")
	setFromEnv(&c.LetterDir, "LETTER_DIR")

	if v := os.Getenv("SESSION_TTL_MINUTES"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil && minutes > 0 {
			c.SessionTTLMinutes = minutes
		}
	}
}

func (c *Config) validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.MongoURL == "" {
		return fmt.Errorf("MONGO_URL is required")
	}
	if c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}
	return nil
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// envVarRegex matches ${VAR_NAME} patterns, with optional :-default
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR_NAME} and ${VAR_NAME:-default} references.
// Undefined variables without a default expand to the empty string.
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		varName := match[2 : len(match)-1]

		defaultVal := ""
		if idx := strings.Index(varName, ":-"); idx != -1 {
			defaultVal = varName[idx+2:]
			varName = varName[:idx]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultVal
	})
}
