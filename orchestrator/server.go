// Copyright 2025 LoaniFi
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"loanifi/backend/config"
	"loanifi/backend/llm/openai"
	"loanifi/backend/services/bureau"
	"loanifi/backend/services/docverify"
	"loanifi/backend/services/sanction"
	"loanifi/backend/shared/logger"
	"loanifi/backend/store"
)

// Run is the exported entry point for the chat backend.
//
// It loads configuration, connects the three stores, wires the agent
// pipeline, sets up HTTP routes, and starts the server. The function blocks
// until the server shuts down.
//
// Environment variables used:
//   - PORT: HTTP server port (default: 8000)
//   - DATABASE_URL: PostgreSQL connection string
//   - MONGO_URL: MongoDB connection string
//   - REDIS_URL: Redis connection string
//   - OPENAI_API_KEY: OpenAI API key
//   - LLM_MODEL: chat model name (optional)
//   - LETTER_DIR: sanction letter output directory (optional)
//   - CONFIG_FILE: optional YAML config file path
func Run() error {
	log := logger.New("server")

	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := store.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	mongoClient, err := store.ConnectMongo(ctx, cfg.MongoURL)
	if err != nil {
		return err
	}
	defer mongoClient.Disconnect(context.Background())

	redisClient, err := store.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	provider, err := openai.NewProvider(openai.Config{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.LLMModel,
	})
	if err != nil {
		return err
	}

	renderer, err := sanction.NewRenderer(cfg.LetterDir)
	if err != nil {
		return err
	}

	service := NewService(Dependencies{
		Client:     provider,
		Bureau:     bureau.NewService(),
		Verifier:   docverify.NewService(),
		Renderer:   renderer,
		Deliverer:  sanction.NewNotifier(),
		Repository: store.NewPostgresRepository(db),
		History:    store.NewMongoHistoryStore(mongoClient.Database(cfg.MongoDatabase)),
		Cache:      store.NewRedisSessionCache(redisClient, cfg.SessionTTL),
	})

	handler := NewHandler(service)

	r := mux.NewRouter()

	r.HandleFunc("/health", handler.Health).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	handler.RegisterRoutes(r)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	log.Info("", "", "server_starting", map[string]interface{}{
		"port":  cfg.Port,
		"model": cfg.LLMModel,
	})

	return http.ListenAndServe(":"+cfg.Port, c.Handler(r))
}
