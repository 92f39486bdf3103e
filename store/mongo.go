// Copyright 2025 LoaniFi
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"loanifi/backend/conversation"
)

const historyCollection = "chat_history"

// MongoHistoryStore implements HistoryStore on a MongoDB collection. Each
// message is one document keyed by conversation_id, ordered by timestamp and
// an in-batch sequence number.
type MongoHistoryStore struct {
	collection *mongo.Collection
}

// NewMongoHistoryStore creates a history store on the given database
func NewMongoHistoryStore(db *mongo.Database) *MongoHistoryStore {
	return &MongoHistoryStore{collection: db.Collection(historyCollection)}
}

// ConnectMongo connects and pings a MongoDB deployment
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return client, nil
}

type historyDocument struct {
	ConversationID string                   `bson:"conversation_id"`
	Role           conversation.MessageRole `bson:"role"`
	Content        string                   `bson:"content"`
	Agent          conversation.AgentType   `bson:"agent,omitempty"`
	Timestamp      time.Time                `bson:"timestamp"`

	// Sequence orders messages within one append batch. BSON datetimes only
	// have millisecond precision, so same-turn documents share a timestamp
	// and need an explicit tiebreaker.
	Sequence int `bson:"sequence"`
}

func historyDocs(conversationID string, messages []conversation.Message, now time.Time) []interface{} {
	docs := make([]interface{}, 0, len(messages))
	for i, msg := range messages {
		docs = append(docs, historyDocument{
			ConversationID: conversationID,
			Role:           msg.Role,
			Content:        msg.Content,
			Agent:          msg.Agent,
			Timestamp:      now,
			Sequence:       i,
		})
	}
	return docs
}

// AppendMessages appends messages to the conversation's history in order
func (s *MongoHistoryStore) AppendMessages(ctx context.Context, conversationID string, messages []conversation.Message) error {
	if len(messages) == 0 {
		return nil
	}

	docs := historyDocs(conversationID, messages, time.Now().UTC())
	if _, err := s.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}

// GetHistory returns the conversation's messages oldest first. A limit of 0
// returns the full history.
func (s *MongoHistoryStore) GetHistory(ctx context.Context, conversationID string, limit int) ([]conversation.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "sequence", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.collection.Find(ctx, bson.M{"conversation_id": conversationID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []conversation.Message
	for cursor.Next(ctx) {
		var doc historyDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode history document: %w", err)
		}
		messages = append(messages, conversation.Message{
			Role:    doc.Role,
			Content: doc.Content,
			Agent:   doc.Agent,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}

	return messages, nil
}
