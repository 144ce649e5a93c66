package config

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ConnectMongoDB(cfg *Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %v", err)
	}

	// Test connection
	err = client.Ping(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %v", err)
	}

	// Create indexes
	err = createIndexes(client, cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("failed to create indexes: %v", err)
	}

	return client, nil
}

func createIndexes(client *mongo.Client, dbName string) error {
	db := client.Database(dbName)

	// Document chunks: lookups and batch deletes go by source title,
	// the vector index itself is managed as an Atlas search index.
	chunksCollection := db.Collection("document_chunks")
	chunkIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "source_title", Value: 1}, {Key: "chunk_index", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}
	_, err := chunksCollection.Indexes().CreateMany(context.Background(), chunkIndexes)
	if err != nil {
		return err
	}

	// Knowledge entries: scope filter used by the curated-entry lookup
	entriesCollection := db.Collection("knowledge_entries")
	entryIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "course_scope", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "tags", Value: 1}},
		},
	}
	_, err = entriesCollection.Indexes().CreateMany(context.Background(), entryIndexes)
	if err != nil {
		return err
	}

	// Suggestion records: looked up by (ticket_id, entry_id) for view/feedback updates
	recordsCollection := db.Collection("suggestion_records")
	recordIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ticket_id", Value: 1}, {Key: "entry_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err = recordsCollection.Indexes().CreateMany(context.Background(), recordIndexes)
	if err != nil {
		return err
	}

	// Feedback events are append-only, queried per entry
	eventsCollection := db.Collection("feedback_events")
	eventIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "entry_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}
	_, err = eventsCollection.Indexes().CreateMany(context.Background(), eventIndexes)
	if err != nil {
		return err
	}

	return nil
}
