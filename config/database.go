package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/pocketpilot/pocketpilot-api/storage"
)

// InitDB connects to MongoDB and ensures the indexes the app relies on
// (unique email, month-range queries, TTL on sessions and reset tokens).
func InitDB() (*mongo.Client, *mongo.Database, error) {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		return nil, nil, fmt.Errorf("MONGODB_URI environment variable is required")
	}

	dbName := os.Getenv("MONGODB_DATABASE")
	if dbName == "" {
		dbName = "pocketpilot"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := storage.Connect(ctx, uri)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := client.Database(dbName)
	if err := storage.EnsureIndexes(ctx, db); err != nil {
		return nil, nil, fmt.Errorf("failed to ensure indexes: %w", err)
	}

	return client, db, nil
}
