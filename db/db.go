package db

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// extractDBName parses the database name from the URI, defaulting to "debatecraft"
func extractDBName(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "debatecraft"
	}
	if u.Path != "" && u.Path != "/" {
		return u.Path[1:]
	}
	return "debatecraft"
}

// Connect establishes a MongoDB connection and returns the database handle.
func Connect(uri string) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(extractDBName(uri)), nil
}
