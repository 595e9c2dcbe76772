package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// CollectionSystemMessages is the collection holding one document per conversation.
const CollectionSystemMessages = "system_messages"

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Database *mongo.Database
	Logger   *slog.Logger
}

// Connect opens a client and verifies the server is reachable.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return client, nil
}

// EnsureIndexes creates the unique chatId index if it is missing.
func EnsureIndexes(ctx context.Context, cfg *RepositoryConfig) error {
	coll := cfg.Database.Collection(CollectionSystemMessages)
	name, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "chatId", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("chatId_unique"),
	})
	if err != nil {
		return fmt.Errorf("create chatId index: %w", err)
	}

	cfg.Logger.Info("mongo indexes ready", "collection", CollectionSystemMessages, "index", name)
	return nil
}

// DropCollections removes the service's collections. Used by the seeder for
// a fresh start.
func DropCollections(ctx context.Context, cfg *RepositoryConfig) error {
	if err := cfg.Database.Collection(CollectionSystemMessages).Drop(ctx); err != nil {
		return fmt.Errorf("drop %s: %w", CollectionSystemMessages, err)
	}

	cfg.Logger.Warn("collections dropped", "collection", CollectionSystemMessages)
	return nil
}
