package mongo

import (
	"context"
	"errors"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"promptchat/internal/domain"
	"promptchat/internal/domain/models"
	"promptchat/internal/domain/repositories"
)

// MongoSystemMessageRepository implements the SystemMessageRepository interface
type MongoSystemMessageRepository struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

// NewSystemMessageRepository creates a new MongoSystemMessageRepository
func NewSystemMessageRepository(config *RepositoryConfig) repositories.SystemMessageRepository {
	return &MongoSystemMessageRepository{
		coll:   config.Database.Collection(CollectionSystemMessages),
		logger: config.Logger,
	}
}

// GetByChatID retrieves the system message for a conversation
func (r *MongoSystemMessageRepository) GetByChatID(ctx context.Context, chatID string) (*models.SystemMessage, error) {
	var msg models.SystemMessage
	err := r.coll.FindOne(ctx, bson.M{"chatId": chatID}).Decode(&msg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, &domain.PersistenceError{Message: "get system message", Err: err}
	}
	return &msg, nil
}

// Upsert creates or replaces the system message for a conversation
func (r *MongoSystemMessageRepository) Upsert(ctx context.Context, msg *models.SystemMessage) error {
	filter := bson.M{"chatId": msg.ChatID}
	update := bson.M{
		"$set": bson.M{
			"message":   msg.Message,
			"updatedAt": msg.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"createdAt": msg.CreatedAt,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var saved models.SystemMessage
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved); err != nil {
		return &domain.PersistenceError{Message: "upsert system message", Err: err}
	}

	*msg = saved
	return nil
}
