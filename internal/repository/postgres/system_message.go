package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"promptchat/internal/domain"
	"promptchat/internal/domain/models"
	"promptchat/internal/domain/repositories"
)

// PostgresSystemMessageRepository implements the SystemMessageRepository interface
type PostgresSystemMessageRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewSystemMessageRepository creates a new PostgresSystemMessageRepository
func NewSystemMessageRepository(config *RepositoryConfig) repositories.SystemMessageRepository {
	return &PostgresSystemMessageRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// GetByChatID retrieves the system message for a conversation
func (r *PostgresSystemMessageRepository) GetByChatID(ctx context.Context, chatID string) (*models.SystemMessage, error) {
	query := fmt.Sprintf(`
		SELECT chat_id, message, created_at, updated_at
		FROM %s
		WHERE chat_id = $1
	`, r.tables.SystemMessages)

	var msg models.SystemMessage
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, chatID).Scan(
		&msg.ChatID,
		&msg.Message,
		&msg.CreatedAt,
		&msg.UpdatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			// Nothing saved yet - not an error
			return nil, nil
		}
		return nil, &domain.PersistenceError{Message: "get system message", Err: err}
	}

	return &msg, nil
}

// Upsert creates or replaces the system message for a conversation
func (r *PostgresSystemMessageRepository) Upsert(ctx context.Context, msg *models.SystemMessage) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (chat_id, message, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (chat_id) DO UPDATE SET
			message = EXCLUDED.message,
			updated_at = EXCLUDED.updated_at
		RETURNING chat_id, message, created_at, updated_at
	`, r.tables.SystemMessages)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		msg.ChatID,
		msg.Message,
		msg.CreatedAt,
		msg.UpdatedAt,
	).Scan(
		&msg.ChatID,
		&msg.Message,
		&msg.CreatedAt,
		&msg.UpdatedAt,
	)

	if err != nil {
		if IsPgUndefinedTableError(err) {
			r.logger.Error("system message table missing", "table", r.tables.SystemMessages)
		}
		return &domain.PersistenceError{Message: "upsert system message", Err: err}
	}

	return nil
}
