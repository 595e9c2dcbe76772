package postgres

import (
	"context"
	"fmt"

	"promptchat/internal/domain/repositories"
)

// EnsureSchema creates the tables this service needs if they are missing.
func EnsureSchema(ctx context.Context, cfg *RepositoryConfig, txManager repositories.TransactionManager) error {
	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				chat_id    TEXT PRIMARY KEY,
				message    TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)
		`, cfg.Tables.SystemMessages),
	}

	err := txManager.ExecTx(ctx, func(txCtx context.Context) error {
		executor := GetExecutor(txCtx, cfg.Pool)
		for _, stmt := range statements {
			if _, err := executor.Exec(txCtx, stmt); err != nil {
				return fmt.Errorf("exec schema statement: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	cfg.Logger.Info("database schema ready", "table", cfg.Tables.SystemMessages)
	return nil
}

// DropTables removes every table owned by this service for the configured
// prefix. Used by the seeder for a fresh start.
func DropTables(ctx context.Context, cfg *RepositoryConfig) error {
	dropSQL := fmt.Sprintf(`DROP TABLE IF EXISTS %s CASCADE`, cfg.Tables.SystemMessages)
	if _, err := cfg.Pool.Exec(ctx, dropSQL); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}

	cfg.Logger.Warn("tables dropped", "table", cfg.Tables.SystemMessages)
	return nil
}
