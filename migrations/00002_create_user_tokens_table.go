package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateUserTokensTable, downCreateUserTokensTable)
}

// seq preserves issuance order; created_at can tie within one transaction.
func upCreateUserTokensTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS user_tokens (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			seq BIGSERIAL NOT NULL,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			token_hash TEXT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
			UNIQUE (user_id, token_hash)
		);
	`)
	return err
}

func downCreateUserTokensTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS user_tokens;`)
	return err
}
