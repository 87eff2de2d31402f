package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upKvEntries, downKvEntries)
}

func upKvEntries(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS kv_entries (
		key        VARCHAR PRIMARY KEY,
		value      BYTEA NOT NULL,
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
	);
	`)
	if err != nil {
		return err
	}
	return nil
}

func downKvEntries(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
	DROP TABLE IF EXISTS kv_entries;
	`)
	if err != nil {
		return err
	}
	return nil
}
