package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS assets (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	asset_type TEXT NOT NULL,
	url TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	protection_level TEXT NOT NULL DEFAULT '',
	thumbnail TEXT NOT NULL DEFAULT '',
	tags TEXT[] NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	metadata JSONB
);

CREATE TABLE IF NOT EXISTS processing_jobs (
	id TEXT PRIMARY KEY,
	asset_id TEXT NOT NULL DEFAULT '',
	asset_type TEXT NOT NULL,
	status INT NOT NULL,
	is_success BOOLEAN NOT NULL DEFAULT false,
	message TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS generic_files (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	url TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS assets_storage_path_idx ON assets (storage_path);
CREATE INDEX IF NOT EXISTS generic_files_filename_idx ON generic_files (filename);
`

// Migrate creates the tables of the self hosted media backend.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("repository.Migrate: %w", err)
	}
	return nil
}
