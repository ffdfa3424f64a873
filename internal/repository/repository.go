package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

type Repository struct {
	Assets       AssetRepository
	Jobs         JobRepository
	GenericFiles GenericFileRepository
}

// NewRepository migrates the schema and builds the repositories over db.
// The pool is owned by the caller.
func NewRepository(ctx context.Context, db *pgxpool.Pool) (*Repository, error) {
	const op = "repository.NewRepository"

	if err := Migrate(ctx, db); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Repository{
		Assets:       NewAssetRepository(db),
		Jobs:         NewJobRepository(db),
		GenericFiles: NewGenericFileRepository(db),
	}, nil
}
