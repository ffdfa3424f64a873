package repository

import (
	"context"
	"fmt"

	"masonry_grid/internal/domain/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4/pgxpool"
)

type GenericFileRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewGenericFileRepository(db *pgxpool.Pool) *GenericFileRepo {
	return &GenericFileRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *GenericFileRepo) CreateGenericFile(ctx context.Context, f *models.GenericFile) error {
	const op = "repository.generic_file_repository.CreateGenericFile"

	query, args, err := r.sb.Insert("generic_files").
		Columns("id", "filename", "storage_path", "url", "created_at").
		Values(f.ID, f.Filename, f.StoragePath, f.URL, f.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// GenericFilesByName returns every stored copy of filename, newest first.
func (r *GenericFileRepo) GenericFilesByName(ctx context.Context, filename string) ([]models.GenericFile, error) {
	const op = "repository.generic_file_repository.GenericFilesByName"

	query, args, err := r.sb.Select("id", "filename", "storage_path", "url", "created_at").
		From("generic_files").
		Where(sq.Eq{"filename": filename}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var files []models.GenericFile
	for rows.Next() {
		var f models.GenericFile
		if err := rows.Scan(&f.ID, &f.Filename, &f.StoragePath, &f.URL, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return files, nil
}

func (r *GenericFileRepo) DeleteGenericFile(ctx context.Context, id string) error {
	const op = "repository.generic_file_repository.DeleteGenericFile"

	query, args, err := r.sb.Delete("generic_files").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
