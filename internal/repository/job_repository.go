package repository

import (
	"context"
	"errors"
	"fmt"

	"masonry_grid/internal/domain/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

type JobRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewJobRepository(db *pgxpool.Pool) *JobRepo {
	return &JobRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *JobRepo) CreateJob(ctx context.Context, job *models.ProcessingJob) error {
	const op = "repository.job_repository.CreateJob"

	query, args, err := r.sb.Insert("processing_jobs").
		Columns("id", "asset_id", "asset_type", "status", "is_success", "message", "created_at", "updated_at").
		Values(job.ID, job.AssetID, job.AssetType, job.Status, job.IsSuccess, job.Message, job.CreatedAt, job.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *JobRepo) UpdateJob(ctx context.Context, job *models.ProcessingJob) error {
	const op = "repository.job_repository.UpdateJob"

	query, args, err := r.sb.Update("processing_jobs").
		Set("asset_id", job.AssetID).
		Set("status", job.Status).
		Set("is_success", job.IsSuccess).
		Set("message", job.Message).
		Set("updated_at", job.UpdatedAt).
		Where(sq.Eq{"id": job.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrJobNotFound)
	}

	return nil
}

func (r *JobRepo) JobByID(ctx context.Context, id string) (*models.ProcessingJob, error) {
	const op = "repository.job_repository.JobByID"

	query, args, err := r.sb.Select("id", "asset_id", "asset_type", "status", "is_success", "message", "created_at", "updated_at").
		From("processing_jobs").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var job models.ProcessingJob
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&job.ID,
		&job.AssetID,
		&job.AssetType,
		&job.Status,
		&job.IsSuccess,
		&job.Message,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrJobNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &job, nil
}
