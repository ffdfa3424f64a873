package repository

import (
	"context"
	"time"

	"masonry_grid/internal/domain/models"
)

type AssetRepository interface {
	CreateAsset(ctx context.Context, asset *models.AssetRecord) error
	AssetByID(ctx context.Context, id string) (*models.AssetRecord, error)
	AssetByStoragePath(ctx context.Context, storagePath string) (*models.AssetRecord, error)
	ListAssets(ctx context.Context, opts models.AssetListOptions) ([]models.AssetRecord, error)
}

type JobRepository interface {
	CreateJob(ctx context.Context, job *models.ProcessingJob) error
	UpdateJob(ctx context.Context, job *models.ProcessingJob) error
	JobByID(ctx context.Context, id string) (*models.ProcessingJob, error)
}

type GenericFileRepository interface {
	CreateGenericFile(ctx context.Context, f *models.GenericFile) error
	GenericFilesByName(ctx context.Context, filename string) ([]models.GenericFile, error)
	DeleteGenericFile(ctx context.Context, id string) error
}

// DocumentCache keeps raw grid manifests keyed by their URL.
type DocumentCache interface {
	Get(ctx context.Context, url string) ([]byte, bool, error)
	Set(ctx context.Context, url string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, urls ...string) error
}
