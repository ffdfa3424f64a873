package mediabackend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/url"
	"path"
	"strings"
	"time"

	"masonry_grid/internal/domain/models"
	"masonry_grid/internal/lib/jwt"
	"masonry_grid/internal/lib/logger/sl"
	"masonry_grid/internal/repository"
	"masonry_grid/internal/storage"
	filestorage "masonry_grid/internal/storage/filestorage"

	"github.com/google/uuid"
)

// LocalConfig configures the self hosted backend.
type LocalConfig struct {
	Secret        string
	AssetTokenTTL time.Duration
	// HeaderPath is where the page header is kept inside the file storage.
	HeaderPath string
}

// Local serves media from our own file storage and PostgreSQL library.
// Uploads are processed synchronously, so every job is finished as soon as
// UploadRawFile returns.
type Local struct {
	log          *slog.Logger
	cfg          LocalConfig
	files        filestorage.FileStorage
	assets       repository.AssetRepository
	jobs         repository.JobRepository
	genericFiles repository.GenericFileRepository
	now          func() time.Time
}

const defaultHeaderPath = "config/header.html"

func NewLocal(
	log *slog.Logger,
	cfg LocalConfig,
	files filestorage.FileStorage,
	assets repository.AssetRepository,
	jobs repository.JobRepository,
	genericFiles repository.GenericFileRepository,
) *Local {
	if cfg.HeaderPath == "" {
		cfg.HeaderPath = defaultHeaderPath
	}
	if cfg.AssetTokenTTL <= 0 {
		cfg.AssetTokenTTL = 24 * time.Hour
	}

	return &Local{
		log:          log,
		cfg:          cfg,
		files:        files,
		assets:       assets,
		jobs:         jobs,
		genericFiles: genericFiles,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (l *Local) IsAuthenticatedAsEditor(_ context.Context, token string) bool {
	return jwt.IsEditor(token, l.cfg.Secret)
}

func (l *Local) UploadRawFile(ctx context.Context, file *multipart.FileHeader, kind models.AssetType) (string, error) {
	const op = "mediabackend.Local.UploadRawFile"

	log := l.log.With(
		slog.String("op", op),
		slog.String("filename", file.Filename),
		slog.String("kind", string(kind)),
	)

	filePath, fileSize, err := l.files.Save(ctx, file, path.Join("library", strings.ToLower(string(kind))))
	if err != nil {
		log.Error("failed to save file", sl.Err(err))

		return "", fmt.Errorf("%s: %w", op, err)
	}

	now := l.now()
	asset := &models.AssetRecord{
		ID:          uuid.NewString(),
		Filename:    file.Filename,
		Title:       strings.TrimSuffix(file.Filename, path.Ext(file.Filename)),
		Type:        kind,
		URL:         l.files.URL(filePath),
		StoragePath: filePath,
		CreatedAt:   now,
		Metadata: models.Metadata{
			"fileName":    file.Filename,
			"size":        fileSize,
			"contentType": file.Header.Get("Content-Type"),
		},
	}

	if err := asset.Validate(); err != nil {
		_ = l.files.Delete(ctx, filePath)
		log.Error("asset validation failed", sl.Err(err))

		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := l.assets.CreateAsset(ctx, asset); err != nil {
		// Удаляем файл если не удалось сохранить в БД
		_ = l.files.Delete(ctx, filePath)
		log.Error("failed to save asset", sl.Err(err))

		return "", fmt.Errorf("%s: %w", op, err)
	}

	job := models.NewFinishedJob(uuid.NewString(), asset.ID, kind, now)
	if err := l.jobs.CreateJob(ctx, job); err != nil {
		log.Error("failed to save job", sl.Err(err))

		return "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("file uploaded", slog.String("asset_id", asset.ID), slog.Int64("size", fileSize))

	return job.ID, nil
}

func (l *Local) PollJobStatus(ctx context.Context, jobID string, _ models.AssetType) (*models.ProcessingJob, error) {
	const op = "mediabackend.Local.PollJobStatus"

	job, err := l.jobs.JobByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return job, nil
}

func (l *Local) ReferenceAsset(ctx context.Context, assetID string, _ models.AssetType) (string, error) {
	const op = "mediabackend.Local.ReferenceAsset"

	asset, err := l.assets.AssetByID(ctx, assetID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return asset.URL, nil
}

// AuthorizePrivateAsset appends a signed token to the URL of private assets.
// Public assets are returned unchanged.
func (l *Local) AuthorizePrivateAsset(ctx context.Context, assetID string) (string, error) {
	const op = "mediabackend.Local.AuthorizePrivateAsset"

	asset, err := l.assets.AssetByID(ctx, assetID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if !asset.IsPrivate() {
		return asset.URL, nil
	}

	token, err := jwt.NewAssetToken(asset.ID, l.cfg.Secret, l.cfg.AssetTokenTTL)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	u, err := url.Parse(asset.URL)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// AuthorizeFile reports whether the stored file at storagePath may be served
// with token. Only private library assets need a valid asset token.
func (l *Local) AuthorizeFile(ctx context.Context, storagePath, token string) (bool, error) {
	const op = "mediabackend.Local.AuthorizeFile"

	asset, err := l.assets.AssetByStoragePath(ctx, storagePath)
	if err != nil {
		if errors.Is(err, models.ErrAssetNotFound) {
			return true, nil
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if !asset.IsPrivate() {
		return true, nil
	}

	return jwt.AssetTokenValid(token, asset.ID, l.cfg.Secret), nil
}

func (l *Local) ListLibraryAssets(ctx context.Context, opts models.AssetListOptions) ([]models.AssetRecord, error) {
	const op = "mediabackend.Local.ListLibraryAssets"

	assets, err := l.assets.ListAssets(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return assets, nil
}

func (l *Local) UploadGenericFile(ctx context.Context, data []byte, filename string) (string, error) {
	const op = "mediabackend.Local.UploadGenericFile"

	f := &models.GenericFile{
		ID:        uuid.NewString(),
		Filename:  path.Base(filename),
		CreatedAt: l.now(),
	}
	f.StoragePath = path.Join("generic", f.ID, f.Filename)

	if err := l.files.Put(ctx, f.StoragePath, data, "application/json"); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	f.URL = l.files.URL(f.StoragePath)

	if err := l.genericFiles.CreateGenericFile(ctx, f); err != nil {
		_ = l.files.Delete(ctx, f.StoragePath)
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return f.URL, nil
}

func (l *Local) RemoveGenericFiles(ctx context.Context, filename, keepURL string) (int, error) {
	const op = "mediabackend.Local.RemoveGenericFiles"

	log := l.log.With(slog.String("op", op), slog.String("filename", filename))

	files, err := l.genericFiles.GenericFilesByName(ctx, filename)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var (
		removed int
		errs    []error
	)
	for _, f := range files {
		if keepURL != "" && f.URL == keepURL {
			continue
		}

		if err := l.files.Delete(ctx, f.StoragePath); err != nil && !errors.Is(err, storage.ErrFileNotFound) {
			log.Warn("failed to delete generic file", slog.String("path", f.StoragePath), sl.Err(err))
			errs = append(errs, err)
			continue
		}
		if err := l.genericFiles.DeleteGenericFile(ctx, f.ID); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}

	if len(errs) > 0 {
		return removed, fmt.Errorf("%s: %w", op, errors.Join(errs...))
	}

	return removed, nil
}

func (l *Local) FetchGenericFile(ctx context.Context, rawURL string) ([]byte, error) {
	const op = "mediabackend.Local.FetchGenericFile"

	relPath, err := l.files.PathFromURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	data, err := l.files.Read(ctx, relPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return data, nil
}

// HeaderInjection returns "" until a header was saved.
func (l *Local) HeaderInjection(ctx context.Context) (string, error) {
	const op = "mediabackend.Local.HeaderInjection"

	data, err := l.files.Read(ctx, l.cfg.HeaderPath)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(data), nil
}

func (l *Local) SaveHeaderInjection(ctx context.Context, header string) error {
	const op = "mediabackend.Local.SaveHeaderInjection"

	if err := l.files.Put(ctx, l.cfg.HeaderPath, []byte(header), "text/html; charset=utf-8"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
