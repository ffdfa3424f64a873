package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"masonry_grid/internal/domain/models"
	"masonry_grid/internal/lib/logger/sl"
	"masonry_grid/internal/metrics"

	"github.com/cenkalti/backoff/v4"
	"github.com/gabriel-vasile/mimetype"
)

// Uploader is the part of the media backend the upload pipeline needs.
type Uploader interface {
	UploadRawFile(ctx context.Context, file *multipart.FileHeader, kind models.AssetType) (string, error)
	PollJobStatus(ctx context.Context, jobID string, kind models.AssetType) (*models.ProcessingJob, error)
	ReferenceAsset(ctx context.Context, assetID string, kind models.AssetType) (string, error)
	AuthorizePrivateAsset(ctx context.Context, assetID string) (string, error)
}

type PollConfig struct {
	ImageInterval time.Duration
	VideoInterval time.Duration
	// ImageMaxAttempts caps image polling. Videos poll until ctx is done.
	ImageMaxAttempts int
	// Timeout bounds one whole Upload, zero means only ctx does.
	Timeout time.Duration
}

func DefaultPollConfig() PollConfig {
	return PollConfig{
		ImageInterval:    time.Second,
		VideoInterval:    3 * time.Second,
		ImageMaxAttempts: 30,
	}
}

type MediaService struct {
	log     *slog.Logger
	backend Uploader
	poll    PollConfig
	// videoURLPattern builds the URL of a processed video from its asset id,
	// e.g. https://cdn.example/content/{assetId}/{variant}.
	videoURLPattern string
}

const assetIDPlaceholder = "{assetId}"

var (
	errJobPending = errors.New("job still processing")
	errJobFailed  = errors.New("job failed")
)

func NewMediaService(log *slog.Logger, backend Uploader, poll PollConfig, videoURLPattern string) *MediaService {
	def := DefaultPollConfig()
	if poll.ImageInterval <= 0 {
		poll.ImageInterval = def.ImageInterval
	}
	if poll.VideoInterval <= 0 {
		poll.VideoInterval = def.VideoInterval
	}
	if poll.ImageMaxAttempts <= 0 {
		poll.ImageMaxAttempts = def.ImageMaxAttempts
	}

	return &MediaService{
		log:             log,
		backend:         backend,
		poll:            poll,
		videoURLPattern: videoURLPattern,
	}
}

// Upload runs the whole pipeline: raw upload, job polling, library
// reference. Failures are GridErrors of kind upload or processing.
func (s *MediaService) Upload(ctx context.Context, file *multipart.FileHeader) (*models.UploadedAsset, error) {
	const op = "media_service.Upload"

	log := s.log.With(
		slog.String("op", op),
		slog.String("filename", file.Filename),
	)

	kind, err := DetectKind(file)
	if err != nil {
		log.Warn("unsupported file", sl.Err(err))
		return nil, models.NewError(models.KindUpload, op, err)
	}
	assetType := models.AssetTypeImage
	if kind == models.ItemVideo {
		assetType = models.AssetTypeVideo
	}
	log = log.With(slog.String("kind", string(kind)))

	if s.poll.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.poll.Timeout)
		defer cancel()
	}

	asset, err := s.upload(ctx, log, file, kind, assetType)
	metrics.UploadsTotal.WithLabelValues(string(kind), metrics.Result(err)).Inc()
	if err != nil {
		return nil, err
	}

	log.Info("upload finished", slog.String("asset_id", asset.AssetID))

	return asset, nil
}

func (s *MediaService) upload(ctx context.Context, log *slog.Logger, file *multipart.FileHeader, kind models.ItemKind, assetType models.AssetType) (*models.UploadedAsset, error) {
	const op = "media_service.Upload"

	jobID, err := s.backend.UploadRawFile(ctx, file, assetType)
	if err != nil {
		log.Error("raw upload failed", sl.Err(err))
		return nil, models.NewError(models.KindUpload, op, err)
	}

	assetID, err := s.waitForAsset(ctx, jobID, assetType)
	if err != nil {
		log.Error("processing failed", slog.String("job_id", jobID), sl.Err(err))
		return nil, models.NewError(models.KindProcessing, op, err)
	}

	if kind == models.ItemImage {
		url, err := s.backend.ReferenceAsset(ctx, assetID, assetType)
		if err != nil {
			log.Error("failed to reference asset", sl.Err(err))
			return nil, models.NewError(models.KindUpload, op, err)
		}
		return &models.UploadedAsset{Kind: kind, AssetID: assetID, URL: url}, nil
	}

	// Videos are addressed by pattern. Referencing still activates them in
	// the library but may legitimately be unknown to the platform.
	refURL, err := s.backend.ReferenceAsset(ctx, assetID, assetType)
	if err != nil && !errors.Is(err, models.ErrAssetNotFound) {
		log.Warn("video reference failed, continuing", sl.Err(err))
	}

	url := s.VideoURL(assetID)
	if url == "" {
		url = refURL
	}
	if url == "" {
		return nil, models.NewError(models.KindUpload, op, fmt.Errorf("no url for video asset %s", assetID))
	}

	return &models.UploadedAsset{
		Kind:    kind,
		AssetID: assetID,
		URL:     url,
		Metadata: &models.VideoMetadata{
			AssetData: &models.AssetRecord{
				ID:       assetID,
				Filename: file.Filename,
				Title:    file.Filename,
				Type:     models.AssetTypeVideo,
				URL:      url,
				Metadata: models.Metadata{"fileName": file.Filename},
			},
			DefaultThumbnail: PosterURL(url),
		},
	}, nil
}

// waitForAsset polls the job at a fixed interval until it yields an asset id.
func (s *MediaService) waitForAsset(ctx context.Context, jobID string, kind models.AssetType) (string, error) {
	var b backoff.BackOff
	if kind == models.AssetTypeVideo {
		b = backoff.NewConstantBackOff(s.poll.VideoInterval)
	} else {
		b = backoff.WithMaxRetries(backoff.NewConstantBackOff(s.poll.ImageInterval), uint64(s.poll.ImageMaxAttempts-1))
	}

	var (
		attempts int
		assetID  string
	)

	err := backoff.Retry(func() error {
		attempts++

		job, err := s.backend.PollJobStatus(ctx, jobID, kind)
		if err != nil {
			// transient, keep polling
			s.log.Debug("poll failed", slog.String("job_id", jobID), slog.Int("attempt", attempts), sl.Err(err))
			return err
		}

		switch job.State() {
		case models.JobSucceeded:
			assetID = job.AssetID
			return nil
		case models.JobFailed:
			msg := job.Message
			if msg == "" {
				msg = "unknown error"
			}
			return backoff.Permanent(fmt.Errorf("%w: %s: %s", errJobFailed, jobID, msg))
		}

		return errJobPending
	}, backoff.WithContext(b, ctx))

	metrics.UploadPollAttempts.WithLabelValues(strings.ToLower(string(kind))).Observe(float64(attempts))

	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("waiting for job %s: %w", jobID, ctx.Err())
		}
		if errors.Is(err, errJobFailed) {
			return "", err
		}
		return "", fmt.Errorf("%w after %d attempts: %v", models.ErrProcessingTimeout, attempts, err)
	}

	return assetID, nil
}

// VideoURL builds the URL of a video asset from the configured pattern, or
// returns "" when no pattern is set.
func (s *MediaService) VideoURL(assetID string) string {
	if s.videoURLPattern == "" {
		return ""
	}
	return strings.ReplaceAll(s.videoURLPattern, assetIDPlaceholder, assetID)
}

// FromLibrary turns a library record into the media to attach. Private
// videos are authorized first; when that fails the original URL is kept.
func (s *MediaService) FromLibrary(ctx context.Context, asset models.AssetRecord) (*models.UploadedAsset, error) {
	const op = "media_service.FromLibrary"

	log := s.log.With(
		slog.String("op", op),
		slog.String("asset_id", asset.ID),
	)

	if asset.URL == "" {
		return nil, models.NewError(models.KindUpload, op, fmt.Errorf("asset %s has no url", asset.ID))
	}

	switch asset.Type {
	case models.AssetTypeImage:
		return &models.UploadedAsset{Kind: models.ItemImage, AssetID: asset.ID, URL: asset.URL}, nil
	case models.AssetTypeVideo:
	default:
		return nil, models.NewError(models.KindUpload, op, fmt.Errorf("%w: %s", models.ErrUnsupportedMedia, asset.Type))
	}

	url := asset.URL
	if asset.IsPrivate() {
		authorized, err := s.backend.AuthorizePrivateAsset(ctx, asset.ID)
		if err != nil {
			log.Warn("failed to authorize private video, using original url", sl.Err(err))
		} else {
			url = authorized
		}
	}

	thumb := asset.Thumbnail
	if thumb == "" {
		thumb = PosterURL(asset.URL)
	}

	data := asset
	return &models.UploadedAsset{
		Kind:    models.ItemVideo,
		AssetID: asset.ID,
		URL:     url,
		Metadata: (&models.VideoMetadata{
			AssetData:        &data,
			DefaultThumbnail: thumb,
		}).Clone(),
	}, nil
}

// PosterURL returns the poster variant of a video URL carrying the
// {variant} placeholder.
func PosterURL(url string) string {
	if !strings.Contains(url, "{variant}") {
		return ""
	}
	return strings.Replace(url, "{variant}", "poster", 1)
}

// DetectKind classifies an upload as image or video. The declared content
// type wins, then the file content, then the extension.
func DetectKind(file *multipart.FileHeader) (models.ItemKind, error) {
	if kind, ok := kindOf(file.Header.Get("Content-Type")); ok {
		return kind, nil
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	mt, err := mimetype.DetectReader(src)
	if err == nil {
		if kind, ok := kindOf(mt.String()); ok {
			return kind, nil
		}
	}

	if kind, ok := extensionKinds[strings.ToLower(filepath.Ext(file.Filename))]; ok {
		return kind, nil
	}

	return "", fmt.Errorf("%w: %s", models.ErrUnsupportedMedia, file.Filename)
}

var extensionKinds = map[string]models.ItemKind{
	".jpg":  models.ItemImage,
	".jpeg": models.ItemImage,
	".png":  models.ItemImage,
	".gif":  models.ItemImage,
	".webp": models.ItemImage,
	".avif": models.ItemImage,
	".heic": models.ItemImage,
	".mp4":  models.ItemVideo,
	".m4v":  models.ItemVideo,
	".mov":  models.ItemVideo,
	".webm": models.ItemVideo,
}

func kindOf(contentType string) (models.ItemKind, bool) {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return models.ItemImage, true
	case strings.HasPrefix(contentType, "video/"):
		return models.ItemVideo, true
	}
	return "", false
}
