// Package mediabackend is the boundary to the platform that stores media,
// processes uploads and keeps the page header.
package mediabackend

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"masonry_grid/internal/domain/models"
)

var (
	ErrNoJobID    = errors.New("upload response carries no job id")
	ErrNoAssetURL = errors.New("response carries no asset url")
)

// Backend is everything the grid needs from the hosting platform.
type Backend interface {
	IsAuthenticatedAsEditor(ctx context.Context, token string) bool

	// UploadRawFile starts processing of file and returns the job id.
	UploadRawFile(ctx context.Context, file *multipart.FileHeader, kind models.AssetType) (string, error)
	PollJobStatus(ctx context.Context, jobID string, kind models.AssetType) (*models.ProcessingJob, error)
	// ReferenceAsset makes a processed asset part of the library and returns
	// its URL. Unknown assets fail with models.ErrAssetNotFound.
	ReferenceAsset(ctx context.Context, assetID string, kind models.AssetType) (string, error)
	// AuthorizePrivateAsset returns a URL of a private asset that the public
	// page may load.
	AuthorizePrivateAsset(ctx context.Context, assetID string) (string, error)
	ListLibraryAssets(ctx context.Context, opts models.AssetListOptions) ([]models.AssetRecord, error)

	UploadGenericFile(ctx context.Context, data []byte, filename string) (string, error)
	// RemoveGenericFiles deletes every generic file named filename except
	// the one stored at keepURL and returns how many were removed.
	RemoveGenericFiles(ctx context.Context, filename, keepURL string) (int, error)
	FetchGenericFile(ctx context.Context, url string) ([]byte, error)

	HeaderInjection(ctx context.Context) (string, error)
	SaveHeaderInjection(ctx context.Context, header string) error
}

// StatusError is a non 2xx answer of the platform.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.URL, e.Code, e.Body)
}

// AssetKind maps an item kind onto the library asset type.
func AssetKind(kind models.ItemKind) (models.AssetType, error) {
	switch kind {
	case models.ItemImage:
		return models.AssetTypeImage, nil
	case models.ItemVideo:
		return models.AssetTypeVideo, nil
	}
	return "", fmt.Errorf("%w: %s", models.ErrUnsupportedMedia, kind)
}
