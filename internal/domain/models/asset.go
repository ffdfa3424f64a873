package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type AssetType string

type Metadata map[string]interface{}

const (
	AssetTypeImage AssetType = "IMAGE"
	AssetTypeVideo AssetType = "VIDEO"
)

const ProtectionPrivate = "PRIVATE"

// AssetRecord представляет медиафайл в библиотеке ассетов
type AssetRecord struct {
	ID              string    `json:"id" db:"id"`
	Filename        string    `json:"filename" db:"filename"`
	Title           string    `json:"title,omitempty" db:"title"`
	Type            AssetType `json:"type" db:"asset_type"`
	URL             string    `json:"url" db:"url"`
	StoragePath     string    `json:"-" db:"storage_path"`
	ProtectionLevel string    `json:"protectionLevel,omitempty" db:"protection_level"`
	Thumbnail       string    `json:"thumbnail,omitempty" db:"thumbnail"`
	Tags            []string  `json:"tags,omitempty" db:"tags"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	Metadata        Metadata  `json:"metadata,omitempty" db:"metadata"`
}

func (a AssetRecord) IsVideo() bool {
	return a.Type == AssetTypeVideo
}

func (a AssetRecord) IsPrivate() bool {
	return a.ProtectionLevel == ProtectionPrivate
}

// AssetListOptions описывает пагинацию и фильтры выборки библиотеки
type AssetListOptions struct {
	Limit      int
	Offset     int
	OrderBy    string
	Order      string
	AssetTypes []AssetType
	Tags       []string
}

const (
	OrderByCreatedAt = "CREATED_AT"
	OrderByFilename  = "FILENAME"
	OrderDesc        = "DESC"
	OrderAsc         = "ASC"
)

func DefaultAssetListOptions() AssetListOptions {
	return AssetListOptions{
		Limit:      100,
		Offset:     0,
		OrderBy:    OrderByCreatedAt,
		Order:      OrderDesc,
		AssetTypes: []AssetType{AssetTypeImage, AssetTypeVideo},
	}
}

// JobState is the processing state of an uploaded file.
type JobState int

const (
	JobPending JobState = iota
	JobSucceeded
	JobFailed
)

// jobStatusDone is the platform status code of a finished job.
const jobStatusDone = 3

// ProcessingJob is the server side processing of one raw upload.
type ProcessingJob struct {
	ID        string    `json:"id" db:"id"`
	AssetID   string    `json:"assetId,omitempty" db:"asset_id"`
	AssetType AssetType `json:"assetType" db:"asset_type"`
	Status    int       `json:"status" db:"status"`
	IsSuccess bool      `json:"isSuccess" db:"is_success"`
	Message   string    `json:"message,omitempty" db:"message"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// State maps the raw status fields onto a JobState. A job succeeds only when
// it is done, successful and carries an asset id.
func (j ProcessingJob) State() JobState {
	switch {
	case j.IsSuccess && j.Status == jobStatusDone && j.AssetID != "":
		return JobSucceeded
	case j.Status == jobStatusDone:
		return JobFailed
	default:
		return JobPending
	}
}

func NewFinishedJob(id, assetID string, assetType AssetType, now time.Time) *ProcessingJob {
	return &ProcessingJob{
		ID:        id,
		AssetID:   assetID,
		AssetType: assetType,
		Status:    jobStatusDone,
		IsSuccess: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GenericFile is a non media file (the grid manifest) kept by the backend.
type GenericFile struct {
	ID          string    `json:"id" db:"id"`
	Filename    string    `json:"filename" db:"filename"`
	StoragePath string    `json:"-" db:"storage_path"`
	URL         string    `json:"url" db:"url"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// UploadedAsset is the result of a finished upload pipeline.
type UploadedAsset struct {
	Kind     ItemKind       `json:"kind"`
	AssetID  string         `json:"assetId"`
	URL      string         `json:"url"`
	Metadata *VideoMetadata `json:"metadata,omitempty"`
}

// Value реализует интерфейс driver.Valuer для сериализации Metadata в JSONB
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan реализует интерфейс sql.Scanner для десериализации JSONB в Metadata
func (m *Metadata) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("failed to scan metadata: unexpected type %T", value)
	}
}

// Validate проверяет корректность записи ассета
func (a *AssetRecord) Validate() error {
	var validationErrors []string

	if a.ID == "" {
		validationErrors = append(validationErrors, "asset id is required")
	}
	if a.Filename == "" {
		validationErrors = append(validationErrors, "filename is required")
	}
	if len(a.Filename) > 255 {
		validationErrors = append(validationErrors, "filename must be 255 characters or less")
	}

	switch a.Type {
	case AssetTypeImage, AssetTypeVideo:
	default:
		validationErrors = append(validationErrors,
			fmt.Sprintf("invalid asset type '%s', must be one of: %v",
				a.Type, []AssetType{AssetTypeImage, AssetTypeVideo}))
	}

	if len(validationErrors) > 0 {
		return &AssetValidationError{
			Errors: validationErrors,
		}
	}

	return nil
}

// AssetValidationError кастомный тип ошибки для валидации
type AssetValidationError struct {
	Errors []string
}

func (e *AssetValidationError) Error() string {
	return fmt.Sprintf("asset validation failed: %s", strings.Join(e.Errors, "; "))
}

func IsAssetValidationError(err error) bool {
	_, ok := err.(*AssetValidationError)
	return ok
}
