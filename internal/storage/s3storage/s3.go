package s3storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"path"
	"strings"

	"masonry_grid/internal/storage"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// API is the part of the S3 client the storage needs.
type API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3FileStorage keeps files in one bucket under a key prefix.
type S3FileStorage struct {
	client  API
	bucket  string
	prefix  string
	baseURL string
	maxSize int64
}

// New loads the default AWS configuration for region.
func New(ctx context.Context, region, bucket, prefix, baseURL string, maxSize int64) (*S3FileStorage, error) {
	const op = "s3storage.New"

	if bucket == "" {
		return nil, fmt.Errorf("%s: bucket name is empty", op)
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to load AWS configuration: %w", op, err)
	}

	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}

	return NewWithClient(s3.NewFromConfig(cfg), bucket, prefix, baseURL, maxSize), nil
}

func NewWithClient(client API, bucket, prefix, baseURL string, maxSize int64) *S3FileStorage {
	return &S3FileStorage{
		client:  client,
		bucket:  bucket,
		prefix:  strings.Trim(prefix, "/"),
		baseURL: strings.TrimSuffix(baseURL, "/"),
		maxSize: maxSize,
	}
}

func (s *S3FileStorage) Save(ctx context.Context, file *multipart.FileHeader, subPath string) (string, int64, error) {
	const op = "s3storage.Save"

	if s.maxSize > 0 && file.Size > s.maxSize {
		return "", 0, fmt.Errorf("%s: %w: %d > %d", op, storage.ErrFileTooLarge, file.Size, s.maxSize)
	}

	src, err := file.Open()
	if err != nil {
		return "", 0, fmt.Errorf("%s: failed to open source file: %w", op, err)
	}
	defer src.Close()

	rel := path.Join(subPath, path.Base(file.Filename))

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key(rel)),
		Body:          src,
		ContentLength: aws.Int64(file.Size),
	}
	if ct := file.Header.Get("Content-Type"); ct != "" {
		input.ContentType = aws.String(ct)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", 0, fmt.Errorf("%s: failed to upload file to S3: %w", op, err)
	}

	return rel, file.Size, nil
}

func (s *S3FileStorage) Put(ctx context.Context, relPath string, data []byte, contentType string) error {
	const op = "s3storage.Put"

	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return fmt.Errorf("%s: %w: %d > %d", op, storage.ErrFileTooLarge, len(data), s.maxSize)
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key(relPath)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *S3FileStorage) Read(ctx context.Context, relPath string) ([]byte, error) {
	const op = "s3storage.Read"

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(relPath)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%s: %w: %s", op, storage.ErrFileNotFound, relPath)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return data, nil
}

func (s *S3FileStorage) Delete(ctx context.Context, filePath string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(filePath)),
	})
	if err != nil {
		return fmt.Errorf("s3storage.Delete: %w", err)
	}
	return nil
}

func (s *S3FileStorage) URL(relPath string) string {
	return s.baseURL + "/" + s.key(relPath)
}

func (s *S3FileStorage) PathFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", storage.ErrForeignURL, err)
	}
	u.RawQuery = ""
	u.Fragment = ""

	plain := u.String()
	if !strings.HasPrefix(plain, s.baseURL+"/") {
		return "", fmt.Errorf("%w: %s", storage.ErrForeignURL, rawURL)
	}

	key := strings.TrimPrefix(plain, s.baseURL+"/")
	if s.prefix != "" {
		if !strings.HasPrefix(key, s.prefix+"/") {
			return "", fmt.Errorf("%w: %s", storage.ErrForeignURL, rawURL)
		}
		key = strings.TrimPrefix(key, s.prefix+"/")
	}

	return url.PathUnescape(key)
}

func (s *S3FileStorage) BaseURL() string {
	return s.baseURL
}

func (s *S3FileStorage) key(relPath string) string {
	clean := strings.TrimPrefix(path.Clean("/"+relPath), "/")
	if s.prefix == "" {
		return clean
	}
	return s.prefix + "/" + clean
}
