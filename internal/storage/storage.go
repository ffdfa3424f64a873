package storage

import "errors"

var (
	ErrFileTooLarge    = errors.New("file size exceeds limit")
	ErrInvalidFileType = errors.New("invalid file type")
	ErrFileNotFound    = errors.New("file not found")
	ErrForeignURL      = errors.New("url does not belong to storage")
	ErrCacheMiss       = errors.New("cache miss")
)
