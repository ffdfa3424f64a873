package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"masonry_grid/internal/storage"
)

// FileStorage интерфейс для работы с файловым хранилищем
type FileStorage interface {
	Save(ctx context.Context, file *multipart.FileHeader, subPath string) (filePath string, fileSize int64, err error)
	Put(ctx context.Context, relPath string, data []byte, contentType string) error
	Read(ctx context.Context, relPath string) ([]byte, error)
	Delete(ctx context.Context, filePath string) error
	URL(relPath string) string
	PathFromURL(rawURL string) (string, error)
	BaseURL() string
}

// LocalFileStorage реализация для локальной файловой системы
type LocalFileStorage struct {
	baseDir string // Базовый каталог для хранения (например: "./uploads")
	baseURL string // Базовый URL для доступа к файлам (например: "http://localhost:8080/uploads")
	maxSize int64
}

func NewLocalFileStorage(baseDir, baseURL string, maxSize int64) (*LocalFileStorage, error) {
	// Создаем директорию, если она не существует
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	return &LocalFileStorage{
		baseDir: baseDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		maxSize: maxSize,
	}, nil
}

func (s *LocalFileStorage) Save(ctx context.Context, file *multipart.FileHeader, subPath string) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}
	if s.maxSize > 0 && file.Size > s.maxSize {
		return "", 0, fmt.Errorf("%w: %d > %d", storage.ErrFileTooLarge, file.Size, s.maxSize)
	}

	name := filepath.Base(file.Filename)
	filePath := filepath.Join(s.baseDir, subPath, name)

	select {
	case <-ctx.Done():
		return "", 0, ctx.Err()
	default:
		if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
			return "", 0, fmt.Errorf("failed to create directories: %w", err)
		}
	}

	src, err := file.Open()
	if err != nil {
		return "", 0, fmt.Errorf("failed to open source file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filePath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	done := make(chan struct{})
	var size int64
	var copyErr error

	go func() {
		size, copyErr = io.Copy(dst, src)
		close(done)
	}()

	select {
	case <-done:
		if copyErr != nil {
			_ = os.Remove(filePath)
			return "", 0, fmt.Errorf("failed to copy file: %w", copyErr)
		}
	case <-ctx.Done():
		_ = os.Remove(filePath)
		return "", 0, ctx.Err()
	}

	return filepath.ToSlash(filepath.Join(subPath, name)), size, nil
}

// Put записывает готовые байты по относительному пути
func (s *LocalFileStorage) Put(ctx context.Context, relPath string, data []byte, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return fmt.Errorf("%w: %d > %d", storage.ErrFileTooLarge, len(data), s.maxSize)
	}

	fullPath, err := s.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	tmp := fullPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, fullPath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to move file in place: %w", err)
	}

	return nil
}

func (s *LocalFileStorage) Read(ctx context.Context, relPath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fullPath, err := s.resolve(relPath)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(fullPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", storage.ErrFileNotFound, relPath)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, f); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return buf.Bytes(), nil
}

// Delete удаляет файл из хранилища
func (s *LocalFileStorage) Delete(ctx context.Context, filePath string) error {
	fullPath, err := s.resolve(filePath)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", storage.ErrFileNotFound, filePath)
		}
		return err
	}
	return nil
}

// URL возвращает публичный адрес файла
func (s *LocalFileStorage) URL(relPath string) string {
	return s.baseURL + "/" + strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(relPath)), "/")
}

// PathFromURL возвращает относительный путь файла по его публичному адресу
func (s *LocalFileStorage) PathFromURL(rawURL string) (string, error) {
	return relativePath(s.baseURL, rawURL)
}

// GetFullPath возвращает полный путь к файлу на диске
func (s *LocalFileStorage) GetFullPath(relativePath string) string {
	return filepath.Join(s.baseDir, relativePath)
}

// BaseURL возвращает базовый URL для доступа к файлам
func (s *LocalFileStorage) BaseURL() string {
	return s.baseURL
}

func (s *LocalFileStorage) GetBaseDir() string {
	return s.baseDir
}

// resolve keeps relPath inside baseDir.
func (s *LocalFileStorage) resolve(relPath string) (string, error) {
	clean := path.Clean("/" + filepath.ToSlash(relPath))
	if clean == "/" {
		return "", fmt.Errorf("%w: empty path", storage.ErrFileNotFound)
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(clean)), nil
}

func relativePath(baseURL, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", storage.ErrForeignURL, err)
	}
	u.RawQuery = ""
	u.Fragment = ""

	plain := u.String()
	if !strings.HasPrefix(plain, baseURL+"/") {
		return "", fmt.Errorf("%w: %s", storage.ErrForeignURL, rawURL)
	}

	rel, err := url.PathUnescape(strings.TrimPrefix(plain, baseURL+"/"))
	if err != nil {
		return "", fmt.Errorf("%w: %v", storage.ErrForeignURL, err)
	}
	return rel, nil
}
