package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"masonry_grid/internal/domain/models"
	"masonry_grid/internal/layout"
	"masonry_grid/internal/lib/logger/sl"
	"masonry_grid/internal/metrics"
	"masonry_grid/internal/repository"
)

// ManifestStore is the part of the media backend that keeps the manifest
// file and the page header referencing it.
type ManifestStore interface {
	UploadGenericFile(ctx context.Context, data []byte, filename string) (string, error)
	RemoveGenericFiles(ctx context.Context, filename, keepURL string) (int, error)
	FetchGenericFile(ctx context.Context, url string) ([]byte, error)
	HeaderInjection(ctx context.Context) (string, error)
	SaveHeaderInjection(ctx context.Context, header string) error
}

type PersistenceService struct {
	log      *slog.Logger
	catalog  *layout.Catalog
	store    ManifestStore
	cache    repository.DocumentCache
	cacheTTL time.Duration
	now      func() time.Time
}

func NewPersistenceService(
	log *slog.Logger,
	catalog *layout.Catalog,
	store ManifestStore,
	cache repository.DocumentCache,
	cacheTTL time.Duration,
) *PersistenceService {
	return &PersistenceService{
		log:      log,
		catalog:  catalog,
		store:    store,
		cache:    cache,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// Load returns the saved document of sectionID. Anything that keeps the
// section from being read (no reference, fetch failure, malformed file)
// is logged and answered with the default document; only a cancelled ctx
// is returned as an error.
func (s *PersistenceService) Load(ctx context.Context, sectionID string) (*models.GridDocument, error) {
	const op = "persistence_service.Load"

	log := s.log.With(
		slog.String("op", op),
		slog.String("section", sectionID),
	)

	doc, err := s.load(ctx, sectionID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s: %w", op, ctx.Err())
		}
		log.Warn("falling back to default document", sl.Err(err))
		return DefaultDocument(sectionID), nil
	}
	if doc == nil {
		log.Debug("no saved document, using default")
		return DefaultDocument(sectionID), nil
	}

	return doc, nil
}

func (s *PersistenceService) load(ctx context.Context, sectionID string) (*models.GridDocument, error) {
	const op = "persistence_service.Load"

	header, err := s.store.HeaderInjection(ctx)
	if err != nil {
		return nil, models.NewError(models.KindConfig, op, err)
	}

	url := ParseReference(header)
	if url == "" {
		return nil, nil
	}

	data, err := s.manifestBytes(ctx, url)
	if err != nil {
		return nil, models.NewError(models.KindConfig, op, err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, models.NewError(models.KindConfig, op, fmt.Errorf("%w: %v", models.ErrMalformedDocument, err))
	}

	raw, ok := manifest[sectionID]
	if !ok {
		return nil, nil
	}

	var d Document
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, models.NewError(models.KindConfig, op, fmt.Errorf("%w: section %s: %v", models.ErrMalformedDocument, sectionID, err))
	}

	return Deserialize(s.catalog, sectionID, d)
}

// manifestBytes reads the manifest through the document cache.
func (s *PersistenceService) manifestBytes(ctx context.Context, url string) ([]byte, error) {
	data, hit, err := s.cache.Get(ctx, url)
	if err != nil {
		s.log.Warn("document cache lookup failed", slog.String("url", url), sl.Err(err))
		metrics.DocumentCacheLookups.WithLabelValues("error").Inc()
	} else if hit {
		metrics.DocumentCacheLookups.WithLabelValues("hit").Inc()
		return data, nil
	} else {
		metrics.DocumentCacheLookups.WithLabelValues("miss").Inc()
	}

	data, err = s.store.FetchGenericFile(ctx, url)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, url, data, s.cacheTTL); err != nil {
		s.log.Warn("failed to cache manifest", slog.String("url", url), sl.Err(err))
	}

	return data, nil
}

// Save stores doc as section sectionID of the manifest and points the page
// header at the new file. It returns the manifest url. Stale copies are
// removed only once the header points at the new one, so a failed save
// leaves the previous manifest referenced and readable.
func (s *PersistenceService) Save(ctx context.Context, sectionID string, doc *models.GridDocument) (string, error) {
	const op = "persistence_service.Save"

	log := s.log.With(
		slog.String("op", op),
		slog.String("section", sectionID),
	)

	url, err := s.save(ctx, log, sectionID, doc)
	metrics.DocumentSavesTotal.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		log.Error("failed to save document", sl.Err(err))
		return "", err
	}

	log.Info("document saved", slog.String("url", url))

	return url, nil
}

func (s *PersistenceService) save(ctx context.Context, log *slog.Logger, sectionID string, doc *models.GridDocument) (string, error) {
	const op = "persistence_service.Save"

	header, err := s.store.HeaderInjection(ctx)
	if err != nil {
		return "", models.NewError(models.KindNetwork, op, fmt.Errorf("read header: %w", err))
	}

	manifest := Manifest{}
	oldURL := ParseReference(header)
	if oldURL != "" {
		data, err := s.store.FetchGenericFile(ctx, oldURL)
		if err != nil {
			// other sections live in that file, do not overwrite it blindly
			return "", models.NewError(models.KindNetwork, op, fmt.Errorf("fetch current manifest: %w", err))
		}
		if err := json.Unmarshal(data, &manifest); err != nil || manifest == nil {
			log.Warn("current manifest is unreadable, starting fresh", slog.String("url", oldURL))
			manifest = Manifest{}
		}
	}

	section, err := json.Marshal(Serialize(doc, s.now()))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	manifest[sectionID] = section

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	url, err := s.store.UploadGenericFile(ctx, data, ManifestFilename)
	if err != nil {
		return "", models.NewError(models.KindUpload, op, err)
	}

	if err := s.store.SaveHeaderInjection(ctx, ReplaceReference(header, url)); err != nil {
		return "", models.NewError(models.KindNetwork, op, fmt.Errorf("save header: %w", err))
	}

	removed, err := s.store.RemoveGenericFiles(ctx, ManifestFilename, url)
	if err != nil {
		log.Warn("failed to remove stale manifests", slog.Int("removed", removed), sl.Err(err))
	}

	s.refreshCache(ctx, oldURL, url, data)

	return url, nil
}

func (s *PersistenceService) refreshCache(ctx context.Context, oldURL, url string, data []byte) {
	if oldURL != "" && oldURL != url {
		if err := s.cache.Delete(ctx, oldURL); err != nil {
			s.log.Warn("failed to invalidate cached manifest", slog.String("url", oldURL), sl.Err(err))
		}
	}
	if err := s.cache.Set(ctx, url, data, s.cacheTTL); err != nil {
		s.log.Warn("failed to cache manifest", slog.String("url", url), sl.Err(err))
	}
}
