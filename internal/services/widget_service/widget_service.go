package services

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"sync"

	"masonry_grid/internal/domain/models"
	"masonry_grid/internal/grid"
	"masonry_grid/internal/layout"
	"masonry_grid/internal/lib/guard"
	"masonry_grid/internal/lib/logger/sl"
	"masonry_grid/internal/metrics"
	"masonry_grid/internal/render"
)

type Persister interface {
	Load(ctx context.Context, sectionID string) (*models.GridDocument, error)
	Save(ctx context.Context, sectionID string, doc *models.GridDocument) (string, error)
}

type MediaUploader interface {
	Upload(ctx context.Context, file *multipart.FileHeader) (*models.UploadedAsset, error)
	FromLibrary(ctx context.Context, asset models.AssetRecord) (*models.UploadedAsset, error)
}

// Library is the part of the media backend behind the editor gate and the
// asset drawer.
type Library interface {
	IsAuthenticatedAsEditor(ctx context.Context, token string) bool
	ListLibraryAssets(ctx context.Context, opts models.AssetListOptions) ([]models.AssetRecord, error)
}

// WidgetService keeps one Widget per section id, loaded on first use.
type WidgetService struct {
	log      *slog.Logger
	catalog  *layout.Catalog
	renderer *render.Renderer
	store    Persister
	media    MediaUploader
	library  Library
	// strict makes invariant violations panic instead of rolling back.
	strict bool

	mu      sync.Mutex
	widgets map[string]*Widget
}

func NewWidgetService(
	log *slog.Logger,
	catalog *layout.Catalog,
	renderer *render.Renderer,
	store Persister,
	media MediaUploader,
	library Library,
	strict bool,
) *WidgetService {
	return &WidgetService{
		log:      log,
		catalog:  catalog,
		renderer: renderer,
		store:    store,
		media:    media,
		library:  library,
		strict:   strict,
		widgets:  make(map[string]*Widget),
	}
}

// widget returns the widget of sectionID, loading its document the first
// time. Loading runs without the registry lock; the first stored widget wins.
func (s *WidgetService) widget(ctx context.Context, sectionID string) (*Widget, error) {
	s.mu.Lock()
	w, ok := s.widgets[sectionID]
	s.mu.Unlock()
	if ok {
		return w, nil
	}

	doc, err := s.store.Load(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	doc.SectionID = sectionID

	editor := grid.NewEditor(s.log, s.catalog, doc)
	editor.Strict = s.strict

	s.mu.Lock()
	defer s.mu.Unlock()

	if w, ok := s.widgets[sectionID]; ok {
		return w, nil
	}
	w = newWidget(s.log, s.renderer, editor)
	s.widgets[sectionID] = w

	return w, nil
}

// View returns the current projections of sectionID.
func (s *WidgetService) View(ctx context.Context, sectionID string) (Projection, error) {
	const op = "widget_service.View"

	w, err := s.widget(ctx, sectionID)
	if err != nil {
		return Projection{}, fmt.Errorf("%s: %w", op, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	return w.projection(), nil
}

// Open switches the widget into edit mode for an authenticated editor and
// takes the snapshot Discard returns to.
func (s *WidgetService) Open(ctx context.Context, sectionID, token string) (Projection, error) {
	const op = "widget_service.Open"

	log := s.log.With(
		slog.String("op", op),
		slog.String("section", sectionID),
	)

	w, err := s.widget(ctx, sectionID)
	if err != nil {
		return Projection{}, fmt.Errorf("%s: %w", op, err)
	}

	release, ok := w.guards.TryAcquire(guard.AdminToggle)
	if !ok {
		return s.rejected(w, op)
	}
	defer release()

	if !s.library.IsAuthenticatedAsEditor(ctx, token) {
		log.Info("editor check failed")
		w.mu.Lock()
		defer w.mu.Unlock()
		return w.projection(), models.NewError(models.KindAuth, op, models.ErrNotEditor)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.open {
		w.open = true
		w.snapshot = w.editor.Document().Clone()
		w.status = nil
		log.Info("editor opened")
	}

	return w.projection(), nil
}

// Close leaves edit mode. Pending changes block it.
func (s *WidgetService) Close(ctx context.Context, sectionID string) (Projection, error) {
	const op = "widget_service.Close"

	w, err := s.widget(ctx, sectionID)
	if err != nil {
		return Projection{}, fmt.Errorf("%s: %w", op, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.dirty {
		w.setStatus(msgCloseBlocked, StatusChanges)
		return w.projection(), fmt.Errorf("%s: %w", op, models.ErrUnsavedChanges)
	}

	w.open = false
	w.status = nil

	return w.projection(), nil
}

// Discard restores the snapshot and drops the image cache.
func (s *WidgetService) Discard(ctx context.Context, sectionID string) (Projection, error) {
	const op = "widget_service.Discard"

	w, err := s.openWidget(ctx, sectionID, op)
	if err != nil {
		return Projection{}, err
	}
	defer w.mu.Unlock()

	w.editor.Reset(w.snapshot.Clone())
	w.dirty = false
	w.revision++
	w.status = nil
	w.ui.Prune(w.editor.Document())

	metrics.EditOperationsTotal.WithLabelValues("discard", metrics.ResultOK).Inc()

	return w.projection(), nil
}

// Save persists the current document. Only one save per widget may be in
// flight. Edits made while it runs stay pending.
func (s *WidgetService) Save(ctx context.Context, sectionID string) (Projection, error) {
	const op = "widget_service.Save"

	log := s.log.With(
		slog.String("op", op),
		slog.String("section", sectionID),
	)

	w, err := s.widget(ctx, sectionID)
	if err != nil {
		return Projection{}, fmt.Errorf("%s: %w", op, err)
	}

	release, ok := w.guards.TryAcquire(guard.Save)
	if !ok {
		return s.rejected(w, op)
	}
	defer release()

	w.mu.Lock()
	if !w.open {
		w.mu.Unlock()
		return Projection{}, fmt.Errorf("%s: %w", op, models.ErrEditorClosed)
	}
	doc := w.editor.Document().Clone()
	rev := w.revision
	w.setStatus(msgSaving, StatusLoading)
	w.mu.Unlock()

	_, err = s.store.Save(ctx, sectionID, doc)

	w.mu.Lock()
	defer w.mu.Unlock()

	if err != nil {
		log.Error("save failed", sl.Err(err))
		w.failStatus("Error saving configuration", err)
		return w.projection(), fmt.Errorf("%s: %w", op, err)
	}

	w.snapshot = doc
	if w.revision != rev {
		// edited or discarded while saving
		w.dirty = true
		w.setStatus(msgUnsavedChanges, StatusChanges)
		return w.projection(), nil
	}

	w.dirty = false
	w.editor.Cache().Clear()
	w.setStatus(msgSaved, StatusSuccess)

	return w.projection(), nil
}

// DismissStatus hides the current status message.
func (s *WidgetService) DismissStatus(ctx context.Context, sectionID string) (Projection, error) {
	const op = "widget_service.DismissStatus"

	w, err := s.widget(ctx, sectionID)
	if err != nil {
		return Projection{}, fmt.Errorf("%s: %w", op, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.status = nil

	return w.projection(), nil
}

// openWidget returns the widget locked when its editor is open.
func (s *WidgetService) openWidget(ctx context.Context, sectionID, op string) (*Widget, error) {
	w, err := s.widget(ctx, sectionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	w.mu.Lock()
	if !w.open {
		w.mu.Unlock()
		return nil, fmt.Errorf("%s: %w", op, models.ErrEditorClosed)
	}

	return w, nil
}

func (s *WidgetService) rejected(w *Widget, op string) (Projection, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.projection(), fmt.Errorf("%s: %w", op, models.ErrOperationInFlight)
}
