package services

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"

	"masonry_grid/internal/domain/models"
	"masonry_grid/internal/lib/guard"
	"masonry_grid/internal/lib/logger/sl"
	"masonry_grid/internal/metrics"

	"github.com/google/uuid"
)

// UploadToSlot uploads file and attaches the result to one slot. The slot is
// remembered by row id, so rows moved during the upload still get it.
func (s *WidgetService) UploadToSlot(ctx context.Context, sectionID string, row, item int, file *multipart.FileHeader) (Projection, error) {
	const op = "widget_service.UploadToSlot"

	return s.fillSlot(ctx, sectionID, op, row, item, func() (*models.UploadedAsset, error) {
		return s.media.Upload(ctx, file)
	})
}

// SelectAsset attaches a library asset to one slot. Private videos are
// authorized first.
func (s *WidgetService) SelectAsset(ctx context.Context, sectionID string, row, item int, asset models.AssetRecord) (Projection, error) {
	const op = "widget_service.SelectAsset"

	return s.fillSlot(ctx, sectionID, op, row, item, func() (*models.UploadedAsset, error) {
		return s.media.FromLibrary(ctx, asset)
	})
}

func (s *WidgetService) fillSlot(ctx context.Context, sectionID, op string, row, item int, fetch func() (*models.UploadedAsset, error)) (Projection, error) {
	log := s.log.With(
		slog.String("op", op),
		slog.String("section", sectionID),
		slog.Int("row", row),
		slog.Int("item", item),
	)

	w, err := s.widget(ctx, sectionID)
	if err != nil {
		return Projection{}, fmt.Errorf("%s: %w", op, err)
	}

	w.mu.Lock()
	if !w.open {
		w.mu.Unlock()
		return Projection{}, fmt.Errorf("%s: %w", op, models.ErrEditorClosed)
	}
	rowID, err := s.contentSlot(w.editor.Document(), row, item)
	if err != nil {
		p := w.projection()
		w.mu.Unlock()
		return p, fmt.Errorf("%s: %w", op, err)
	}

	release, ok := w.guards.TryAcquire(guard.UploadToSlot(rowID, item))
	if !ok {
		p := w.projection()
		w.mu.Unlock()
		return p, fmt.Errorf("%s: %w", op, models.ErrOperationInFlight)
	}
	defer release()

	w.setStatus(msgUploading, StatusLoading)
	w.mu.Unlock()

	asset, err := fetch()

	w.mu.Lock()
	defer w.mu.Unlock()

	if err != nil {
		log.Error("failed to get media", sl.Err(err))
		metrics.EditOperationsTotal.WithLabelValues("AttachMedia", metrics.ResultError).Inc()
		w.failStatus("Upload failed", err)
		return w.projection(), fmt.Errorf("%s: %w", op, err)
	}

	idx := w.editor.Document().RowIndex(rowID)
	if idx < 0 {
		err := fmt.Errorf("%w: row %s was deleted", models.ErrRowIndexOutOfRange, rowID)
		w.failStatus("Upload failed", err)
		return w.projection(), fmt.Errorf("%s: %w", op, err)
	}

	err = w.editor.AttachMedia(idx, item, asset.Kind, asset.URL, asset.Metadata)
	metrics.EditOperationsTotal.WithLabelValues("AttachMedia", metrics.Result(err)).Inc()
	if err != nil {
		w.failStatus("Upload failed", err)
		return w.projection(), fmt.Errorf("%s: %w", op, err)
	}

	w.markChanged()
	log.Info("media attached", slog.String("asset_id", asset.AssetID))

	return w.projection(), nil
}

// contentSlot checks that item of row is a content slot and returns the row
// id.
func (s *WidgetService) contentSlot(doc *models.GridDocument, row, item int) (uuid.UUID, error) {
	if row < 0 || row >= len(doc.Rows) {
		return uuid.Nil, fmt.Errorf("%w: %d of %d", models.ErrRowIndexOutOfRange, row, len(doc.Rows))
	}
	r := doc.Rows[row]
	if item < 0 || item >= len(r.Items) {
		return uuid.Nil, fmt.Errorf("%w: %d of %d", models.ErrItemIndexOutOfRange, item, len(r.Items))
	}

	spacer, err := s.catalog.IsSpacer(r.Layout, item)
	if err != nil {
		return uuid.Nil, err
	}
	if spacer {
		return uuid.Nil, fmt.Errorf("%w: row %d item %d", models.ErrSpacerSlot, row, item)
	}

	return r.ID, nil
}

// UploadToLibrary uploads file into the media library without touching the
// document.
func (s *WidgetService) UploadToLibrary(ctx context.Context, sectionID string, file *multipart.FileHeader) (*models.UploadedAsset, Projection, error) {
	const op = "widget_service.UploadToLibrary"

	log := s.log.With(
		slog.String("op", op),
		slog.String("section", sectionID),
	)

	w, err := s.widget(ctx, sectionID)
	if err != nil {
		return nil, Projection{}, fmt.Errorf("%s: %w", op, err)
	}

	release, ok := w.guards.TryAcquire(guard.UploadToLibrary)
	if !ok {
		p, err := s.rejected(w, op)
		return nil, p, err
	}
	defer release()

	w.mu.Lock()
	if !w.open {
		w.mu.Unlock()
		return nil, Projection{}, fmt.Errorf("%s: %w", op, models.ErrEditorClosed)
	}
	w.setStatus(msgUploading, StatusLoading)
	w.mu.Unlock()

	asset, err := s.media.Upload(ctx, file)

	w.mu.Lock()
	defer w.mu.Unlock()

	if err != nil {
		log.Error("library upload failed", sl.Err(err))
		w.failStatus("Upload failed", err)
		return nil, w.projection(), fmt.Errorf("%s: %w", op, err)
	}

	w.setStatus(msgUploaded, StatusSuccess)
	log.Info("uploaded to library", slog.String("asset_id", asset.AssetID))

	return asset, w.projection(), nil
}
