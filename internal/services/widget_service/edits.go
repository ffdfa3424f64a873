package services

import (
	"context"
	"fmt"
	"log/slog"

	"masonry_grid/internal/domain/models"
	"masonry_grid/internal/grid"
	"masonry_grid/internal/lib/logger/sl"
	"masonry_grid/internal/metrics"

	"github.com/google/uuid"
)

// edit applies fn to the open widget of sectionID. A successful fn marks the
// document changed; both projections are rebuilt either way.
func (s *WidgetService) edit(ctx context.Context, sectionID, name string, fn func(e *grid.Editor) error) (Projection, error) {
	op := "widget_service." + name

	w, err := s.openWidget(ctx, sectionID, op)
	if err != nil {
		return Projection{}, err
	}
	defer w.mu.Unlock()

	err = fn(w.editor)
	metrics.EditOperationsTotal.WithLabelValues(name, metrics.Result(err)).Inc()
	if err != nil {
		w.log.Warn("edit rejected", slog.String("op", op), sl.Err(err))
		return w.projection(), fmt.Errorf("%s: %w", op, err)
	}

	w.markChanged()

	return w.projection(), nil
}

func (s *WidgetService) AddRow(ctx context.Context, sectionID, layoutID string) (Projection, error) {
	return s.edit(ctx, sectionID, "AddRow", func(e *grid.Editor) error {
		_, err := e.AddRow(layoutID)
		return err
	})
}

func (s *WidgetService) ChangeRowLayout(ctx context.Context, sectionID string, row int, layoutID string) (Projection, error) {
	return s.edit(ctx, sectionID, "ChangeRowLayout", func(e *grid.Editor) error {
		return e.ChangeRowLayout(row, layoutID)
	})
}

func (s *WidgetService) SetRowFlag(ctx context.Context, sectionID string, row int, flag grid.RowFlag, value any) (Projection, error) {
	return s.edit(ctx, sectionID, "SetRowFlag", func(e *grid.Editor) error {
		return e.SetRowFlag(row, flag, value)
	})
}

// SetRowFlags changes several flags of one row as a single edit.
func (s *WidgetService) SetRowFlags(ctx context.Context, sectionID string, row int, flags grid.RowFlags) (Projection, error) {
	return s.edit(ctx, sectionID, "SetRowFlags", func(e *grid.Editor) error {
		return e.SetRowFlags(row, flags)
	})
}

func (s *WidgetService) ToggleDraft(ctx context.Context, sectionID string, row int) (Projection, error) {
	return s.edit(ctx, sectionID, "ToggleDraft", func(e *grid.Editor) error {
		return e.ToggleDraft(row)
	})
}

func (s *WidgetService) ReorderItems(ctx context.Context, sectionID string, row, from, to int) (Projection, error) {
	return s.edit(ctx, sectionID, "ReorderItems", func(e *grid.Editor) error {
		return e.ReorderRowItems(row, from, to)
	})
}

func (s *WidgetService) MoveRow(ctx context.Context, sectionID string, row int, dir grid.Direction) (Projection, error) {
	return s.edit(ctx, sectionID, "MoveRow", func(e *grid.Editor) error {
		return e.MoveRow(row, dir)
	})
}

func (s *WidgetService) DuplicateRow(ctx context.Context, sectionID string, row int) (Projection, error) {
	return s.edit(ctx, sectionID, "DuplicateRow", func(e *grid.Editor) error {
		_, err := e.DuplicateRow(row)
		return err
	})
}

func (s *WidgetService) DeleteRow(ctx context.Context, sectionID string, row int) (Projection, error) {
	return s.edit(ctx, sectionID, "DeleteRow", func(e *grid.Editor) error {
		return e.DeleteRow(row)
	})
}

// AttachMedia puts an already known media url into a slot.
func (s *WidgetService) AttachMedia(ctx context.Context, sectionID string, row, item int, kind models.ItemKind, content string, meta *models.VideoMetadata) (Projection, error) {
	return s.edit(ctx, sectionID, "AttachMedia", func(e *grid.Editor) error {
		return e.AttachMedia(row, item, kind, content, meta)
	})
}

func (s *WidgetService) ClearMedia(ctx context.Context, sectionID string, row, item int) (Projection, error) {
	return s.edit(ctx, sectionID, "ClearMedia", func(e *grid.Editor) error {
		return e.ClearMedia(row, item)
	})
}

func (s *WidgetService) UpdateStyle(ctx context.Context, sectionID string, settings models.StyleSettings) (Projection, error) {
	return s.edit(ctx, sectionID, "UpdateStyle", func(e *grid.Editor) error {
		return e.UpdateStyle(settings)
	})
}

// SetExpanded records whether a row panel is open. UI state only, the
// document stays unchanged.
func (s *WidgetService) SetExpanded(ctx context.Context, sectionID string, rowID uuid.UUID, expanded bool) (Projection, error) {
	const op = "widget_service.SetExpanded"

	w, err := s.openWidget(ctx, sectionID, op)
	if err != nil {
		return Projection{}, err
	}
	defer w.mu.Unlock()

	if w.editor.Document().RowIndex(rowID) < 0 {
		return w.projection(), fmt.Errorf("%s: %w: %s", op, models.ErrRowIndexOutOfRange, rowID)
	}

	if expanded {
		w.ui.Expanded[rowID] = true
	} else {
		delete(w.ui.Expanded, rowID)
	}

	return w.projection(), nil
}

// SetScroll records the scroll offset and active tab of the admin panel.
func (s *WidgetService) SetScroll(ctx context.Context, sectionID string, scrollTop, activeTab int) (Projection, error) {
	const op = "widget_service.SetScroll"

	w, err := s.openWidget(ctx, sectionID, op)
	if err != nil {
		return Projection{}, err
	}
	defer w.mu.Unlock()

	if scrollTop < 0 {
		scrollTop = 0
	}
	w.ui.ScrollTop = scrollTop
	w.ui.ActiveTab = activeTab

	return w.projection(), nil
}
