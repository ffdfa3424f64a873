package grid

import (
	"fmt"
	"log/slog"

	"masonry_grid/internal/domain/models"
	"masonry_grid/internal/layout"
	"masonry_grid/internal/lib/logger/sl"

	"github.com/google/uuid"
)

// RowFlag names a per row display flag.
type RowFlag string

const (
	FlagFullWidth RowFlag = "fullWidth"
	FlagHeight    RowFlag = "height"
	FlagDraft     RowFlag = "isDraft"
)

type Direction int

const (
	Up Direction = iota
	Down
)

// Editor applies edit operations to one GridDocument. It is not safe for
// concurrent use; the owning widget serializes calls.
type Editor struct {
	log     *slog.Logger
	catalog *layout.Catalog
	doc     *models.GridDocument
	cache   *ImageCache

	// Strict panics on an invariant violation instead of rolling back.
	Strict bool
}

func NewEditor(log *slog.Logger, catalog *layout.Catalog, doc *models.GridDocument) *Editor {
	return &Editor{
		log:     log,
		catalog: catalog,
		doc:     doc,
		cache:   NewImageCache(),
	}
}

func (e *Editor) Document() *models.GridDocument {
	return e.doc
}

func (e *Editor) Cache() *ImageCache {
	return e.cache
}

// Reset swaps in another document and drops the image cache.
func (e *Editor) Reset(doc *models.GridDocument) {
	e.doc = doc
	e.cache.Clear()
}

// NewRow builds a row for layoutID with placeholder items and empty spacers.
func (e *Editor) NewRow(layoutID string) (models.Row, error) {
	tpl, err := e.catalog.Resolve(layoutID)
	if err != nil {
		return models.Row{}, err
	}

	items := make([]models.Item, tpl.SlotCount())
	for i, slot := range tpl.Slots {
		if slot.Role == layout.RoleSpacer {
			items[i] = models.EmptyItem()
			continue
		}
		items[i] = models.PlaceholderItem(i, slot.Label)
	}

	return models.Row{
		ID:     uuid.New(),
		Layout: layoutID,
		Items:  items,
		Height: models.HeightMedium,
	}, nil
}

func (e *Editor) AddRow(layoutID string) (models.Row, error) {
	const op = "grid.Editor.AddRow"

	var added models.Row
	err := e.mutate(op, func(doc *models.GridDocument) error {
		row, err := e.NewRow(layoutID)
		if err != nil {
			return err
		}
		doc.Rows = append(doc.Rows, row)
		added = row.Clone()
		return nil
	})

	return added, err
}

func (e *Editor) ChangeRowLayout(rowIndex int, layoutID string) error {
	const op = "grid.Editor.ChangeRowLayout"

	return e.mutate(op, func(doc *models.GridDocument) error {
		if err := checkRow(doc, rowIndex); err != nil {
			return err
		}
		tpl, err := e.catalog.Resolve(layoutID)
		if err != nil {
			return err
		}

		row := &doc.Rows[rowIndex]
		for i, it := range row.Items {
			if it.Kind.HasMedia() {
				e.cache.Store(rowIndex, i, it)
			}
		}

		items := make([]models.Item, tpl.SlotCount())
		for i, slot := range tpl.Slots {
			switch {
			case slot.Role == layout.RoleSpacer:
				items[i] = models.EmptyItem()
			case e.cached(rowIndex, i):
				items[i], _ = e.cache.Lookup(rowIndex, i)
			case i < len(row.Items) && row.Items[i].Kind != models.ItemEmpty:
				items[i] = row.Items[i]
			default:
				items[i] = models.PlaceholderItem(i, slot.Label)
			}
		}

		row.Layout = layoutID
		row.Items = items
		return nil
	})
}

func (e *Editor) cached(row, item int) bool {
	_, ok := e.cache.Lookup(row, item)
	return ok
}

// SetRowFlag sets fullWidth and isDraft from a bool and height from a
// RowHeight or string.
func (e *Editor) SetRowFlag(rowIndex int, flag RowFlag, value any) error {
	const op = "grid.Editor.SetRowFlag"

	return e.mutate(op, func(doc *models.GridDocument) error {
		if err := checkRow(doc, rowIndex); err != nil {
			return err
		}
		return setFlag(&doc.Rows[rowIndex], flag, value)
	})
}

// RowFlags holds the flags of one row to change; nil fields are kept.
type RowFlags struct {
	FullWidth *bool
	Height    *models.RowHeight
	IsDraft   *bool
}

// SetRowFlags changes several flags at once. Either all of them apply or
// none does.
func (e *Editor) SetRowFlags(rowIndex int, flags RowFlags) error {
	const op = "grid.Editor.SetRowFlags"

	return e.mutate(op, func(doc *models.GridDocument) error {
		if err := checkRow(doc, rowIndex); err != nil {
			return err
		}
		row := &doc.Rows[rowIndex]

		if flags.FullWidth != nil {
			if err := setFlag(row, FlagFullWidth, *flags.FullWidth); err != nil {
				return err
			}
		}
		if flags.Height != nil {
			if err := setFlag(row, FlagHeight, *flags.Height); err != nil {
				return err
			}
		}
		if flags.IsDraft != nil {
			if err := setFlag(row, FlagDraft, *flags.IsDraft); err != nil {
				return err
			}
		}
		return nil
	})
}

func setFlag(row *models.Row, flag RowFlag, value any) error {
	switch flag {
	case FlagFullWidth, FlagDraft:
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%w: %s expects a bool, got %T", models.ErrInvalidFlag, flag, value)
		}
		if flag == FlagFullWidth {
			row.FullWidth = b
		} else {
			row.IsDraft = b
		}
	case FlagHeight:
		var h models.RowHeight
		switch v := value.(type) {
		case models.RowHeight:
			h = v
		case string:
			h = models.RowHeight(v)
		}
		if !h.Valid() {
			return fmt.Errorf("%w: height %v", models.ErrInvalidFlag, value)
		}
		row.Height = h
	default:
		return fmt.Errorf("%w: unknown flag %q", models.ErrInvalidFlag, flag)
	}

	return nil
}

func (e *Editor) ToggleDraft(rowIndex int) error {
	if err := checkRow(e.doc, rowIndex); err != nil {
		return fmt.Errorf("grid.Editor.ToggleDraft: %w", err)
	}
	return e.SetRowFlag(rowIndex, FlagDraft, !e.doc.Rows[rowIndex].IsDraft)
}

// ReorderRowItems swaps two items. Equal, out of range and empty slots make
// it a no-op.
func (e *Editor) ReorderRowItems(rowIndex, from, to int) error {
	const op = "grid.Editor.ReorderRowItems"

	return e.mutate(op, func(doc *models.GridDocument) error {
		if err := checkRow(doc, rowIndex); err != nil {
			return err
		}
		items := doc.Rows[rowIndex].Items

		if from == to || from < 0 || to < 0 || from >= len(items) || to >= len(items) {
			return nil
		}
		if items[from].Kind == models.ItemEmpty || items[to].Kind == models.ItemEmpty {
			return nil
		}

		items[from], items[to] = items[to], items[from]
		return nil
	})
}

func (e *Editor) MoveRow(index int, dir Direction) error {
	const op = "grid.Editor.MoveRow"

	target := index - 1
	if dir == Down {
		target = index + 1
	}

	moved := false
	err := e.mutate(op, func(doc *models.GridDocument) error {
		if err := checkRow(doc, index); err != nil {
			return err
		}
		if target < 0 || target >= len(doc.Rows) {
			return nil
		}

		doc.Rows[index], doc.Rows[target] = doc.Rows[target], doc.Rows[index]
		moved = true
		return nil
	})
	if err == nil && moved {
		e.cache.SwapRows(index, target)
	}

	return err
}

// DuplicateRow inserts a deep copy with a fresh ID right after index.
func (e *Editor) DuplicateRow(index int) (models.Row, error) {
	const op = "grid.Editor.DuplicateRow"

	var dup models.Row
	err := e.mutate(op, func(doc *models.GridDocument) error {
		if err := checkRow(doc, index); err != nil {
			return err
		}

		dup = doc.Rows[index].Clone()
		dup.ID = uuid.New()

		rows := make([]models.Row, 0, len(doc.Rows)+1)
		rows = append(rows, doc.Rows[:index+1]...)
		rows = append(rows, dup)
		rows = append(rows, doc.Rows[index+1:]...)
		doc.Rows = rows
		return nil
	})
	if err == nil {
		e.cache.InsertRow(index + 1)
	}

	return dup, err
}

func (e *Editor) DeleteRow(index int) error {
	const op = "grid.Editor.DeleteRow"

	err := e.mutate(op, func(doc *models.GridDocument) error {
		if err := checkRow(doc, index); err != nil {
			return err
		}
		doc.Rows = append(doc.Rows[:index:index], doc.Rows[index+1:]...)
		return nil
	})
	if err == nil {
		e.cache.RemoveRow(index)
	}

	return err
}

func (e *Editor) AttachMedia(rowIndex, itemIndex int, kind models.ItemKind, content string, meta *models.VideoMetadata) error {
	const op = "grid.Editor.AttachMedia"

	return e.mutate(op, func(doc *models.GridDocument) error {
		if !kind.HasMedia() {
			return fmt.Errorf("%w: %q", models.ErrInvalidMediaKind, kind)
		}
		if err := e.checkContentSlot(doc, rowIndex, itemIndex); err != nil {
			return err
		}

		item := models.Item{Kind: kind, Content: content}
		if kind == models.ItemVideo {
			item.Metadata = meta.Clone()
		}
		doc.Rows[rowIndex].Items[itemIndex] = item
		return nil
	})
}

// ClearMedia turns the slot back into a placeholder. Media cached for the
// slot is dropped too, a later layout change must not restore it.
func (e *Editor) ClearMedia(rowIndex, itemIndex int) error {
	const op = "grid.Editor.ClearMedia"

	err := e.mutate(op, func(doc *models.GridDocument) error {
		if err := e.checkContentSlot(doc, rowIndex, itemIndex); err != nil {
			return err
		}

		tpl, err := e.catalog.Resolve(doc.Rows[rowIndex].Layout)
		if err != nil {
			return err
		}
		doc.Rows[rowIndex].Items[itemIndex] = models.PlaceholderItem(itemIndex, tpl.Slots[itemIndex].Label)
		return nil
	})
	if err == nil {
		e.cache.Forget(rowIndex, itemIndex)
	}

	return err
}

func (e *Editor) UpdateStyle(settings models.StyleSettings) error {
	const op = "grid.Editor.UpdateStyle"

	return e.mutate(op, func(doc *models.GridDocument) error {
		if err := settings.Validate(); err != nil {
			return err
		}
		doc.Style = settings.Clamp()
		return nil
	})
}

// CheckInvariants verifies slot counts and the spacer/empty correspondence of
// every row.
func (e *Editor) CheckInvariants() error {
	for r, row := range e.doc.Rows {
		tpl, err := e.catalog.Resolve(row.Layout)
		if err != nil {
			return fmt.Errorf("%w: row %d: %v", models.ErrInvariantViolation, r, err)
		}
		if len(row.Items) != tpl.SlotCount() {
			return fmt.Errorf("%w: row %d holds %d items, layout %s has %d slots",
				models.ErrInvariantViolation, r, len(row.Items), row.Layout, tpl.SlotCount())
		}
		for i, it := range row.Items {
			spacer := tpl.IsSpacer(i)
			if spacer != (it.Kind == models.ItemEmpty) {
				return fmt.Errorf("%w: row %d item %d is %s in a %s slot",
					models.ErrInvariantViolation, r, i, it.Kind, tpl.Slots[i].Role)
			}
			if it.Kind == models.ItemEmpty && it.Content != "" {
				return fmt.Errorf("%w: row %d item %d is empty but has content",
					models.ErrInvariantViolation, r, i)
			}
		}
	}

	return nil
}

// mutate runs fn against the document and rolls back on failure. An invariant
// violation panics in strict mode.
func (e *Editor) mutate(op string, fn func(doc *models.GridDocument) error) error {
	before := e.doc.Clone()

	if err := fn(e.doc); err != nil {
		*e.doc = *before
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := e.CheckInvariants(); err != nil {
		if e.Strict {
			panic(fmt.Sprintf("%s: %v", op, err))
		}

		*e.doc = *before
		e.log.Error("invariant violated, mutation rolled back", slog.String("op", op), sl.Err(err))

		return models.NewError(models.KindInvariant, op, err)
	}

	return nil
}

func checkRow(doc *models.GridDocument, index int) error {
	if index < 0 || index >= len(doc.Rows) {
		return fmt.Errorf("%w: %d of %d", models.ErrRowIndexOutOfRange, index, len(doc.Rows))
	}
	return nil
}

func (e *Editor) checkContentSlot(doc *models.GridDocument, rowIndex, itemIndex int) error {
	if err := checkRow(doc, rowIndex); err != nil {
		return err
	}
	row := doc.Rows[rowIndex]
	if itemIndex < 0 || itemIndex >= len(row.Items) {
		return fmt.Errorf("%w: %d of %d", models.ErrItemIndexOutOfRange, itemIndex, len(row.Items))
	}

	spacer, err := e.catalog.IsSpacer(row.Layout, itemIndex)
	if err != nil {
		return err
	}
	if spacer {
		return fmt.Errorf("%w: row %d item %d", models.ErrSpacerSlot, rowIndex, itemIndex)
	}

	return nil
}
