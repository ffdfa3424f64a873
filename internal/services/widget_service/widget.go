package services

import (
	"errors"
	"log/slog"
	"sync"

	"masonry_grid/internal/domain/models"
	"masonry_grid/internal/grid"
	"masonry_grid/internal/lib/guard"
	"masonry_grid/internal/render"
)

type StatusType string

const (
	StatusInfo    StatusType = "info"
	StatusChanges StatusType = "changes"
	StatusLoading StatusType = "loading"
	StatusSuccess StatusType = "success"
	StatusError   StatusType = "error"
)

// Status is the single user visible message of a widget.
type Status struct {
	Message string     `json:"message"`
	Type    StatusType `json:"type"`
}

const (
	msgUnsavedChanges = "You have unsaved changes"
	msgCloseBlocked   = "You have unsaved changes! Please save or discard them before closing."
	msgNotEditor      = "Admin access required. Please log in as an administrator."
	msgSaving         = "Saving configuration..."
	msgSaved          = "Configuration saved successfully!"
	msgUploading      = "Uploading..."
	msgUploaded       = "Upload complete"
)

// Projection is what every widget operation answers with: both views
// rendered from the current document plus the editor state.
type Projection struct {
	SectionID         string       `json:"sectionId"`
	Public            render.View  `json:"public"`
	Admin             *render.View `json:"admin,omitempty"`
	Status            *Status      `json:"status,omitempty"`
	HasUnsavedChanges bool         `json:"hasUnsavedChanges"`
	EditorOpen        bool         `json:"editorOpen"`
}

// Widget is the live state of one embed point. mu serializes every access;
// network calls run without it.
type Widget struct {
	mu sync.Mutex

	sectionID string
	log       *slog.Logger
	renderer  *render.Renderer
	editor    *grid.Editor

	// snapshot is the last loaded or saved document; Discard restores it.
	snapshot *models.GridDocument
	dirty    bool
	// revision grows with every applied edit so a save can tell whether
	// the document changed while it was in flight.
	revision uint64

	open   bool
	ui     render.UIState
	status *Status
	guards *guard.Set
}

func newWidget(log *slog.Logger, renderer *render.Renderer, editor *grid.Editor) *Widget {
	doc := editor.Document()
	return &Widget{
		sectionID: doc.SectionID,
		log:       log.With(slog.String("section", doc.SectionID)),
		renderer:  renderer,
		editor:    editor,
		snapshot:  doc.Clone(),
		ui:        render.NewUIState(),
		guards:    guard.NewSet(),
	}
}

// projection must be called with mu held.
func (w *Widget) projection() Projection {
	doc := w.editor.Document()

	p := Projection{
		SectionID:         w.sectionID,
		Public:            w.renderer.Public(doc),
		HasUnsavedChanges: w.dirty,
		EditorOpen:        w.open,
	}
	if w.open {
		admin := w.renderer.Admin(doc, w.ui)
		p.Admin = &admin
	}
	if w.status != nil {
		st := *w.status
		p.Status = &st
	}

	return p
}

// markChanged must be called with mu held after a successful edit.
func (w *Widget) markChanged() {
	w.dirty = true
	w.revision++
	w.ui.Prune(w.editor.Document())
	w.setStatus(msgUnsavedChanges, StatusChanges)
}

func (w *Widget) setStatus(msg string, typ StatusType) {
	w.status = &Status{Message: msg, Type: typ}
}

// failStatus reports a network side failure to the user. The document is
// left as it was.
func (w *Widget) failStatus(prefix string, err error) {
	w.setStatus(prefix+": "+userMessage(err), StatusError)
}

func userMessage(err error) string {
	var ge *models.GridError
	if errors.As(err, &ge) && ge.Err != nil {
		return ge.Err.Error()
	}
	return err.Error()
}
