package render

import (
	"html/template"

	"masonry_grid/internal/domain/models"

	"github.com/google/uuid"
)

// View is one projection of a grid document.
type View struct {
	SectionID string             `json:"sectionId"`
	Admin     bool               `json:"admin"`
	Style     StyleView          `json:"style"`
	Rows      []RowView          `json:"rows"`
	Layouts   []LayoutOpt        `json:"layouts,omitempty"`
	Heights   []models.RowHeight `json:"heights,omitempty"`
	UI        *UIState           `json:"ui,omitempty"`
}

type StyleView struct {
	Vars        template.CSS `json:"vars"`
	ShadowClass string       `json:"shadowClass"`
	HoverClass  string       `json:"hoverClass"`
	ObjectFit   string       `json:"objectFit"`
}

type RowView struct {
	ID        uuid.UUID    `json:"id"`
	Index     int          `json:"index"`
	Layout    string       `json:"layout"`
	Classes   string       `json:"classes"`
	GridStyle template.CSS `json:"gridStyle"`
	Draft     bool         `json:"draft"`
	Items     []ItemView   `json:"items"`

	// admin only
	Label    string       `json:"label,omitempty"`
	Badge    string       `json:"badge,omitempty"`
	Expanded bool         `json:"expanded,omitempty"`
	Controls *RowControls `json:"controls,omitempty"`
}

type ItemView struct {
	Index       int             `json:"index"`
	Kind        models.ItemKind `json:"kind"`
	Content     string          `json:"content,omitempty"`
	Label       string          `json:"label,omitempty"`
	Style       template.CSS    `json:"style"`
	Clickable   bool            `json:"clickable"`
	PlaylistURL string          `json:"playlistUrl,omitempty"`
	Poster      string          `json:"poster,omitempty"`
	Menu        []MenuAction    `json:"menu,omitempty"`
}

type RowControls struct {
	FullWidth bool             `json:"fullWidth"`
	Height    models.RowHeight `json:"height"`
	Menu      []MenuAction     `json:"menu"`
}

type LayoutOpt struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Slots int    `json:"slots"`
}

type MenuAction struct {
	Action   string `json:"action"`
	Label    string `json:"label"`
	Disabled bool   `json:"disabled,omitempty"`
}

// Row and item menu actions.
const (
	ActionLibrary   = "library"
	ActionUpload    = "upload"
	ActionRemove    = "remove"
	ActionDraft     = "toggle-draft"
	ActionDuplicate = "duplicate"
	ActionDelete    = "delete"
	ActionMoveUp    = "move-up"
	ActionMoveDown  = "move-down"
)

// UIState is ephemeral admin state that survives re-renders. Rows are keyed
// by their ID so reordering never restores the wrong row.
type UIState struct {
	Expanded  map[uuid.UUID]bool `json:"expanded"`
	ScrollTop int                `json:"scrollTop"`
	ActiveTab int                `json:"activeTab"`
}

func NewUIState() UIState {
	return UIState{Expanded: make(map[uuid.UUID]bool)}
}

func (u UIState) Clone() UIState {
	out := u
	out.Expanded = make(map[uuid.UUID]bool, len(u.Expanded))
	for id, v := range u.Expanded {
		out.Expanded[id] = v
	}
	return out
}

// Prune forgets rows that are no longer in doc.
func (u *UIState) Prune(doc *models.GridDocument) {
	for id := range u.Expanded {
		if doc.RowIndex(id) < 0 {
			delete(u.Expanded, id)
		}
	}
}
