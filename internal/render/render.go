package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"regexp"
	"strings"

	"masonry_grid/internal/domain/models"
	"masonry_grid/internal/layout"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer projects grid documents into public and admin views. Both
// projections are pure functions of their input.
type Renderer struct {
	catalog *layout.Catalog
	tmpl    *template.Template
}

func New(catalog *layout.Catalog) (*Renderer, error) {
	const op = "render.New"

	tmpl, err := template.New("masonry").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Renderer{catalog: catalog, tmpl: tmpl}, nil
}

// Public renders every published row. Drafts are skipped.
func (r *Renderer) Public(doc *models.GridDocument) View {
	v := View{
		SectionID: doc.SectionID,
		Style:     styleView(doc.Style),
	}

	for i, row := range doc.Rows {
		if row.IsDraft {
			continue
		}
		v.Rows = append(v.Rows, r.rowView(i, row, false))
	}

	return v
}

// Admin renders every row including drafts, with editing controls.
func (r *Renderer) Admin(doc *models.GridDocument, ui UIState) View {
	state := ui.Clone()

	v := View{
		SectionID: doc.SectionID,
		Admin:     true,
		Style:     styleView(doc.Style),
		Heights:   []models.RowHeight{models.HeightSmall, models.HeightMedium, models.HeightLarge},
		UI:        &state,
	}

	for _, t := range r.catalog.All() {
		v.Layouts = append(v.Layouts, LayoutOpt{ID: t.ID, Name: t.Name, Slots: t.SlotCount()})
	}

	last := len(doc.Rows) - 1
	for i, row := range doc.Rows {
		rv := r.rowView(i, row, true)

		rv.Label = fmt.Sprintf("Row %d: %s", i+1, r.catalog.Name(row.Layout))
		if row.IsDraft {
			rv.Label += " (draft)"
			rv.Badge = "Draft"
		}
		rv.Expanded = state.Expanded[row.ID]

		draftLabel := "Make Draft"
		if row.IsDraft {
			draftLabel = "Publish Row"
		}
		rv.Controls = &RowControls{
			FullWidth: row.FullWidth,
			Height:    row.Height,
			Menu: []MenuAction{
				{Action: ActionDraft, Label: draftLabel},
				{Action: ActionDuplicate, Label: "Duplicate Row"},
				{Action: ActionDelete, Label: "Delete Row"},
				{Action: ActionMoveUp, Label: "Move Up", Disabled: i == 0},
				{Action: ActionMoveDown, Label: "Move Down", Disabled: i == last},
			},
		}

		v.Rows = append(v.Rows, rv)
	}

	return v
}

func (r *Renderer) rowView(index int, row models.Row, admin bool) RowView {
	tpl, err := r.catalog.Resolve(row.Layout)
	if err != nil {
		// unreachable for documents that went through the editor
		tpl = layout.Template{ID: row.Layout}
	}

	classes := []string{"masonry-row", "layout-" + row.Layout, "height-" + string(row.Height)}
	if row.FullWidth {
		classes = append(classes, "full-width")
	}
	if admin && row.IsDraft {
		classes = append(classes, "draft-row")
	}

	rv := RowView{
		ID:        row.ID,
		Index:     index,
		Layout:    row.Layout,
		Classes:   strings.Join(classes, " "),
		GridStyle: gridStyle(tpl, len(row.Items)),
		Draft:     row.IsDraft,
		Items:     make([]ItemView, 0, len(row.Items)),
	}

	for i, it := range row.Items {
		var slot layout.Slot
		if i < len(tpl.Slots) {
			slot = tpl.Slots[i]
		}
		rv.Items = append(rv.Items, itemView(i, it, slot, admin))
	}

	return rv
}

func itemView(index int, it models.Item, slot layout.Slot, admin bool) ItemView {
	iv := ItemView{
		Index: index,
		Kind:  it.Kind,
	}

	var style []string
	if slot.Column != "" {
		style = append(style, "grid-column: "+slot.Column)
	}
	if slot.Row != "" {
		style = append(style, "grid-row: "+slot.Row)
	}

	switch it.Kind {
	case models.ItemEmpty:
		style = append(style, "background: transparent")
	case models.ItemPlaceholder:
		iv.Label = it.Content
		if safeColor(it.Background) {
			style = append(style, "background: "+it.Background)
		}
	case models.ItemImage:
		iv.Content = it.Content
		iv.Clickable = true
	case models.ItemVideo:
		iv.Content = it.Content
		iv.Clickable = true
		iv.PlaylistURL = PlaylistURL(it.Content)
		if it.Metadata != nil {
			iv.Poster = it.Metadata.DefaultThumbnail
		}
	}

	if admin && it.Kind != models.ItemEmpty {
		iv.Menu = []MenuAction{
			{Action: ActionLibrary, Label: "Select from Library"},
			{Action: ActionUpload, Label: "Upload"},
		}
		if it.Kind.HasMedia() {
			iv.Menu = append(iv.Menu, MenuAction{Action: ActionRemove, Label: "Remove"})
		}
	}

	iv.Style = template.CSS(strings.Join(style, "; "))
	return iv
}

func gridStyle(tpl layout.Template, items int) template.CSS {
	cols := tpl.Columns
	if cols == "" {
		cols = fmt.Sprintf("repeat(%d, 1fr)", items)
	}

	style := "grid-template-columns: " + cols
	if tpl.Rows != "" {
		style += "; grid-template-rows: " + tpl.Rows
	}

	return template.CSS(style)
}

var shadowCSS = map[models.Shadow]string{
	models.ShadowNone:   "none",
	models.ShadowLight:  "0 2px 8px rgba(0,0,0,0.1)",
	models.ShadowMedium: "0 4px 16px rgba(0,0,0,0.15)",
	models.ShadowHeavy:  "0 8px 32px rgba(0,0,0,0.25)",
}

func styleView(s models.StyleSettings) StyleView {
	fit := "contain"
	if s.CropImages {
		fit = "cover"
	}

	shadow, ok := shadowCSS[s.Shadow]
	if !ok {
		shadow = shadowCSS[models.ShadowNone]
	}

	vars := fmt.Sprintf(
		"--row-gap: %dpx; --item-gap: %dpx; --mobile-row-gap: %dpx; --mobile-item-gap: %dpx; "+
			"--border-radius: %dpx; --item-shadow: %s; --object-fit: %s",
		s.RowGap, s.ItemGap, s.MobileRowGap, s.MobileItemGap, s.BorderRadius, shadow, fit,
	)

	return StyleView{
		Vars:        template.CSS(vars),
		ShadowClass: "shadow-" + string(s.Shadow),
		HoverClass:  "hover-" + string(s.HoverEffect),
		ObjectFit:   fit,
	}
}

var colorRe = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|hsl\(\d{1,3}, ?\d{1,3}%, ?\d{1,3}%\)|rgba?\([\d, .]+\))$`)

// safeColor guards the inline style against anything but a plain color.
func safeColor(c string) bool {
	return colorRe.MatchString(c)
}

// PlaylistURL returns the HLS playlist of a video URL carrying the {variant}
// placeholder, or "" for direct video files.
func PlaylistURL(content string) string {
	if !strings.Contains(content, "{variant}") {
		return ""
	}

	base := strings.ReplaceAll(content, "/{variant}", "")
	base = strings.ReplaceAll(base, "{variant}", "")
	return strings.TrimSuffix(base, "/") + "/playlist.m3u8"
}

// HTML writes the public fragment of v.
func (r *Renderer) HTML(w io.Writer, v View) error {
	if err := r.tmpl.ExecuteTemplate(w, "public.html", v); err != nil {
		return fmt.Errorf("render.HTML: %w", err)
	}
	return nil
}

// AdminHTML writes the admin editing form of v.
func (r *Renderer) AdminHTML(w io.Writer, v View) error {
	if err := r.tmpl.ExecuteTemplate(w, "admin.html", v); err != nil {
		return fmt.Errorf("render.AdminHTML: %w", err)
	}
	return nil
}
