package services

import (
	"encoding/json"
	"fmt"
	"time"

	"masonry_grid/internal/domain/models"
	"masonry_grid/internal/layout"

	"github.com/google/uuid"
)

const DocumentVersion = "1.0.0"

// Manifest is the stored file: one Document per section id. Sections are
// kept raw so that saving one never rewrites the others.
type Manifest map[string]json.RawMessage

// Document is the persisted form of one section.
type Document struct {
	Layout        string    `json:"layout"`
	Accordion     bool      `json:"accordion"`
	Rows          []RowDoc  `json:"rows"`
	StyleSettings *StyleDoc `json:"styleSettings,omitempty"`
	Version       string    `json:"version,omitempty"`
	LastModified  string    `json:"lastModified,omitempty"`
}

type RowDoc struct {
	Layout    string    `json:"layout"`
	Items     []ItemDoc `json:"items"`
	FullWidth bool      `json:"fullWidth"`
	Height    string    `json:"height,omitempty"`
	IsDraft   bool      `json:"isDraft,omitempty"`
}

type ItemDoc struct {
	Type       string                `json:"type"`
	Content    string                `json:"content"`
	Background string                `json:"background,omitempty"`
	Metadata   *models.VideoMetadata `json:"metadata,omitempty"`
}

// StyleDoc uses pointers so that fields missing from older files can be
// told apart from zero values and back-filled with defaults.
type StyleDoc struct {
	RowGap        *int    `json:"rowGap,omitempty"`
	ItemGap       *int    `json:"itemGap,omitempty"`
	MobileRowGap  *int    `json:"mobileRowGap,omitempty"`
	MobileItemGap *int    `json:"mobileItemGap,omitempty"`
	BorderRadius  *int    `json:"borderRadius,omitempty"`
	Shadow        *string `json:"shadow,omitempty"`
	HoverEffect   *string `json:"hoverEffect,omitempty"`
	CropImages    *bool   `json:"cropImages,omitempty"`
}

// Serialize converts doc into its persisted form stamped with now.
func Serialize(doc *models.GridDocument, now time.Time) Document {
	rows := make([]RowDoc, len(doc.Rows))
	for i, r := range doc.Rows {
		items := make([]ItemDoc, len(r.Items))
		for j, it := range r.Items {
			items[j] = ItemDoc{
				Type:       string(it.Kind),
				Content:    it.Content,
				Background: it.Background,
				Metadata:   it.Metadata.Clone(),
			}
		}
		rows[i] = RowDoc{
			Layout:    r.Layout,
			Items:     items,
			FullWidth: r.FullWidth,
			Height:    string(r.Height),
			IsDraft:   r.IsDraft,
		}
	}

	st := doc.Style
	shadow, hover := string(st.Shadow), string(st.HoverEffect)

	docLayout := doc.Layout
	if docLayout == "" {
		docLayout = models.DefaultDocumentLayout
	}

	return Document{
		Layout:    docLayout,
		Accordion: doc.Accordion,
		Rows:      rows,
		StyleSettings: &StyleDoc{
			RowGap:        &st.RowGap,
			ItemGap:       &st.ItemGap,
			MobileRowGap:  &st.MobileRowGap,
			MobileItemGap: &st.MobileItemGap,
			BorderRadius:  &st.BorderRadius,
			Shadow:        &shadow,
			HoverEffect:   &hover,
			CropImages:    &st.CropImages,
		},
		Version:      DocumentVersion,
		LastModified: now.UTC().Format(time.RFC3339),
	}
}

// Deserialize turns a stored section back into a GridDocument. Missing
// heights and style fields get defaults, every row gets a fresh id and item
// lists are repaired to the slot count of their layout. A row with an
// unknown layout or an item of unknown type fails the whole document.
func Deserialize(catalog *layout.Catalog, sectionID string, d Document) (*models.GridDocument, error) {
	const op = "persistence.Deserialize"

	doc := &models.GridDocument{
		SectionID: sectionID,
		Layout:    d.Layout,
		Accordion: d.Accordion,
		Rows:      make([]models.Row, 0, len(d.Rows)),
		Style:     styleFromDoc(d.StyleSettings),
	}
	if doc.Layout == "" {
		doc.Layout = models.DefaultDocumentLayout
	}

	for i, rd := range d.Rows {
		tpl, err := catalog.Resolve(rd.Layout)
		if err != nil {
			return nil, models.NewError(models.KindConfig, op, fmt.Errorf("row %d: %w", i, err))
		}

		height := models.RowHeight(rd.Height)
		if !height.Valid() {
			height = models.HeightMedium
		}

		items := make([]models.Item, tpl.SlotCount())
		for j, slot := range tpl.Slots {
			if slot.Role == layout.RoleSpacer {
				items[j] = models.EmptyItem()
				continue
			}
			if j >= len(rd.Items) || rd.Items[j].Type == string(models.ItemEmpty) {
				items[j] = models.PlaceholderItem(j, slot.Label)
				continue
			}

			it := rd.Items[j]
			kind := models.ItemKind(it.Type)
			if !kind.Valid() {
				return nil, models.NewError(models.KindConfig, op,
					fmt.Errorf("%w: row %d item %d has type %q", models.ErrMalformedDocument, i, j, it.Type))
			}

			item := models.Item{Kind: kind, Content: it.Content, Background: it.Background}
			if kind == models.ItemVideo {
				item.Metadata = it.Metadata.Clone()
			}
			items[j] = item
		}

		doc.Rows = append(doc.Rows, models.Row{
			ID:        uuid.New(),
			Layout:    rd.Layout,
			Items:     items,
			FullWidth: rd.FullWidth,
			Height:    height,
			IsDraft:   rd.IsDraft,
		})
	}

	return doc, nil
}

func styleFromDoc(sd *StyleDoc) models.StyleSettings {
	st := models.DefaultStyleSettings()
	if sd == nil {
		return st
	}

	setInt := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	setInt(&st.RowGap, sd.RowGap)
	setInt(&st.ItemGap, sd.ItemGap)
	setInt(&st.MobileRowGap, sd.MobileRowGap)
	setInt(&st.MobileItemGap, sd.MobileItemGap)
	setInt(&st.BorderRadius, sd.BorderRadius)

	if sd.Shadow != nil {
		st.Shadow = models.Shadow(*sd.Shadow)
	}
	if sd.HoverEffect != nil {
		st.HoverEffect = models.HoverEffect(*sd.HoverEffect)
	}
	if sd.CropImages != nil {
		st.CropImages = *sd.CropImages
	}

	// unknown enum values fall back field by field
	def := models.DefaultStyleSettings()
	if err := (models.StyleSettings{Shadow: st.Shadow, HoverEffect: def.HoverEffect}).Validate(); err != nil {
		st.Shadow = def.Shadow
	}
	if err := (models.StyleSettings{Shadow: def.Shadow, HoverEffect: st.HoverEffect}).Validate(); err != nil {
		st.HoverEffect = def.HoverEffect
	}

	return st.Clamp()
}

// DefaultDocument is shown for a section nothing was saved for yet.
func DefaultDocument(sectionID string) *models.GridDocument {
	return &models.GridDocument{
		SectionID: sectionID,
		Layout:    models.DefaultDocumentLayout,
		Rows: []models.Row{{
			ID:     uuid.New(),
			Layout: layout.DefaultLayout,
			Items: []models.Item{
				{Kind: models.ItemPlaceholder, Content: "Sample Item 1", Background: "#667eea"},
				{Kind: models.ItemPlaceholder, Content: "Sample Item 2", Background: "#f093fb"},
			},
			Height: models.HeightMedium,
		}},
		Style: models.DefaultStyleSettings(),
	}
}
