package models

import (
	"fmt"

	"github.com/google/uuid"
)

type ItemKind string

const (
	ItemPlaceholder ItemKind = "placeholder"
	ItemImage       ItemKind = "image"
	ItemVideo       ItemKind = "video"
	ItemEmpty       ItemKind = "empty"
)

func (k ItemKind) Valid() bool {
	switch k {
	case ItemPlaceholder, ItemImage, ItemVideo, ItemEmpty:
		return true
	}
	return false
}

// HasMedia reports whether the kind carries an attached image or video.
func (k ItemKind) HasMedia() bool {
	return k == ItemImage || k == ItemVideo
}

type RowHeight string

const (
	HeightSmall  RowHeight = "small"
	HeightMedium RowHeight = "medium"
	HeightLarge  RowHeight = "large"
)

func (h RowHeight) Valid() bool {
	return h == HeightSmall || h == HeightMedium || h == HeightLarge
}

// VideoMetadata sits on video items only.
type VideoMetadata struct {
	AssetData        *AssetRecord `json:"assetData,omitempty"`
	DefaultThumbnail string       `json:"defaultThumbnail,omitempty"`
	Thumbnails       []string     `json:"thumbnails,omitempty"`
}

func (m *VideoMetadata) Clone() *VideoMetadata {
	if m == nil {
		return nil
	}

	out := *m
	if m.AssetData != nil {
		asset := *m.AssetData
		if m.AssetData.Tags != nil {
			asset.Tags = append([]string(nil), m.AssetData.Tags...)
		}
		if m.AssetData.Metadata != nil {
			asset.Metadata = make(Metadata, len(m.AssetData.Metadata))
			for k, v := range m.AssetData.Metadata {
				asset.Metadata[k] = v
			}
		}
		out.AssetData = &asset
	}
	if m.Thumbnails != nil {
		out.Thumbnails = append([]string(nil), m.Thumbnails...)
	}

	return &out
}

// Item is one media slot of a row.
type Item struct {
	Kind       ItemKind
	Content    string // media URL, or the label of a placeholder
	Background string // placeholder color
	Metadata   *VideoMetadata
}

func (i Item) Clone() Item {
	i.Metadata = i.Metadata.Clone()
	return i
}

// PlaceholderItem builds the colored block shown in a fresh slot.
func PlaceholderItem(index int, label string) Item {
	if label == "" {
		label = fmt.Sprintf("Item %d", index+1)
	}
	return Item{
		Kind:       ItemPlaceholder,
		Content:    label,
		Background: fmt.Sprintf("hsl(%d, 70%%, 60%%)", index*60),
	}
}

func EmptyItem() Item {
	return Item{Kind: ItemEmpty}
}

// Row is one horizontal band of the grid. ID identifies the row for UI state
// only and is regenerated on every load.
type Row struct {
	ID        uuid.UUID
	Layout    string
	Items     []Item
	FullWidth bool
	Height    RowHeight
	IsDraft   bool
}

// Clone deep copies the row and keeps its ID.
func (r Row) Clone() Row {
	items := make([]Item, len(r.Items))
	for i, it := range r.Items {
		items[i] = it.Clone()
	}
	r.Items = items
	return r
}

// GridDocument is the full state of one embed point.
type GridDocument struct {
	SectionID string
	Layout    string
	Accordion bool
	Rows      []Row
	Style     StyleSettings
}

const DefaultDocumentLayout = "layout-5050"

func (d *GridDocument) Clone() *GridDocument {
	if d == nil {
		return nil
	}

	out := *d
	out.Rows = make([]Row, len(d.Rows))
	for i, r := range d.Rows {
		out.Rows[i] = r.Clone()
	}

	return &out
}

// RowIndex returns the position of the row with id, or -1.
func (d *GridDocument) RowIndex(id uuid.UUID) int {
	for i, r := range d.Rows {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// MediaURLs returns the content of every image and video item.
func (d *GridDocument) MediaURLs() []string {
	var urls []string
	for _, r := range d.Rows {
		for _, it := range r.Items {
			if it.Kind.HasMedia() && it.Content != "" {
				urls = append(urls, it.Content)
			}
		}
	}
	return urls
}
