package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"masonry_grid/internal/domain/models"
)

type AssetFilter string

const (
	FilterAll    AssetFilter = "all"
	FilterImage  AssetFilter = "image"
	FilterVideo  AssetFilter = "video"
	FilterUsed   AssetFilter = "used"
	FilterUnused AssetFilter = "unused"
)

type AssetSort string

const (
	SortDateDesc AssetSort = "date-desc"
	SortDateAsc  AssetSort = "date-asc"
	SortNameAsc  AssetSort = "name-asc"
	SortNameDesc AssetSort = "name-desc"
)

// LibraryQuery drives the asset drawer.
type LibraryQuery struct {
	Search string
	Filter AssetFilter
	Sort   AssetSort
	Limit  int
	Offset int
}

// LibraryAsset is a library record plus whether the grid already shows it.
type LibraryAsset struct {
	models.AssetRecord
	Used bool `json:"used"`
}

// ListAssets lists the media library for the drawer of sectionID.
func (s *WidgetService) ListAssets(ctx context.Context, sectionID string, q LibraryQuery) ([]LibraryAsset, error) {
	const op = "widget_service.ListAssets"

	w, err := s.widget(ctx, sectionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	w.mu.Lock()
	used := usedMedia(w.editor.Document())
	w.mu.Unlock()

	opts := models.DefaultAssetListOptions()
	if q.Limit > 0 {
		opts.Limit = q.Limit
	}
	if q.Offset > 0 {
		opts.Offset = q.Offset
	}
	switch q.Filter {
	case FilterImage:
		opts.AssetTypes = []models.AssetType{models.AssetTypeImage}
	case FilterVideo:
		opts.AssetTypes = []models.AssetType{models.AssetTypeVideo}
	}

	records, err := s.library.ListLibraryAssets(ctx, opts)
	if err != nil {
		return nil, models.NewError(models.KindNetwork, op, err)
	}

	search := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]LibraryAsset, 0, len(records))
	for _, rec := range records {
		if search != "" &&
			!strings.Contains(strings.ToLower(assetName(rec)), search) &&
			!strings.Contains(strings.ToLower(rec.Title), search) {
			continue
		}

		a := LibraryAsset{AssetRecord: rec, Used: used.has(rec)}
		switch q.Filter {
		case FilterUsed:
			if !a.Used {
				continue
			}
		case FilterUnused:
			if a.Used {
				continue
			}
		}
		out = append(out, a)
	}

	sortAssets(out, q.Sort)

	return out, nil
}

func assetName(a models.AssetRecord) string {
	if name, ok := a.Metadata["fileName"].(string); ok && name != "" {
		return name
	}
	return a.Filename
}

func sortAssets(assets []LibraryAsset, by AssetSort) {
	switch by {
	case SortDateAsc:
		sort.SliceStable(assets, func(i, j int) bool {
			return assets[i].CreatedAt.Before(assets[j].CreatedAt)
		})
	case SortNameAsc:
		sort.SliceStable(assets, func(i, j int) bool {
			return strings.ToLower(assetName(assets[i].AssetRecord)) < strings.ToLower(assetName(assets[j].AssetRecord))
		})
	case SortNameDesc:
		sort.SliceStable(assets, func(i, j int) bool {
			return strings.ToLower(assetName(assets[i].AssetRecord)) > strings.ToLower(assetName(assets[j].AssetRecord))
		})
	default:
		sort.SliceStable(assets, func(i, j int) bool {
			return assets[i].CreatedAt.After(assets[j].CreatedAt)
		})
	}
}

// mediaSet holds the media a document shows, by url without query string
// and by asset id.
type mediaSet struct {
	urls map[string]struct{}
	ids  map[string]struct{}
}

func usedMedia(doc *models.GridDocument) mediaSet {
	set := mediaSet{urls: make(map[string]struct{}), ids: make(map[string]struct{})}

	for _, r := range doc.Rows {
		for _, it := range r.Items {
			if !it.Kind.HasMedia() {
				continue
			}
			if it.Content != "" {
				set.urls[normalizeURL(it.Content)] = struct{}{}
			}
			if it.Metadata != nil && it.Metadata.AssetData != nil && it.Metadata.AssetData.ID != "" {
				set.ids[it.Metadata.AssetData.ID] = struct{}{}
			}
		}
	}

	return set
}

func (m mediaSet) has(a models.AssetRecord) bool {
	if _, ok := m.ids[a.ID]; ok && a.ID != "" {
		return true
	}
	if a.URL == "" {
		return false
	}
	_, ok := m.urls[normalizeURL(a.URL)]
	return ok
}

func normalizeURL(u string) string {
	if i := strings.IndexByte(u, '?'); i >= 0 {
		return u[:i]
	}
	return u
}
