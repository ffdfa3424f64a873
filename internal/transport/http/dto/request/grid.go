package request

import "masonry_grid/internal/domain/models"

type LayoutRequest struct {
	Layout string `json:"layout" validate:"required"`
}

// RowFlagsRequest sets only the flags that are present.
type RowFlagsRequest struct {
	FullWidth *bool   `json:"fullWidth"`
	Height    *string `json:"height" validate:"omitempty,oneof=small medium large"`
	IsDraft   *bool   `json:"isDraft"`
}

func (r RowFlagsRequest) Empty() bool {
	return r.FullWidth == nil && r.Height == nil && r.IsDraft == nil
}

type MoveRowRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

type ReorderItemsRequest struct {
	From *int `json:"from" validate:"required,min=0"`
	To   *int `json:"to" validate:"required,min=0"`
}

// AttachMediaRequest carries either a library asset or a ready media URL.
type AttachMediaRequest struct {
	Asset    *models.AssetRecord   `json:"asset"`
	Type     string                `json:"type" validate:"omitempty,oneof=image video"`
	Content  string                `json:"content"`
	Metadata *models.VideoMetadata `json:"metadata"`
}

func (r AttachMediaRequest) Direct() bool {
	return r.Asset == nil && r.Type != "" && r.Content != ""
}

type UpdateStyleRequest struct {
	models.StyleSettings
}

// UIStateRequest updates the admin view state. Expanded keys are row ids.
type UIStateRequest struct {
	Expanded  map[string]bool `json:"expanded"`
	ScrollTop *int            `json:"scrollTop" validate:"omitempty,min=0"`
	ActiveTab *int            `json:"activeTab" validate:"omitempty,min=0"`
}

type LibraryQuery struct {
	Search string `query:"search"`
	Filter string `query:"filter" validate:"omitempty,oneof=all image video used unused"`
	Sort   string `query:"sort" validate:"omitempty,oneof=date-desc date-asc name-asc name-desc"`
	Limit  int    `query:"limit" validate:"min=0,max=200"`
	Offset int    `query:"offset" validate:"min=0"`
}
