package http

import (
	"errors"

	"masonry_grid/internal/domain/models"
	"masonry_grid/internal/grid"
	"masonry_grid/internal/transport/http/dto/request"

	"github.com/labstack/echo/v4"
)

func (r *Routers) AddRow(c echo.Context) error {
	const op = "http.routers.AddRow"

	section, err := sectionParam(c)
	if err != nil {
		return badRequest(c, err)
	}

	var req request.LayoutRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(c, err)
	}

	p, err := r.WidgetService.AddRow(c.Request().Context(), section, req.Layout)
	return r.projection(c, op, p, err)
}

func (r *Routers) ChangeRowLayout(c echo.Context) error {
	const op = "http.routers.ChangeRowLayout"

	section, row, err := rowParams(c)
	if err != nil {
		return badRequest(c, err)
	}

	var req request.LayoutRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(c, err)
	}

	p, err := r.WidgetService.ChangeRowLayout(c.Request().Context(), section, row, req.Layout)
	return r.projection(c, op, p, err)
}

// SetRowFlags applies the present flags of fullWidth, height and isDraft in
// one edit.
func (r *Routers) SetRowFlags(c echo.Context) error {
	const op = "http.routers.SetRowFlags"

	section, row, err := rowParams(c)
	if err != nil {
		return badRequest(c, err)
	}

	var req request.RowFlagsRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(c, err)
	}
	if req.Empty() {
		return badRequest(c, errors.New("no flags given"))
	}

	flags := grid.RowFlags{FullWidth: req.FullWidth, IsDraft: req.IsDraft}
	if req.Height != nil {
		h := models.RowHeight(*req.Height)
		flags.Height = &h
	}

	p, err := r.WidgetService.SetRowFlags(c.Request().Context(), section, row, flags)
	return r.projection(c, op, p, err)
}

func (r *Routers) ToggleDraft(c echo.Context) error {
	const op = "http.routers.ToggleDraft"

	section, row, err := rowParams(c)
	if err != nil {
		return badRequest(c, err)
	}

	p, err := r.WidgetService.ToggleDraft(c.Request().Context(), section, row)
	return r.projection(c, op, p, err)
}

func (r *Routers) MoveRow(c echo.Context) error {
	const op = "http.routers.MoveRow"

	section, row, err := rowParams(c)
	if err != nil {
		return badRequest(c, err)
	}

	var req request.MoveRowRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(c, err)
	}

	dir := grid.Up
	if req.Direction == "down" {
		dir = grid.Down
	}

	p, err := r.WidgetService.MoveRow(c.Request().Context(), section, row, dir)
	return r.projection(c, op, p, err)
}

func (r *Routers) DuplicateRow(c echo.Context) error {
	const op = "http.routers.DuplicateRow"

	section, row, err := rowParams(c)
	if err != nil {
		return badRequest(c, err)
	}

	p, err := r.WidgetService.DuplicateRow(c.Request().Context(), section, row)
	return r.projection(c, op, p, err)
}

func (r *Routers) DeleteRow(c echo.Context) error {
	const op = "http.routers.DeleteRow"

	section, row, err := rowParams(c)
	if err != nil {
		return badRequest(c, err)
	}

	p, err := r.WidgetService.DeleteRow(c.Request().Context(), section, row)
	return r.projection(c, op, p, err)
}

func (r *Routers) ReorderItems(c echo.Context) error {
	const op = "http.routers.ReorderItems"

	section, row, err := rowParams(c)
	if err != nil {
		return badRequest(c, err)
	}

	var req request.ReorderItemsRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(c, err)
	}

	p, err := r.WidgetService.ReorderItems(c.Request().Context(), section, row, *req.From, *req.To)
	return r.projection(c, op, p, err)
}

// AttachMedia fills a slot from the library or with a ready media URL.
func (r *Routers) AttachMedia(c echo.Context) error {
	const op = "http.routers.AttachMedia"

	section, row, item, err := slotParams(c)
	if err != nil {
		return badRequest(c, err)
	}

	var req request.AttachMediaRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(c, err)
	}

	ctx := c.Request().Context()

	if req.Asset != nil {
		p, err := r.WidgetService.SelectAsset(ctx, section, row, item, *req.Asset)
		return r.projection(c, op, p, err)
	}
	if !req.Direct() {
		return badRequest(c, errors.New("asset or type and content required"))
	}

	p, err := r.WidgetService.AttachMedia(ctx, section, row, item, models.ItemKind(req.Type), req.Content, req.Metadata)
	return r.projection(c, op, p, err)
}

func (r *Routers) ClearMedia(c echo.Context) error {
	const op = "http.routers.ClearMedia"

	section, row, item, err := slotParams(c)
	if err != nil {
		return badRequest(c, err)
	}

	p, err := r.WidgetService.ClearMedia(c.Request().Context(), section, row, item)
	return r.projection(c, op, p, err)
}

func (r *Routers) UploadToSlot(c echo.Context) error {
	const op = "http.routers.UploadToSlot"

	section, row, item, err := slotParams(c)
	if err != nil {
		return badRequest(c, err)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, err)
	}

	p, err := r.WidgetService.UploadToSlot(c.Request().Context(), section, row, item, file)
	return r.projection(c, op, p, err)
}
