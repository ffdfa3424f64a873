package http

import (
	"errors"
	"net/http"

	widget "masonry_grid/internal/services/widget_service"
	"masonry_grid/internal/transport/http/dto/request"
	"masonry_grid/internal/transport/http/dto/response"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// UploadToLibrary uploads a file to the media library without touching the
// grid.
func (r *Routers) UploadToLibrary(c echo.Context) error {
	const op = "http.routers.UploadToLibrary"

	section, err := sectionParam(c)
	if err != nil {
		return badRequest(c, err)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, err)
	}

	asset, p, err := r.WidgetService.UploadToLibrary(c.Request().Context(), section, file)
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(map[string]interface{}{
		"asset":      asset,
		"projection": p,
	}))
}

func (r *Routers) ListAssets(c echo.Context) error {
	const op = "http.routers.ListAssets"

	section, err := sectionParam(c)
	if err != nil {
		return badRequest(c, err)
	}

	var req request.LibraryQuery
	if err := bindValid(c, &req); err != nil {
		return badRequest(c, err)
	}

	assets, err := r.WidgetService.ListAssets(c.Request().Context(), section, widget.LibraryQuery{
		Search: req.Search,
		Filter: widget.AssetFilter(req.Filter),
		Sort:   widget.AssetSort(req.Sort),
		Limit:  req.Limit,
		Offset: req.Offset,
	})
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(assets))
}

func (r *Routers) UpdateStyle(c echo.Context) error {
	const op = "http.routers.UpdateStyle"

	section, err := sectionParam(c)
	if err != nil {
		return badRequest(c, err)
	}

	var req request.UpdateStyleRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(c, err)
	}

	p, err := r.WidgetService.UpdateStyle(c.Request().Context(), section, req.StyleSettings)
	return r.projection(c, op, p, err)
}

// UpdateUI stores admin view state: expanded rows, scroll offset and tab.
func (r *Routers) UpdateUI(c echo.Context) error {
	const op = "http.routers.UpdateUI"

	section, err := sectionParam(c)
	if err != nil {
		return badRequest(c, err)
	}

	var req request.UIStateRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(c, err)
	}

	expanded := make(map[uuid.UUID]bool, len(req.Expanded))
	for k, v := range req.Expanded {
		id, err := uuid.Parse(k)
		if err != nil {
			return badRequest(c, errors.New("invalid row id "+k))
		}
		expanded[id] = v
	}

	ctx := c.Request().Context()

	p, err := r.WidgetService.View(ctx, section)
	if err != nil {
		return r.fail(c, op, err)
	}

	for id, v := range expanded {
		if p, err = r.WidgetService.SetExpanded(ctx, section, id, v); err != nil {
			return r.fail(c, op, err)
		}
	}

	if req.ScrollTop != nil || req.ActiveTab != nil {
		var scrollTop, activeTab int
		if p.Admin != nil && p.Admin.UI != nil {
			scrollTop, activeTab = p.Admin.UI.ScrollTop, p.Admin.UI.ActiveTab
		}
		if req.ScrollTop != nil {
			scrollTop = *req.ScrollTop
		}
		if req.ActiveTab != nil {
			activeTab = *req.ActiveTab
		}
		if p, err = r.WidgetService.SetScroll(ctx, section, scrollTop, activeTab); err != nil {
			return r.fail(c, op, err)
		}
	}

	return r.projection(c, op, p, nil)
}
