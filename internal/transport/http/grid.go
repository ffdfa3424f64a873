package http

import (
	"io"
	"net/http"

	"masonry_grid/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"
)

// PublicGrid renders the public HTML fragment of a section.
func (r *Routers) PublicGrid(c echo.Context) error {
	const op = "http.routers.PublicGrid"

	section, err := sectionParam(c)
	if err != nil {
		return badRequest(c, err)
	}

	p, err := r.WidgetService.View(c.Request().Context(), section)
	if err != nil {
		return r.fail(c, op, err)
	}

	return r.html(c, op, func(w io.Writer) error {
		return r.renderer.HTML(w, p.Public)
	})
}

func (r *Routers) PublicView(c echo.Context) error {
	const op = "http.routers.PublicView"

	section, err := sectionParam(c)
	if err != nil {
		return badRequest(c, err)
	}

	p, err := r.WidgetService.View(c.Request().Context(), section)
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(p.Public))
}

// AdminGrid renders the editing form. The editor has to be open.
func (r *Routers) AdminGrid(c echo.Context) error {
	const op = "http.routers.AdminGrid"

	section, err := sectionParam(c)
	if err != nil {
		return badRequest(c, err)
	}

	p, err := r.WidgetService.View(c.Request().Context(), section)
	if err != nil {
		return r.fail(c, op, err)
	}
	if p.Admin == nil {
		return c.JSON(http.StatusConflict, response.ErrorResponseWithDetails(response.CodeEditorClosed, "Editor is not open"))
	}

	return r.html(c, op, func(w io.Writer) error {
		return r.renderer.AdminHTML(w, *p.Admin)
	})
}

func (r *Routers) AdminView(c echo.Context) error {
	const op = "http.routers.AdminView"

	section, err := sectionParam(c)
	if err != nil {
		return badRequest(c, err)
	}

	p, err := r.WidgetService.View(c.Request().Context(), section)
	return r.projection(c, op, p, err)
}

func (r *Routers) Open(c echo.Context) error {
	const op = "http.routers.Open"

	section, err := sectionParam(c)
	if err != nil {
		return badRequest(c, err)
	}

	p, err := r.WidgetService.Open(c.Request().Context(), section, editorToken(c))
	return r.projection(c, op, p, err)
}

func (r *Routers) Close(c echo.Context) error {
	const op = "http.routers.Close"

	section, err := sectionParam(c)
	if err != nil {
		return badRequest(c, err)
	}

	p, err := r.WidgetService.Close(c.Request().Context(), section)
	return r.projection(c, op, p, err)
}

func (r *Routers) Discard(c echo.Context) error {
	const op = "http.routers.Discard"

	section, err := sectionParam(c)
	if err != nil {
		return badRequest(c, err)
	}

	p, err := r.WidgetService.Discard(c.Request().Context(), section)
	return r.projection(c, op, p, err)
}

func (r *Routers) Save(c echo.Context) error {
	const op = "http.routers.Save"

	section, err := sectionParam(c)
	if err != nil {
		return badRequest(c, err)
	}

	p, err := r.WidgetService.Save(c.Request().Context(), section)
	return r.projection(c, op, p, err)
}

func (r *Routers) DismissStatus(c echo.Context) error {
	const op = "http.routers.DismissStatus"

	section, err := sectionParam(c)
	if err != nil {
		return badRequest(c, err)
	}

	p, err := r.WidgetService.DismissStatus(c.Request().Context(), section)
	return r.projection(c, op, p, err)
}
