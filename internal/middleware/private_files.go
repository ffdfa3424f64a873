package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"

	"masonry_grid/internal/lib/logger/sl"
	"masonry_grid/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"
)

type FileAuthorizer interface {
	AuthorizeFile(ctx context.Context, storagePath, token string) (bool, error)
}

// PrivateFiles guards a static file route: private assets are served only
// with their ?token= query parameter. The route must end in a "*" wildcard
// holding the stored file path.
func PrivateFiles(log *slog.Logger, auth FileAuthorizer) echo.MiddlewareFunc {
	const op = "middleware.PrivateFiles"

	log = log.With(slog.String("op", op))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rel, err := url.PathUnescape(c.Param("*"))
			if err != nil {
				return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails(response.CodeInvalidRequest, "Invalid path"))
			}
			rel = strings.TrimPrefix(path.Clean("/"+rel), "/")

			ok, err := auth.AuthorizeFile(c.Request().Context(), rel, c.QueryParam("token"))
			if err != nil {
				log.Error("failed to authorize file", slog.String("path", rel), sl.Err(err))
				return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails(response.CodeInternal, "Internal server error"))
			}
			if !ok {
				return c.JSON(http.StatusForbidden, response.ErrorResponseWithDetails(response.CodeAssetForbidden, "Asset token required"))
			}

			return next(c)
		}
	}
}
