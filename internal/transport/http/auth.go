package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"masonry_grid/internal/lib/logger/sl"
	"masonry_grid/internal/services/auth"
	"masonry_grid/internal/transport/http/dto/request"
	"masonry_grid/internal/transport/http/dto/response"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const (
	sessionName     = "session"
	sessionTokenKey = "token"
	editorTokenKey  = "editor_token"
)

// Login проверяет пароль редактора, возвращает JWT и сохраняет его в сессии.
func (r *Routers) Login(c echo.Context) error {
	const op = "http.routers.Login"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.LoginRequest
	if err := bindValid(c, &req); err != nil {
		log.Warn("invalid login request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails(response.CodeInvalidRequest, err.Error()))
	}

	token, err := r.AuthService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, response.ErrorResponseWithDetails(response.CodeAuthFailed, "Invalid email or password"))
		}
		log.Error("login failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails(response.CodeInternal, "Internal server error"))
	}

	sess, err := session.Get(sessionName, c)
	if err == nil {
		sess.Values[sessionTokenKey] = token
		if err := sess.Save(c.Request(), c.Response()); err != nil {
			log.Warn("failed to save session", sl.Err(err))
		}
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(map[string]string{
		"access_token": token,
	}))
}

func (r *Routers) Logout(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err == nil {
		delete(sess.Values, sessionTokenKey)
		sess.Options.MaxAge = -1
		_ = sess.Save(c.Request(), c.Response())
	}

	return c.NoContent(http.StatusNoContent)
}

// EditorOnly accepts a bearer token or the token stored by Login in the
// session cookie.
func (r *Routers) EditorOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := bearerToken(c.Request())
		if token == "" {
			if sess, err := session.Get(sessionName, c); err == nil {
				token, _ = sess.Values[sessionTokenKey].(string)
			}
		}

		if token == "" || !r.verifier.IsAuthenticatedAsEditor(c.Request().Context(), token) {
			return c.JSON(http.StatusUnauthorized, response.ErrEditorRequired)
		}

		c.Set(editorTokenKey, token)

		return next(c)
	}
}

func bearerToken(req *http.Request) string {
	h := req.Header.Get(echo.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func editorToken(c echo.Context) string {
	token, _ := c.Get(editorTokenKey).(string)
	return token
}
