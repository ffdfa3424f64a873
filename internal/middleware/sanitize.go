package middleware

import (
	"bytes"
	"encoding/json"
	"html"
	"io"
	"net/http"
	"strings"

	"masonry_grid/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"
)

// SanitizeJSON strips markup from every string of a JSON request body,
// nested objects and arrays included. Values under the keep keys, at any
// depth, are left as sent (secrets such as passwords). Other bodies pass
// through untouched.
func SanitizeJSON(keep ...string) echo.MiddlewareFunc {
	policy := bluemonday.StrictPolicy()

	raw := make(map[string]struct{}, len(keep))
	for _, k := range keep {
		raw[k] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method != http.MethodPost && req.Method != http.MethodPut && req.Method != http.MethodPatch {
				return next(c)
			}
			if !strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
				return next(c)
			}

			buf, err := io.ReadAll(req.Body)
			if err != nil {
				return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", "Invalid body"))
			}
			if len(bytes.TrimSpace(buf)) == 0 {
				req.Body = io.NopCloser(bytes.NewReader(buf))
				return next(c)
			}

			var body interface{}
			if err := json.Unmarshal(buf, &body); err != nil {
				return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", "Malformed JSON"))
			}

			newBody, err := json.Marshal(sanitize(policy, raw, body))
			if err != nil {
				return err
			}
			req.Body = io.NopCloser(bytes.NewReader(newBody))
			req.ContentLength = int64(len(newBody))

			return next(c)
		}
	}
}

func sanitize(policy *bluemonday.Policy, raw map[string]struct{}, v interface{}) interface{} {
	switch t := v.(type) {
	case string:
		// StrictPolicy escapes entities; URLs must keep their raw '&'
		return html.UnescapeString(policy.Sanitize(t))
	case map[string]interface{}:
		for k, val := range t {
			if _, ok := raw[k]; ok {
				continue
			}
			t[k] = sanitize(policy, raw, val)
		}
		return t
	case []interface{}:
		for i, val := range t {
			t[i] = sanitize(policy, raw, val)
		}
		return t
	}
	return v
}
