package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"masonry_grid/internal/domain/models"
	"masonry_grid/internal/grid"
	"masonry_grid/internal/layout"
	"masonry_grid/internal/lib/logger/sl"
	"masonry_grid/internal/render"
	widget "masonry_grid/internal/services/widget_service"
	"masonry_grid/internal/transport/http/dto/response"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type WidgetService interface {
	View(ctx context.Context, sectionID string) (widget.Projection, error)
	Open(ctx context.Context, sectionID, token string) (widget.Projection, error)
	Close(ctx context.Context, sectionID string) (widget.Projection, error)
	Discard(ctx context.Context, sectionID string) (widget.Projection, error)
	Save(ctx context.Context, sectionID string) (widget.Projection, error)
	DismissStatus(ctx context.Context, sectionID string) (widget.Projection, error)

	AddRow(ctx context.Context, sectionID, layoutID string) (widget.Projection, error)
	ChangeRowLayout(ctx context.Context, sectionID string, row int, layoutID string) (widget.Projection, error)
	SetRowFlags(ctx context.Context, sectionID string, row int, flags grid.RowFlags) (widget.Projection, error)
	ToggleDraft(ctx context.Context, sectionID string, row int) (widget.Projection, error)
	ReorderItems(ctx context.Context, sectionID string, row, from, to int) (widget.Projection, error)
	MoveRow(ctx context.Context, sectionID string, row int, dir grid.Direction) (widget.Projection, error)
	DuplicateRow(ctx context.Context, sectionID string, row int) (widget.Projection, error)
	DeleteRow(ctx context.Context, sectionID string, row int) (widget.Projection, error)
	AttachMedia(ctx context.Context, sectionID string, row, item int, kind models.ItemKind, content string, meta *models.VideoMetadata) (widget.Projection, error)
	ClearMedia(ctx context.Context, sectionID string, row, item int) (widget.Projection, error)
	UpdateStyle(ctx context.Context, sectionID string, settings models.StyleSettings) (widget.Projection, error)
	SetExpanded(ctx context.Context, sectionID string, rowID uuid.UUID, expanded bool) (widget.Projection, error)
	SetScroll(ctx context.Context, sectionID string, scrollTop, activeTab int) (widget.Projection, error)

	UploadToSlot(ctx context.Context, sectionID string, row, item int, file *multipart.FileHeader) (widget.Projection, error)
	SelectAsset(ctx context.Context, sectionID string, row, item int, asset models.AssetRecord) (widget.Projection, error)
	UploadToLibrary(ctx context.Context, sectionID string, file *multipart.FileHeader) (*models.UploadedAsset, widget.Projection, error)
	ListAssets(ctx context.Context, sectionID string, q widget.LibraryQuery) ([]widget.LibraryAsset, error)
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
}

type Renderer interface {
	HTML(w io.Writer, v render.View) error
	AdminHTML(w io.Writer, v render.View) error
}

// EditorVerifier decides whether a token belongs to an editor.
type EditorVerifier interface {
	IsAuthenticatedAsEditor(ctx context.Context, token string) bool
}

// HealthChecker is a dependency reported by /health.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type Routers struct {
	log           *slog.Logger
	WidgetService WidgetService
	AuthService   AuthService
	renderer      Renderer
	verifier      EditorVerifier
	checks        map[string]HealthChecker
}

func NewRouter(
	log *slog.Logger,
	widgetService WidgetService,
	authService AuthService,
	renderer Renderer,
	verifier EditorVerifier,
	checks map[string]HealthChecker,
) *Routers {
	return &Routers{
		log:           log,
		WidgetService: widgetService,
		AuthService:   authService,
		renderer:      renderer,
		verifier:      verifier,
		checks:        checks,
	}
}

// Health pings every registered dependency.
func (r *Routers) Health(c echo.Context) error {
	const op = "http.routers.Health"

	status := http.StatusOK
	report := make(map[string]string, len(r.checks))
	for name, check := range r.checks {
		if err := check.HealthCheck(c.Request().Context()); err != nil {
			r.log.Warn("health check failed", slog.String("op", op), slog.String("dependency", name), sl.Err(err))
			report[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		report[name] = "up"
	}

	return c.JSON(status, response.SuccessResponse(report))
}

func sectionParam(c echo.Context) (string, error) {
	section := c.Param("section")
	if section == "" || len(section) > 128 {
		return "", errors.New("invalid section id")
	}
	return section, nil
}

func indexParam(c echo.Context, name string) (int, error) {
	i, err := strconv.Atoi(c.Param(name))
	if err != nil || i < 0 {
		return 0, errors.New("invalid " + name + " index")
	}
	return i, nil
}

// rowParams reads :section and :row.
func rowParams(c echo.Context) (string, int, error) {
	section, err := sectionParam(c)
	if err != nil {
		return "", 0, err
	}
	row, err := indexParam(c, "row")
	if err != nil {
		return "", 0, err
	}
	return section, row, nil
}

// slotParams reads :section, :row and :item.
func slotParams(c echo.Context) (string, int, int, error) {
	section, row, err := rowParams(c)
	if err != nil {
		return "", 0, 0, err
	}
	item, err := indexParam(c, "item")
	if err != nil {
		return "", 0, 0, err
	}
	return section, row, item, nil
}

func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails(response.CodeInvalidRequest, err.Error()))
}

// bindValid binds the request into req and validates it.
func bindValid(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return c.Validate(req)
}

// projection answers a widget operation. Failed operations keep the
// projection out of the body; clients refetch the view.
func (r *Routers) projection(c echo.Context, op string, p widget.Projection, err error) error {
	if err != nil {
		return r.fail(c, op, err)
	}
	return c.JSON(http.StatusOK, response.SuccessResponse(p))
}

// fail maps service errors to HTTP answers.
func (r *Routers) fail(c echo.Context, op string, err error) error {
	log := r.log.With(slog.String("op", op))

	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", sl.Err(err))
	} else {
		log.Info("request rejected", sl.Err(err))
	}

	return c.JSON(status, response.ErrorResponseWithDetails(code, userDetails(err)))
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrNotEditor):
		return http.StatusForbidden, response.CodeNotEditor
	case errors.Is(err, models.ErrEditorClosed):
		return http.StatusConflict, response.CodeEditorClosed
	case errors.Is(err, models.ErrUnsavedChanges):
		return http.StatusConflict, response.CodeUnsavedChanges
	case errors.Is(err, models.ErrOperationInFlight):
		return http.StatusConflict, response.CodeInFlight
	case errors.Is(err, models.ErrUnsupportedMedia):
		return http.StatusUnsupportedMediaType, response.CodeUnsupportedMedia
	case errors.Is(err, models.ErrAssetNotFound):
		return http.StatusNotFound, response.CodeAssetNotFound
	case errors.Is(err, models.ErrProcessingTimeout):
		return http.StatusGatewayTimeout, response.CodeProcessingTimeout
	case errors.Is(err, models.ErrRowIndexOutOfRange),
		errors.Is(err, models.ErrItemIndexOutOfRange),
		errors.Is(err, models.ErrSpacerSlot),
		errors.Is(err, models.ErrInvalidFlag),
		errors.Is(err, models.ErrInvalidMediaKind),
		errors.Is(err, models.ErrInvalidStyle),
		errors.Is(err, layout.ErrUnknownLayout):
		return http.StatusUnprocessableEntity, response.CodeInvalidEdit
	}

	kind, _ := models.KindOf(err)
	switch kind {
	case models.KindAuth:
		return http.StatusForbidden, response.CodeNotEditor
	case models.KindConfig:
		return http.StatusUnprocessableEntity, response.CodeInvalidEdit
	case models.KindNetwork:
		return http.StatusBadGateway, response.CodeBackend
	case models.KindUpload:
		return http.StatusBadGateway, response.CodeUploadFailed
	case models.KindProcessing:
		return http.StatusBadGateway, response.CodeProcessingFailed
	}

	return http.StatusInternalServerError, response.CodeInternal
}

// userDetails hides internals of unexpected failures.
func userDetails(err error) string {
	var ge *models.GridError
	if errors.As(err, &ge) && ge.Kind != models.KindInvariant {
		return ge.Err.Error()
	}
	if status, _ := classify(err); status == http.StatusInternalServerError {
		return "Internal server error"
	}
	return unwrapAll(err).Error()
}

func unwrapAll(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

func (r *Routers) html(c echo.Context, op string, write func(w io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		r.log.Error("render failed", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails(response.CodeInternal, "Internal server error"))
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}
