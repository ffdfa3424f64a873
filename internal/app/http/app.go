package httpapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	mw "masonry_grid/internal/middleware"
	httprouters "masonry_grid/internal/transport/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

type Options struct {
	Host          string
	Port          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	AllowOrigins  []string
	SessionSecret string

	// UploadsDir is served under UploadsURL when set. With Files set,
	// private assets need their token.
	UploadsDir string
	UploadsURL string
	Files      mw.FileAuthorizer
}

type Server struct {
	log     *slog.Logger
	e       *echo.Echo
	routers *httprouters.Routers
	opts    Options
}

func New(log *slog.Logger, opts Options, routers *httprouters.Routers) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = opts.ReadTimeout
	e.Server.WriteTimeout = opts.WriteTimeout

	e.Validator = &CustomValidator{validator: validator.New()}

	store := sessions.NewCookieStore([]byte(opts.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	e.Use(session.Middleware(store))

	origins := opts.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     origins,
		AllowMethods:     []string{echo.GET, echo.PUT, echo.POST, echo.DELETE},
		AllowCredentials: origins[0] != "*",
	}))
	e.Use(middleware.Recover())
	e.Use(mw.PrometheusMetrics)

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogRemoteIP: true,
		LogLatency:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				slog.String("URI", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote ip", v.RemoteIP),
				slog.Duration("latency", v.Latency),
			)

			return nil
		},
	}))

	return &Server{
		log:     log,
		e:       e,
		routers: routers,
		opts:    opts,
	}
}

// Handler exposes the router, tests drive it with httptest.
func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) MustRun() {
	const op = "http.Server.MustRun"

	s.log.Info(op, slog.String("Start", "server"), slog.String("port", s.opts.Port))

	if err := s.Start(); err != nil {
		panic(err)
	}
}

func (s *Server) Start() error {
	const op = "http.Server.Start"

	if err := s.e.Start(fmt.Sprintf("%s:%s", s.opts.Host, s.opts.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s server stopped: %w", op, err)
	}

	return nil
}

func (s *Server) Stop() error {
	const op = "http.Server.Stop"

	optCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	s.log.Info("stopping", slog.String("op", op))

	if err := s.e.Shutdown(optCtx); err != nil {
		return fmt.Errorf("%s could not shutdown server gracefuly: %w", op, err)
	}

	return nil
}

func (s *Server) BuildRouters() {
	s.e.GET("/health", s.routers.Health)
	s.e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	if s.opts.UploadsDir != "" && s.opts.UploadsURL != "" {
		if s.opts.Files != nil {
			files := s.e.Group(s.opts.UploadsURL, mw.PrivateFiles(s.log, s.opts.Files))
			files.Static("/", s.opts.UploadsDir)
		} else {
			s.e.Static(s.opts.UploadsURL, s.opts.UploadsDir)
		}
	}

	api := s.e.Group("/api/v1")
	{
		api.POST("/login", s.routers.Login, mw.SanitizeJSON("password"))
		api.POST("/logout", s.routers.Logout)

		api.GET("/grid/:section", s.routers.PublicGrid)
		api.GET("/grid/:section/view", s.routers.PublicView)

		admin := api.Group("/admin/:section", s.routers.EditorOnly, mw.SanitizeJSON())
		{
			admin.GET("", s.routers.AdminGrid)
			admin.GET("/view", s.routers.AdminView)
			admin.POST("/open", s.routers.Open)
			admin.POST("/close", s.routers.Close)
			admin.POST("/discard", s.routers.Discard)
			admin.POST("/save", s.routers.Save)
			admin.DELETE("/status", s.routers.DismissStatus)

			admin.POST("/rows", s.routers.AddRow)
			admin.PUT("/rows/:row/layout", s.routers.ChangeRowLayout)
			admin.PUT("/rows/:row/flags", s.routers.SetRowFlags)
			admin.POST("/rows/:row/draft", s.routers.ToggleDraft)
			admin.POST("/rows/:row/move", s.routers.MoveRow)
			admin.POST("/rows/:row/duplicate", s.routers.DuplicateRow)
			admin.DELETE("/rows/:row", s.routers.DeleteRow)
			admin.POST("/rows/:row/reorder", s.routers.ReorderItems)

			admin.PUT("/rows/:row/items/:item", s.routers.AttachMedia)
			admin.DELETE("/rows/:row/items/:item", s.routers.ClearMedia)
			admin.POST("/rows/:row/items/:item/upload", s.routers.UploadToSlot)

			admin.POST("/library/upload", s.routers.UploadToLibrary)
			admin.GET("/library", s.routers.ListAssets)

			admin.PUT("/style", s.routers.UpdateStyle)
			admin.PUT("/ui", s.routers.UpdateUI)
		}
	}
}
