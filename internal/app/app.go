package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	httpapp "masonry_grid/internal/app/http"
	"masonry_grid/internal/config"
	"masonry_grid/internal/layout"
	"masonry_grid/internal/lib/logger/sl"
	"masonry_grid/internal/mediabackend"
	mw "masonry_grid/internal/middleware"
	"masonry_grid/internal/render"
	"masonry_grid/internal/repository"
	"masonry_grid/internal/services/auth"
	media "masonry_grid/internal/services/media_service"
	persistence "masonry_grid/internal/services/persistence_service"
	widget "masonry_grid/internal/services/widget_service"
	"masonry_grid/internal/storage/cache"
	filestorage "masonry_grid/internal/storage/filestorage"
	"masonry_grid/internal/storage/postgresql"
	redisapp "masonry_grid/internal/storage/redis"
	"masonry_grid/internal/storage/s3storage"
	httprouters "masonry_grid/internal/transport/http"
)

type App struct {
	log        *slog.Logger
	HTTPServer *httpapp.Server
	closers    []func()
}

// New wires the application. It panics when a dependency cannot start.
func New(ctx context.Context, log *slog.Logger, cfg *config.Config) *App {
	a, err := build(ctx, log, cfg)
	if err != nil {
		panic(err)
	}
	return a
}

func build(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	const op = "app.New"

	a := &App{log: log}
	checks := make(map[string]httprouters.HealthChecker)

	catalog := layout.Default()
	renderer, err := render.New(catalog)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var docCache repository.DocumentCache
	if cfg.Redis.RedisAddr != "" {
		client := redisapp.NewClient(cfg.Redis.RedisAddr, cfg.Redis.RedisPassword, cfg.Redis.RedisDB)
		a.closers = append(a.closers, func() { _ = client.Close() })
		checks["redis"] = client
		docCache = repository.NewRedisDocumentCache(client)
	} else {
		docCache = cache.NewMemoryDocumentCache(cfg.Cache.TTL, cfg.Cache.CleanupInterval)
	}

	var (
		backend    mediabackend.Backend
		uploadsDir string
		fileAuth   mw.FileAuthorizer
	)
	switch cfg.Backend.Kind {
	case config.BackendHTTP:
		backend = mediabackend.NewHTTPClient(log, mediabackend.HTTPConfig{
			SiteURL:     cfg.Backend.SiteURL,
			MediaAPIURL: cfg.Backend.MediaAPIURL,
			LibraryID:   cfg.Backend.LibraryID,
			WebsiteID:   cfg.Backend.WebsiteID,
			TemplateID:  cfg.Backend.TemplateID,
			Token:       cfg.Backend.Token,
			Timeout:     cfg.Backend.Timeout,
		})
	case config.BackendLocal:
		pg, err := postgresql.New(ctx, cfg.DSN)
		if err != nil {
			a.Stop()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.closers = append(a.closers, pg.Stop)
		checks["postgres"] = pg

		repo, err := repository.NewRepository(ctx, pg.DB())
		if err != nil {
			a.Stop()
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		files, err := fileStorage(ctx, cfg.FileStorage)
		if err != nil {
			a.Stop()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if cfg.FileStorage.Kind == config.StorageLocal {
			uploadsDir = cfg.FileStorage.BaseDir
		}

		local := mediabackend.NewLocal(log, mediabackend.LocalConfig{
			Secret:        cfg.Auth.JWTSecret,
			AssetTokenTTL: cfg.Backend.AssetTokenTTL,
			HeaderPath:    cfg.Backend.HeaderPath,
		}, files, repo.Assets, repo.Jobs, repo.GenericFiles)
		backend, fileAuth = local, local
	default:
		a.Stop()
		return nil, fmt.Errorf("%s: unknown backend kind %q", op, cfg.Backend.Kind)
	}

	mediaService := media.NewMediaService(log, backend, media.PollConfig{
		ImageInterval:    cfg.Widget.ImagePollInterval,
		VideoInterval:    cfg.Widget.VideoPollInterval,
		ImageMaxAttempts: cfg.Widget.ImagePollAttempts,
		Timeout:          cfg.Widget.UploadTimeout,
	}, cfg.Backend.VideoURLPattern)

	persistenceService := persistence.NewPersistenceService(log, catalog, backend, docCache, cfg.Cache.TTL)

	widgetService := widget.NewWidgetService(
		log,
		catalog,
		renderer,
		persistenceService,
		mediaService,
		backend,
		cfg.Widget.StrictInvariants,
	)

	authService := auth.New(
		log,
		auth.NewStaticEditor(cfg.Auth.EditorEmail, cfg.Auth.EditorPasswordHash),
		cfg.Auth.JWTSecret,
		cfg.Auth.TokenTTL,
	)

	routers := httprouters.NewRouter(log, widgetService, authService, renderer, backend, checks)

	a.HTTPServer = httpapp.New(log, httpapp.Options{
		Host:          cfg.HTTP.Host,
		Port:          cfg.HTTP.Port,
		ReadTimeout:   cfg.HTTP.ReadTimeout,
		WriteTimeout:  cfg.HTTP.WriteTimeout,
		AllowOrigins:  cfg.HTTP.AllowOrigins,
		SessionSecret: cfg.Auth.SessionSecret,
		UploadsDir:    uploadsDir,
		UploadsURL:    uploadsPath(cfg.FileStorage.BaseURL),
		Files:         fileAuth,
	}, routers)
	a.HTTPServer.BuildRouters()

	log.Info("application wired",
		slog.String("backend", cfg.Backend.Kind),
		slog.Bool("redis_cache", cfg.Redis.RedisAddr != ""),
		slog.Bool("strict_invariants", cfg.Widget.StrictInvariants),
	)

	return a, nil
}

func fileStorage(ctx context.Context, cfg config.FileStorageConfig) (filestorage.FileStorage, error) {
	switch cfg.Kind {
	case config.StorageS3:
		return s3storage.New(ctx, cfg.S3Region, cfg.S3Bucket, cfg.S3Prefix, cfg.BaseURL, cfg.MaxSize)
	case config.StorageLocal:
		return filestorage.NewLocalFileStorage(cfg.BaseDir, cfg.BaseURL, cfg.MaxSize)
	}
	return nil, fmt.Errorf("unknown file storage kind %q", cfg.Kind)
}

// uploadsPath is the route prefix of locally stored files, baseURL may be
// absolute.
func uploadsPath(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Path == "" {
		return ""
	}
	return u.Path
}

// Stop releases storage connections in reverse order.
func (a *App) Stop() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// Shutdown stops the HTTP server, then the storages.
func (a *App) Shutdown() {
	if a.HTTPServer != nil {
		if err := a.HTTPServer.Stop(); err != nil {
			a.log.Error("failed to stop http server", sl.Err(err))
		}
	}
	a.Stop()
}
