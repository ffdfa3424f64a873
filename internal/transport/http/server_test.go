package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	httpapp "masonry_grid/internal/app/http"
	"masonry_grid/internal/domain/models"
	"masonry_grid/internal/layout"
	"masonry_grid/internal/render"
	"masonry_grid/internal/services/auth"
	persistence "masonry_grid/internal/services/persistence_service"
	widget "masonry_grid/internal/services/widget_service"
	httprouters "masonry_grid/internal/transport/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	section     = "section-1"
	editorToken = "editor-token"
)

type MockPersister struct {
	mock.Mock
}

func (m *MockPersister) Load(ctx context.Context, sectionID string) (*models.GridDocument, error) {
	args := m.Called(ctx, sectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GridDocument), args.Error(1)
}

func (m *MockPersister) Save(ctx context.Context, sectionID string, doc *models.GridDocument) (string, error) {
	args := m.Called(ctx, sectionID, doc)
	return args.String(0), args.Error(1)
}

type MockMedia struct {
	mock.Mock
}

func (m *MockMedia) Upload(ctx context.Context, file *multipart.FileHeader) (*models.UploadedAsset, error) {
	args := m.Called(ctx, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UploadedAsset), args.Error(1)
}

func (m *MockMedia) FromLibrary(ctx context.Context, asset models.AssetRecord) (*models.UploadedAsset, error) {
	args := m.Called(ctx, asset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UploadedAsset), args.Error(1)
}

// MockBackend is the editor check and the asset library.
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) IsAuthenticatedAsEditor(_ context.Context, token string) bool {
	return token == editorToken
}

func (m *MockBackend) ListLibraryAssets(ctx context.Context, opts models.AssetListOptions) ([]models.AssetRecord, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AssetRecord), args.Error(1)
}

type MockAuth struct {
	mock.Mock
}

func (m *MockAuth) Login(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

type stubCheck struct {
	err error
}

func (s stubCheck) HealthCheck(context.Context) error {
	return s.err
}

type fixture struct {
	handler http.Handler
	store   *MockPersister
	media   *MockMedia
	backend *MockBackend
	auth    *MockAuth
}

func newFixture(t *testing.T, checks map[string]httprouters.HealthChecker) *fixture {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	catalog := layout.Default()
	renderer, err := render.New(catalog)
	require.NoError(t, err)

	f := &fixture{
		store:   new(MockPersister),
		media:   new(MockMedia),
		backend: new(MockBackend),
		auth:    new(MockAuth),
	}
	f.store.On("Load", mock.Anything, section).Return(persistence.DefaultDocument(section), nil)

	widgets := widget.NewWidgetService(log, catalog, renderer, f.store, f.media, f.backend, false)
	routers := httprouters.NewRouter(log, widgets, f.auth, renderer, f.backend, checks)

	server := httpapp.New(log, httpapp.Options{SessionSecret: "test-session-secret"}, routers)
	server.BuildRouters()
	f.handler = server.Handler()

	return f
}

type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Details string          `json:"details"`
}

func (f *fixture) do(t *testing.T, method, path, body string, headers ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+editorToken)
	for i := 0; i+1 < len(headers); i += 2 {
		if headers[i+1] == "" {
			req.Header.Del(headers[i])
			continue
		}
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func projection(t *testing.T, env envelope) widget.Projection {
	t.Helper()

	var p widget.Projection
	require.NoError(t, json.Unmarshal(env.Data, &p))
	return p
}

func (f *fixture) open(t *testing.T) widget.Projection {
	t.Helper()

	rec, env := f.do(t, http.MethodPost, "/api/v1/admin/"+section+"/open", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return projection(t, env)
}

func adminPath(suffix string) string {
	return "/api/v1/admin/" + section + suffix
}

func TestHealth(t *testing.T) {
	t.Run("all up", func(t *testing.T) {
		f := newFixture(t, map[string]httprouters.HealthChecker{"postgres": stubCheck{}})
		rec, env := f.do(t, http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"postgres":"up"}`, string(env.Data))
	})

	t.Run("dependency down", func(t *testing.T) {
		f := newFixture(t, map[string]httprouters.HealthChecker{
			"postgres": stubCheck{},
			"redis":    stubCheck{err: errors.New("dial tcp: refused")},
		})
		rec, env := f.do(t, http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.JSONEq(t, `{"postgres":"up","redis":"down"}`, string(env.Data))
	})
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setup      func(a *MockAuth)
		wantStatus int
		wantCode   string
	}{
		{
			name: "success",
			body: `{"email":"editor@example.com","password":"correct horse"}`,
			setup: func(a *MockAuth) {
				a.On("Login", mock.Anything, "editor@example.com", "correct horse").Return(editorToken, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "password with markup",
			body: `{"email":"editor@example.com","password":"p<x>ss&<word"}`,
			setup: func(a *MockAuth) {
				a.On("Login", mock.Anything, "editor@example.com", "p<x>ss&<word").Return(editorToken, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "wrong password",
			body: `{"email":"editor@example.com","password":"battery staple"}`,
			setup: func(a *MockAuth) {
				a.On("Login", mock.Anything, "editor@example.com", "battery staple").
					Return("", auth.ErrInvalidCredentials)
			},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "authentication_failed",
		},
		{
			name:       "short password",
			body:       `{"email":"editor@example.com","password":"short"}`,
			setup:      func(a *MockAuth) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name:       "bad email",
			body:       `{"email":"editor","password":"correct horse"}`,
			setup:      func(a *MockAuth) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name: "provider failure",
			body: `{"email":"editor@example.com","password":"correct horse"}`,
			setup: func(a *MockAuth) {
				a.On("Login", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("boom"))
			},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			tt.setup(f.auth)

			rec, env := f.do(t, http.MethodPost, "/api/v1/login", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, env.Error)
			if tt.wantStatus == http.StatusOK {
				assert.JSONEq(t, `{"access_token":"`+editorToken+`"}`, string(env.Data))
				assert.NotEmpty(t, rec.Header().Get("Set-Cookie"))
			}
		})
	}
}

func TestEditorOnly(t *testing.T) {
	t.Run("no token", func(t *testing.T) {
		f := newFixture(t, nil)
		rec, env := f.do(t, http.MethodPost, adminPath("/open"), "", "Authorization", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "not_editor", env.Error)
	})

	t.Run("foreign token", func(t *testing.T) {
		f := newFixture(t, nil)
		rec, _ := f.do(t, http.MethodPost, adminPath("/open"), "", "Authorization", "Bearer other")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("session cookie from login", func(t *testing.T) {
		f := newFixture(t, nil)
		f.auth.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(editorToken, nil)

		rec, _ := f.do(t, http.MethodPost, "/api/v1/login", `{"email":"editor@example.com","password":"correct horse"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		cookie := rec.Header().Get("Set-Cookie")
		require.NotEmpty(t, cookie)

		rec, env := f.do(t, http.MethodPost, adminPath("/open"), "",
			"Authorization", "",
			"Cookie", strings.SplitN(cookie, ";", 2)[0],
		)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.True(t, projection(t, env).EditorOpen)
	})
}

func TestPublicGrid(t *testing.T) {
	f := newFixture(t, nil)

	rec, _ := f.do(t, http.MethodGet, "/api/v1/grid/"+section, "", "Authorization", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"))
	assert.Contains(t, rec.Body.String(), "Sample Item 1")

	rec, env := f.do(t, http.MethodGet, "/api/v1/grid/"+section+"/view", "", "Authorization", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var view render.View
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.False(t, view.Admin)
	assert.Len(t, view.Rows, 1)

	f.store.AssertNumberOfCalls(t, "Load", 1)
}

func TestAdminGrid(t *testing.T) {
	f := newFixture(t, nil)

	rec, env := f.do(t, http.MethodGet, adminPath(""), "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "editor_closed", env.Error)

	f.open(t)

	rec, _ = f.do(t, http.MethodGet, adminPath(""), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"))
}

func TestEditErrors(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		open       bool
		wantStatus int
		wantCode   string
	}{
		{
			name:       "editor closed",
			method:     http.MethodPost,
			path:       adminPath("/rows"),
			body:       `{"layout":"50-50"}`,
			wantStatus: http.StatusConflict,
			wantCode:   "editor_closed",
		},
		{
			name:       "unknown layout",
			method:     http.MethodPost,
			path:       adminPath("/rows"),
			body:       `{"layout":"13-13"}`,
			open:       true,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "invalid_edit",
		},
		{
			name:       "missing layout",
			method:     http.MethodPost,
			path:       adminPath("/rows"),
			body:       `{}`,
			open:       true,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name:       "row out of range",
			method:     http.MethodDelete,
			path:       adminPath("/rows/7"),
			open:       true,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "invalid_edit",
		},
		{
			name:       "negative row",
			method:     http.MethodDelete,
			path:       adminPath("/rows/-1"),
			open:       true,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name:       "bad direction",
			method:     http.MethodPost,
			path:       adminPath("/rows/0/move"),
			body:       `{"direction":"left"}`,
			open:       true,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name:       "no flags",
			method:     http.MethodPut,
			path:       adminPath("/rows/0/flags"),
			body:       `{}`,
			open:       true,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name:       "bad height",
			method:     http.MethodPut,
			path:       adminPath("/rows/0/flags"),
			body:       `{"height":"huge"}`,
			open:       true,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name:       "attach without media",
			method:     http.MethodPut,
			path:       adminPath("/rows/0/items/0"),
			body:       `{"type":"image"}`,
			open:       true,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name:       "bad style enum",
			method:     http.MethodPut,
			path:       adminPath("/style"),
			body:       `{"shadow":"glow","hoverEffect":"none"}`,
			open:       true,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name:       "close without changes",
			method:     http.MethodPost,
			path:       adminPath("/close"),
			open:       true,
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			if tt.open {
				f.open(t)
			}

			rec, env := f.do(t, tt.method, tt.path, tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCode, env.Error)
		})
	}
}

func TestRowEdits(t *testing.T) {
	f := newFixture(t, nil)
	f.open(t)

	rec, env := f.do(t, http.MethodPost, adminPath("/rows"), `{"layout":"33-33-33"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	p := projection(t, env)
	require.Len(t, p.Public.Rows, 2)
	assert.Equal(t, "33-33-33", p.Public.Rows[1].Layout)
	assert.True(t, p.HasUnsavedChanges)

	rec, env = f.do(t, http.MethodPut, adminPath("/rows/1/flags"), `{"fullWidth":true,"height":"large","isDraft":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	p = projection(t, env)
	assert.Len(t, p.Public.Rows, 1, "draft rows stay out of the public view")
	require.NotNil(t, p.Admin)
	require.Len(t, p.Admin.Rows, 2)
	assert.True(t, p.Admin.Rows[1].Draft)
	assert.Equal(t, models.HeightLarge, p.Admin.Rows[1].Controls.Height)
	assert.True(t, p.Admin.Rows[1].Controls.FullWidth)

	rec, env = f.do(t, http.MethodPost, adminPath("/rows/1/move"), `{"direction":"up"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	p = projection(t, env)
	assert.Equal(t, "33-33-33", p.Admin.Rows[0].Layout)

	rec, env = f.do(t, http.MethodPost, adminPath("/rows/0/draft"), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, projection(t, env).Public.Rows, 2)

	rec, env = f.do(t, http.MethodPost, adminPath("/rows/1/reorder"), `{"from":0,"to":1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	p = projection(t, env)
	assert.Equal(t, "Sample Item 2", p.Admin.Rows[1].Items[0].Label)

	rec, env = f.do(t, http.MethodPost, adminPath("/rows/1/duplicate"), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, projection(t, env).Admin.Rows, 3)

	rec, env = f.do(t, http.MethodDelete, adminPath("/rows/2"), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, projection(t, env).Admin.Rows, 2)

	rec, env = f.do(t, http.MethodPut, adminPath("/rows/1/layout"), `{"layout":"100"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "100", projection(t, env).Admin.Rows[1].Layout)

	rec, env = f.do(t, http.MethodPost, adminPath("/close"), "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "unsaved_changes", env.Error)

	rec, env = f.do(t, http.MethodPost, adminPath("/discard"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	p = projection(t, env)
	assert.False(t, p.HasUnsavedChanges)
	assert.Len(t, p.Public.Rows, 1)

	rec, _ = f.do(t, http.MethodPost, adminPath("/close"), "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMediaEdits(t *testing.T) {
	t.Run("direct url", func(t *testing.T) {
		f := newFixture(t, nil)
		f.open(t)

		rec, env := f.do(t, http.MethodPut, adminPath("/rows/0/items/1"), `{"type":"image","content":"https://cdn.test/a.jpg?w=1&h=2"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		item := projection(t, env).Public.Rows[0].Items[1]
		assert.Equal(t, models.ItemImage, item.Kind)
		assert.Equal(t, "https://cdn.test/a.jpg?w=1&h=2", item.Content)

		rec, env = f.do(t, http.MethodDelete, adminPath("/rows/0/items/1"), "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, models.ItemPlaceholder, projection(t, env).Public.Rows[0].Items[1].Kind)
	})

	t.Run("library asset", func(t *testing.T) {
		f := newFixture(t, nil)
		f.open(t)

		f.media.On("FromLibrary", mock.Anything, mock.MatchedBy(func(a models.AssetRecord) bool {
			return a.ID == "asset-1"
		})).Return(&models.UploadedAsset{Kind: models.ItemImage, AssetID: "asset-1", URL: "https://cdn.test/lib.jpg"}, nil)

		rec, env := f.do(t, http.MethodPut, adminPath("/rows/0/items/0"), `{"asset":{"id":"asset-1","type":"IMAGE","url":"https://cdn.test/lib.jpg"}}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "https://cdn.test/lib.jpg", projection(t, env).Public.Rows[0].Items[0].Content)
		f.media.AssertExpectations(t)
	})

	t.Run("upload to slot", func(t *testing.T) {
		f := newFixture(t, nil)
		f.open(t)

		f.media.On("Upload", mock.Anything, mock.MatchedBy(func(h *multipart.FileHeader) bool {
			return h.Filename == "photo.jpg"
		})).Return(&models.UploadedAsset{Kind: models.ItemImage, AssetID: "a-2", URL: "https://cdn.test/photo.jpg"}, nil)

		body, contentType := multipartFile(t, "photo.jpg")
		rec, env := f.do(t, http.MethodPost, adminPath("/rows/0/items/1/upload"), body, "Content-Type", contentType)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "https://cdn.test/photo.jpg", projection(t, env).Public.Rows[0].Items[1].Content)
	})

	t.Run("upload failure", func(t *testing.T) {
		f := newFixture(t, nil)
		f.open(t)

		f.media.On("Upload", mock.Anything, mock.Anything).
			Return(nil, models.NewError(models.KindUpload, "media_service.Upload", models.ErrUnsupportedMedia))

		body, contentType := multipartFile(t, "notes.txt")
		rec, env := f.do(t, http.MethodPost, adminPath("/rows/0/items/1/upload"), body, "Content-Type", contentType)
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
		assert.Equal(t, "unsupported_media", env.Error)

		rec, env = f.do(t, http.MethodGet, adminPath("/view"), "")
		require.Equal(t, http.StatusOK, rec.Code)
		p := projection(t, env)
		require.NotNil(t, p.Status)
		assert.Equal(t, widget.StatusError, p.Status.Type)

		rec, env = f.do(t, http.MethodDelete, adminPath("/status"), "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, projection(t, env).Status)
	})

	t.Run("missing file", func(t *testing.T) {
		f := newFixture(t, nil)
		f.open(t)

		rec, env := f.do(t, http.MethodPost, adminPath("/library/upload"), "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid_request", env.Error)
	})
}

func multipartFile(t *testing.T, name string) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write([]byte("content"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return buf.String(), w.FormDataContentType()
}

func TestSave(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newFixture(t, nil)
		f.open(t)
		f.store.On("Save", mock.Anything, section, mock.Anything).Return("https://cdn.test/manifest.json", nil)

		f.do(t, http.MethodPost, adminPath("/rows"), `{"layout":"100"}`)

		rec, env := f.do(t, http.MethodPost, adminPath("/save"), "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		p := projection(t, env)
		assert.False(t, p.HasUnsavedChanges)
		require.NotNil(t, p.Status)
		assert.Equal(t, widget.StatusSuccess, p.Status.Type)
	})

	t.Run("backend failure", func(t *testing.T) {
		f := newFixture(t, nil)
		f.open(t)
		f.store.On("Save", mock.Anything, section, mock.Anything).
			Return("", models.NewError(models.KindNetwork, "persistence_service.Save", errors.New("timeout")))

		rec, env := f.do(t, http.MethodPost, adminPath("/save"), "")
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, "backend_unavailable", env.Error)
		assert.Equal(t, "timeout", env.Details)
	})
}

func TestLibrary(t *testing.T) {
	f := newFixture(t, nil)

	f.backend.On("ListLibraryAssets", mock.Anything, mock.MatchedBy(func(o models.AssetListOptions) bool {
		return len(o.AssetTypes) == 1 && o.AssetTypes[0] == models.AssetTypeVideo
	})).Return([]models.AssetRecord{
		{ID: "v1", Filename: "clip.mp4", Type: models.AssetTypeVideo, URL: "https://cdn.test/clip.mp4"},
	}, nil)

	rec, env := f.do(t, http.MethodGet, adminPath("/library?filter=video&sort=name-asc"), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var assets []widget.LibraryAsset
	require.NoError(t, json.Unmarshal(env.Data, &assets))
	require.Len(t, assets, 1)
	assert.Equal(t, "v1", assets[0].ID)
	assert.False(t, assets[0].Used)

	rec, env = f.do(t, http.MethodGet, adminPath("/library?filter=gifs"), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", env.Error)
}

func TestUpdateUI(t *testing.T) {
	f := newFixture(t, nil)
	p := f.open(t)
	require.NotNil(t, p.Admin)
	rowID := p.Admin.Rows[0].ID

	rec, env := f.do(t, http.MethodPut, adminPath("/ui"), `{"expanded":{"`+rowID.String()+`":true},"scrollTop":120}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	p = projection(t, env)
	require.NotNil(t, p.Admin.UI)
	assert.True(t, p.Admin.UI.Expanded[rowID])
	assert.Equal(t, 120, p.Admin.UI.ScrollTop)
	assert.False(t, p.HasUnsavedChanges)

	rec, env = f.do(t, http.MethodPut, adminPath("/ui"), `{"activeTab":1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	p = projection(t, env)
	assert.Equal(t, 120, p.Admin.UI.ScrollTop)
	assert.Equal(t, 1, p.Admin.UI.ActiveTab)

	rec, _ = f.do(t, http.MethodPut, adminPath("/ui"), `{"expanded":{"not-a-uuid":true}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateStyle(t *testing.T) {
	f := newFixture(t, nil)
	f.open(t)

	rec, env := f.do(t, http.MethodPut, adminPath("/style"),
		`{"rowGap":500,"itemGap":10,"mobileRowGap":5,"mobileItemGap":5,"borderRadius":12,"shadow":"heavy","hoverEffect":"lift","cropImages":false}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	p := projection(t, env)
	assert.True(t, p.HasUnsavedChanges)
	assert.Contains(t, string(p.Public.Style.Vars), "--row-gap: 100px")
}
