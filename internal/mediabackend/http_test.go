package mediabackend_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"masonry_grid/internal/domain/models"
	"masonry_grid/internal/mediabackend"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newHTTPClient(t *testing.T, mux *http.ServeMux) (*mediabackend.HTTPClient, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := mediabackend.NewHTTPClient(discardLogger(), mediabackend.HTTPConfig{
		SiteURL:     srv.URL,
		MediaAPIURL: srv.URL + "/media",
		LibraryID:   "lib-1",
		WebsiteID:   "site-1",
		TemplateID:  "tpl-1",
		Token:       "crumb",
	})
	return c, srv
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func createTestFile(t *testing.T, filename, content string) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	return req.MultipartForm.File["file"][0]
}

func TestHTTPClient_UploadAndPoll(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /media/uploads/video", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "lib-1", r.Header.Get("X-Library-Id"))
		f, fh, err := r.FormFile("image")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "clip.mp4", fh.Filename)
		writeJSON(w, map[string]string{"jobId": "job-7"})
	})
	mux.HandleFunc("GET /media/jobs/video/status", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "job-7", r.URL.Query().Get("job-list"))
		writeJSON(w, []map[string]any{
			{"id": "other", "status": 1},
			{"id": "job-7", "status": 3, "isSuccess": true, "assetId": "asset-9"},
		})
	})

	c, _ := newHTTPClient(t, mux)
	ctx := context.Background()

	jobID, err := c.UploadRawFile(ctx, createTestFile(t, "clip.mp4", "data"), models.AssetTypeVideo)
	require.NoError(t, err)
	assert.Equal(t, "job-7", jobID)

	job, err := c.PollJobStatus(ctx, jobID, models.AssetTypeVideo)
	require.NoError(t, err)
	assert.Equal(t, models.JobSucceeded, job.State())
	assert.Equal(t, "asset-9", job.AssetID)
}

func TestHTTPClient_PollMissingJobIsPending(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /media/jobs/image/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{})
	})

	c, _ := newHTTPClient(t, mux)
	job, err := c.PollJobStatus(context.Background(), "job-1", models.AssetTypeImage)
	require.NoError(t, err)
	assert.Equal(t, models.JobPending, job.State())
}

func TestHTTPClient_UploadWithoutJobID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /media/uploads/image", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{})
	})

	c, _ := newHTTPClient(t, mux)
	_, err := c.UploadRawFile(context.Background(), createTestFile(t, "a.jpg", "x"), models.AssetTypeImage)
	assert.ErrorIs(t, err, mediabackend.ErrNoJobID)
}

func TestHTTPClient_ReferenceAsset(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/uploads/images/asset-reference", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "crumb", r.URL.Query().Get("crumb"))
		assert.Equal(t, "a1", r.PostForm.Get("assetId"))
		assert.Equal(t, "2", r.PostForm.Get("recordType"))
		writeJSON(w, map[string]any{"media": []map[string]string{{"id": "a1", "assetUrl": "https://cdn/a1.jpg"}}})
	})
	mux.HandleFunc("POST /api/uploads/videos/asset-reference", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	c, _ := newHTTPClient(t, mux)
	ctx := context.Background()

	u, err := c.ReferenceAsset(ctx, "a1", models.AssetTypeImage)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/a1.jpg", u)

	_, err = c.ReferenceAsset(ctx, "v1", models.AssetTypeVideo)
	assert.ErrorIs(t, err, models.ErrAssetNotFound)
}

func TestHTTPClient_ListLibraryAssets(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /media/user/libraries/lib-1/folders/root/assets", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "DESC", q.Get("order"))
		assert.Equal(t, "CREATED_AT", q.Get("orderBy"))
		assert.Equal(t, "IMAGE,VIDEO", q.Get("assetTypes"))
		assert.Equal(t, "100", q.Get("limit"))
		assert.Equal(t, "0", q.Get("offset"))

		writeJSON(w, map[string]any{"assets": map[string]any{
			"total": 2,
			"assetRecords": []map[string]any{
				{"id": "1", "filename": "a.jpg", "assetType": "IMAGE", "assetUrl": "https://cdn/a.jpg", "createdOn": 1700000000000},
				{"id": "2", "filename": "b.mp4", "assetType": "VIDEO", "assetUrl": "https://cdn/b/{variant}", "protectionLevel": "PRIVATE", "thumbnails": []string{"https://cdn/b/poster"}},
			},
		}})
	})

	c, _ := newHTTPClient(t, mux)
	assets, err := c.ListLibraryAssets(context.Background(), models.AssetListOptions{})
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, models.AssetTypeImage, assets[0].Type)
	assert.Equal(t, int64(1700000000), assets[0].CreatedAt.Unix())
	assert.True(t, assets[1].IsPrivate())
	assert.Equal(t, "https://cdn/b/poster", assets[1].Thumbnail)
}

func TestHTTPClient_GenericFiles(t *testing.T) {
	var (
		mu      sync.Mutex
		removed []string
	)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/uploads/css-assets", func(w http.ResponseWriter, r *http.Request) {
		f, fh, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "m.json", fh.Filename)
		writeJSON(w, map[string]any{"media": []map[string]string{{"staticUrl": "https://static/new/m.json"}}})
	})
	mux.HandleFunc("GET /api/template/GetTemplateCSSAssets", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "16", r.URL.Query().Get("recordType"))
		writeJSON(w, map[string]any{"assets": []map[string]string{
			{"id": "old", "filename": "m.json", "url": "https://static/old/m.json"},
			{"id": "new", "filename": "m.json", "url": "https://static/new/m.json"},
			{"id": "css", "filename": "site.css", "url": "https://static/site.css"},
		}})
	})
	mux.HandleFunc("POST /api/template/RemoveTemplateCSSAsset", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		mu.Lock()
		removed = append(removed, r.PostForm.Get("itemId"))
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})

	c, _ := newHTTPClient(t, mux)
	ctx := context.Background()

	u, err := c.UploadGenericFile(ctx, []byte(`{}`), "m.json")
	require.NoError(t, err)
	assert.Equal(t, "https://static/new/m.json", u)

	n, err := c.RemoveGenericFiles(ctx, "m.json", u)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"old"}, removed)
}

func TestHTTPClient_HeaderInjection(t *testing.T) {
	var saved map[string]string

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/config/GetInjectionSettings", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"header": "<meta a>", "footer": "<script></script>"})
	})
	mux.HandleFunc("POST /api/config/SaveInjectionSettings", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		saved = map[string]string{"header": r.PostForm.Get("header"), "footer": r.PostForm.Get("footer")}
	})

	c, _ := newHTTPClient(t, mux)
	ctx := context.Background()

	h, err := c.HeaderInjection(ctx)
	require.NoError(t, err)
	assert.Equal(t, "<meta a>", h)

	require.NoError(t, c.SaveHeaderInjection(ctx, "<meta b>"))
	assert.Equal(t, "<meta b>", saved["header"])
	assert.Equal(t, "<script></script>", saved["footer"], "footer is preserved")
}

func TestHTTPClient_StatusError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/config/GetInjectionSettings", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})
	mux.HandleFunc("GET /files/m.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"s":{}}`))
	})

	c, srv := newHTTPClient(t, mux)
	ctx := context.Background()

	_, err := c.HeaderInjection(ctx)
	var se *mediabackend.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.Code)

	data, err := c.FetchGenericFile(ctx, srv.URL+"/files/m.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"s":{}}`, string(data))
}

func TestHTTPClient_IsAuthenticatedAsEditor(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/media/auth/v1/library/authorization", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, map[string]string{"token": "t"})
	})

	c, _ := newHTTPClient(t, mux)
	ctx := context.Background()

	assert.True(t, c.IsAuthenticatedAsEditor(ctx, "good"))
	assert.False(t, c.IsAuthenticatedAsEditor(ctx, "bad"))
	assert.False(t, c.IsAuthenticatedAsEditor(ctx, ""))
}
