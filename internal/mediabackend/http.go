package mediabackend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"masonry_grid/internal/domain/models"
	"masonry_grid/internal/lib/logger/sl"
)

// HTTPConfig locates the remote platform.
type HTTPConfig struct {
	SiteURL     string
	MediaAPIURL string
	LibraryID   string
	WebsiteID   string
	TemplateID  string
	// Token authenticates the service against the platform.
	Token   string
	Timeout time.Duration
}

// HTTPClient talks to a hosted platform over its JSON API.
type HTTPClient struct {
	log  *slog.Logger
	cfg  HTTPConfig
	http *http.Client
}

const (
	recordTypeImage = 2
	recordTypeVideo = 10
	recordTypeCSS   = 16

	maxErrorBody = 512
)

func NewHTTPClient(log *slog.Logger, cfg HTTPConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	cfg.SiteURL = strings.TrimSuffix(cfg.SiteURL, "/")
	cfg.MediaAPIURL = strings.TrimSuffix(cfg.MediaAPIURL, "/")

	return &HTTPClient{
		log:  log,
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) IsAuthenticatedAsEditor(ctx context.Context, token string) bool {
	const op = "mediabackend.HTTPClient.IsAuthenticatedAsEditor"

	if token == "" {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.SiteURL+"/api/media/auth/v1/library/authorization", nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+token)

	if err := c.send(req, nil); err != nil {
		c.log.Debug("editor check failed", slog.String("op", op), sl.Err(err))
		return false
	}

	return true
}

type uploadResponse struct {
	JobID string `json:"jobId"`
}

func (c *HTTPClient) UploadRawFile(ctx context.Context, file *multipart.FileHeader, kind models.AssetType) (string, error) {
	const op = "mediabackend.HTTPClient.UploadRawFile"

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer src.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	// the platform expects the "image" field for videos too
	part, err := writer.CreateFormFile("image", file.Filename)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.MediaAPIURL+"/uploads/"+endpointKind(kind), body)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Library-Id", c.cfg.LibraryID)

	var resp uploadResponse
	if err := c.do(req, &resp); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if resp.JobID == "" {
		return "", fmt.Errorf("%s: %w", op, ErrNoJobID)
	}

	return resp.JobID, nil
}

type jobResponse struct {
	ID        string `json:"id"`
	AssetID   string `json:"assetId"`
	Status    int    `json:"status"`
	IsSuccess bool   `json:"isSuccess"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// PollJobStatus asks for one job. A job missing from the answer is reported
// as still pending.
func (c *HTTPClient) PollJobStatus(ctx context.Context, jobID string, kind models.AssetType) (*models.ProcessingJob, error) {
	const op = "mediabackend.HTTPClient.PollJobStatus"

	u := fmt.Sprintf("%s/jobs/%s/status?job-list=%s", c.cfg.MediaAPIURL, endpointKind(kind), url.QueryEscape(jobID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var jobs []jobResponse
	if err := c.do(req, &jobs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	job := &models.ProcessingJob{ID: jobID, AssetType: kind, UpdatedAt: time.Now().UTC()}
	for _, j := range jobs {
		if j.ID != jobID {
			continue
		}
		job.AssetID = j.AssetID
		job.Status = j.Status
		job.IsSuccess = j.IsSuccess
		if j.Error != nil {
			job.Message = j.Error.Message
		}
		break
	}

	return job, nil
}

type mediaItem struct {
	ID        string `json:"id"`
	AssetURL  string `json:"assetUrl"`
	URL       string `json:"url"`
	StaticURL string `json:"staticUrl"`
}

func (m mediaItem) location() string {
	switch {
	case m.StaticURL != "":
		return m.StaticURL
	case m.URL != "":
		return m.URL
	}
	return m.AssetURL
}

type mediaResponse struct {
	Media []mediaItem `json:"media"`
	mediaItem
}

func (r mediaResponse) first() mediaItem {
	if len(r.Media) > 0 {
		return r.Media[0]
	}
	return r.mediaItem
}

func (c *HTTPClient) ReferenceAsset(ctx context.Context, assetID string, kind models.AssetType) (string, error) {
	const op = "mediabackend.HTTPClient.ReferenceAsset"

	recordType, endpoint := recordTypeImage, "images"
	if kind == models.AssetTypeVideo {
		recordType, endpoint = recordTypeVideo, "videos"
	}

	form := url.Values{
		"assetId":    {assetID},
		"libraryId":  {c.cfg.LibraryID},
		"recordType": {strconv.Itoa(recordType)},
	}

	u := fmt.Sprintf("%s/api/uploads/%s/asset-reference?crumb=%s", c.cfg.SiteURL, endpoint, url.QueryEscape(c.cfg.Token))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp mediaResponse
	if err := c.do(req, &resp); err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return "", fmt.Errorf("%s: %w", op, models.ErrAssetNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	item := resp.first()
	if item.AssetURL == "" {
		return "", fmt.Errorf("%s: %w", op, ErrNoAssetURL)
	}

	return item.AssetURL, nil
}

type videoReferenceResponse struct {
	ID                 string `json:"id"`
	AccessibleVideoURL string `json:"accessibleVideoUrl"`
	URL                string `json:"url"`
}

func (c *HTTPClient) AuthorizePrivateAsset(ctx context.Context, assetID string) (string, error) {
	const op = "mediabackend.HTTPClient.AuthorizePrivateAsset"

	payload, err := json.Marshal(map[string]string{"assetId": assetID})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	u := fmt.Sprintf("%s/api/content-service/asset/1.0/websites/%s/video-asset/video-reference", c.cfg.SiteURL, url.PathEscape(c.cfg.WebsiteID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp videoReferenceResponse
	if err := c.do(req, &resp); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	switch {
	case resp.AccessibleVideoURL != "":
		return resp.AccessibleVideoURL, nil
	case resp.URL != "":
		return resp.URL, nil
	}

	return "", fmt.Errorf("%s: %w", op, ErrNoAssetURL)
}

type assetRecordResponse struct {
	ID              string   `json:"id"`
	Filename        string   `json:"filename"`
	Title           string   `json:"title"`
	AssetType       string   `json:"assetType"`
	AssetURL        string   `json:"assetUrl"`
	ProtectionLevel string   `json:"protectionLevel"`
	Thumbnails      []string `json:"thumbnails"`
	Tags            []string `json:"tags"`
	CreatedOn       int64    `json:"createdOn"`
}

type listResponse struct {
	Assets struct {
		AssetRecords []assetRecordResponse `json:"assetRecords"`
		Total        int                   `json:"total"`
	} `json:"assets"`
}

func (c *HTTPClient) ListLibraryAssets(ctx context.Context, opts models.AssetListOptions) ([]models.AssetRecord, error) {
	const op = "mediabackend.HTTPClient.ListLibraryAssets"

	q := listQuery(opts)
	u := fmt.Sprintf("%s/user/libraries/%s/folders/root/assets?%s", c.cfg.MediaAPIURL, url.PathEscape(c.cfg.LibraryID), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("X-Library-Id", c.cfg.LibraryID)

	var resp listResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	assets := make([]models.AssetRecord, 0, len(resp.Assets.AssetRecords))
	for _, r := range resp.Assets.AssetRecords {
		a := models.AssetRecord{
			ID:              r.ID,
			Filename:        r.Filename,
			Title:           r.Title,
			Type:            models.AssetType(r.AssetType),
			URL:             r.AssetURL,
			ProtectionLevel: r.ProtectionLevel,
			Tags:            r.Tags,
		}
		if len(r.Thumbnails) > 0 {
			a.Thumbnail = r.Thumbnails[0]
		}
		if r.CreatedOn > 0 {
			a.CreatedAt = time.UnixMilli(r.CreatedOn).UTC()
		}
		assets = append(assets, a)
	}

	return assets, nil
}

func listQuery(opts models.AssetListOptions) url.Values {
	def := models.DefaultAssetListOptions()
	if opts.Limit <= 0 {
		opts.Limit = def.Limit
	}
	if opts.OrderBy == "" {
		opts.OrderBy = def.OrderBy
	}
	if opts.Order == "" {
		opts.Order = def.Order
	}
	if len(opts.AssetTypes) == 0 {
		opts.AssetTypes = def.AssetTypes
	}

	types := make([]string, len(opts.AssetTypes))
	for i, t := range opts.AssetTypes {
		types[i] = string(t)
	}

	q := url.Values{
		"order":      {opts.Order},
		"orderBy":    {opts.OrderBy},
		"assetTypes": {strings.Join(types, ",")},
		"limit":      {strconv.Itoa(opts.Limit)},
		"offset":     {strconv.Itoa(opts.Offset)},
	}
	if len(opts.Tags) > 0 {
		q.Set("tags", strings.Join(opts.Tags, ","))
	}

	return q
}

func (c *HTTPClient) UploadGenericFile(ctx context.Context, data []byte, filename string) (string, error) {
	const op = "mediabackend.HTTPClient.UploadGenericFile"

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.SiteURL+"/api/uploads/css-assets", body)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var resp mediaResponse
	if err := c.do(req, &resp); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	loc := resp.first().location()
	if loc == "" {
		return "", fmt.Errorf("%s: %w", op, ErrNoAssetURL)
	}

	return loc, nil
}

type cssAssetsResponse struct {
	Assets []struct {
		ID       string `json:"id"`
		Filename string `json:"filename"`
		URL      string `json:"url"`
	} `json:"assets"`
}

func (c *HTTPClient) RemoveGenericFiles(ctx context.Context, filename, keepURL string) (int, error) {
	const op = "mediabackend.HTTPClient.RemoveGenericFiles"

	log := c.log.With(slog.String("op", op), slog.String("filename", filename))

	q := url.Values{
		"templateId": {c.cfg.TemplateID},
		"websiteId":  {c.cfg.WebsiteID},
		"recordType": {strconv.Itoa(recordTypeCSS)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.SiteURL+"/api/template/GetTemplateCSSAssets?"+q.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var list cssAssetsResponse
	if err := c.do(req, &list); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var (
		removed int
		errs    []error
	)
	for _, a := range list.Assets {
		if a.Filename != filename || (keepURL != "" && a.URL == keepURL) {
			continue
		}

		form := url.Values{
			"templateId": {c.cfg.TemplateID},
			"websiteId":  {c.cfg.WebsiteID},
			"itemId":     {a.ID},
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.SiteURL+"/api/template/RemoveTemplateCSSAsset", strings.NewReader(form.Encode()))
		if err != nil {
			return removed, fmt.Errorf("%s: %w", op, err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		if err := c.send(req, nil); err != nil {
			log.Warn("failed to remove generic file", slog.String("id", a.ID), sl.Err(err))
			errs = append(errs, err)
			continue
		}
		removed++
	}

	if len(errs) > 0 {
		return removed, fmt.Errorf("%s: %w", op, errors.Join(errs...))
	}

	return removed, nil
}

func (c *HTTPClient) FetchGenericFile(ctx context.Context, rawURL string) ([]byte, error) {
	const op = "mediabackend.HTTPClient.FetchGenericFile"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// generic files are public, no credentials
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := readBody(req, resp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return data, nil
}

type injectionSettings struct {
	Header   string `json:"header"`
	Footer   string `json:"footer"`
	LockPage string `json:"lockPage"`
	PostItem string `json:"postItem"`
}

func (c *HTTPClient) injectionSettings(ctx context.Context) (injectionSettings, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.SiteURL+"/api/config/GetInjectionSettings", nil)
	if err != nil {
		return injectionSettings{}, err
	}

	var s injectionSettings
	if err := c.do(req, &s); err != nil {
		return injectionSettings{}, err
	}

	return s, nil
}

func (c *HTTPClient) HeaderInjection(ctx context.Context) (string, error) {
	const op = "mediabackend.HTTPClient.HeaderInjection"

	s, err := c.injectionSettings(ctx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return s.Header, nil
}

// SaveHeaderInjection replaces the header and keeps the other injection
// settings as they are.
func (c *HTTPClient) SaveHeaderInjection(ctx context.Context, header string) error {
	const op = "mediabackend.HTTPClient.SaveHeaderInjection"

	s, err := c.injectionSettings(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	form := url.Values{
		"header":   {header},
		"footer":   {s.Footer},
		"lockPage": {s.LockPage},
		"postItem": {s.PostItem},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.SiteURL+"/api/config/SaveInjectionSettings", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if err := c.send(req, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// do sends an authenticated request and decodes a JSON answer into out.
func (c *HTTPClient) do(req *http.Request, out any) error {
	if c.cfg.Token != "" {
		req.Header.Set("X-CSRF-Token", c.cfg.Token)
		if req.Header.Get("Authorization") == "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
		}
	}
	return c.send(req, out)
}

func (c *HTTPClient) send(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := readBody(req, resp)
	if err != nil {
		return err
	}

	if out == nil || len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", req.URL.Path, err)
	}

	return nil
}

func readBody(req *http.Request, resp *http.Response) ([]byte, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body := string(data)
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &StatusError{Method: req.Method, URL: req.URL.Redacted(), Code: resp.StatusCode, Body: body}
	}

	return data, nil
}

func endpointKind(kind models.AssetType) string {
	if kind == models.AssetTypeVideo {
		return "video"
	}
	return "image"
}
