package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/bilgisen/addconnect/internal/logger"
	"github.com/bilgisen/addconnect/internal/models"
	"github.com/go-resty/resty/v2"
)

type bodySizeKey struct{}

// Client talks to the content backend. The base URL is injected once at
// construction; nothing is read from the environment here.
type Client struct {
	client        *resty.Client
	baseURL       string
	uploadTimeout time.Duration
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = resty.NewWithClient(hc)
	}
}

// WithUploadTimeout bounds a single multipart upload
func WithUploadTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.uploadTimeout = d
	}
}

// New builds a client for the API rooted at baseURL (e.g. https://host/api)
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		client:        resty.New(),
		baseURL:       strings.TrimRight(baseURL, "/"),
		uploadTimeout: 10 * time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.client.
		SetBaseURL(c.baseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetPreRequestHook(setStreamLength)

	return c
}

// BaseURL returns the resolved API base
func (c *Client) BaseURL() string {
	return c.baseURL
}

// setStreamLength gives streamed upload bodies an explicit Content-Length so
// the backend does not have to accept chunked transfer encoding.
func setStreamLength(_ *resty.Client, req *http.Request) error {
	if n, ok := req.Context().Value(bodySizeKey{}).(int64); ok && n > 0 {
		req.ContentLength = n
	}
	return nil
}

// CreateContent posts a manual or URL submission as JSON
func (c *Client) CreateContent(ctx context.Context, sub models.ContentSubmission) (*models.Content, error) {
	if sub.Tags == nil {
		sub.Tags = []string{}
	}

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetBody(sub).
		Post("/content")

	if err := c.check("create content", resp, err, start); err != nil {
		return nil, err
	}

	return decodeContent(resp.Body()), nil
}

// FetchPreview asks the backend for link metadata of rawURL
func (c *Client) FetchPreview(ctx context.Context, rawURL string) (*models.Preview, error) {
	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParam("url", rawURL).
		Get("/content/preview")

	if err := c.check("fetch preview", resp, err, start); err != nil {
		return nil, err
	}

	var preview models.Preview
	if err := json.Unmarshal(resp.Body(), &preview); err != nil {
		return nil, fmt.Errorf("failed to parse preview response: %w", err)
	}
	if preview.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrPreviewUnavailable, preview.Error)
	}

	return &preview, nil
}

// UploadRequest describes one multipart upload
type UploadRequest struct {
	File     io.Reader
	FileName string
	Type     models.ContentType
	Title    string
	Tags     []string
}

// Upload sends the file and its metadata as multipart/form-data and reports
// progress as bytes sent over total body bytes.
func (c *Client) Upload(ctx context.Context, req UploadRequest, progress ProgressFunc) (*models.UploadResult, error) {
	body, contentType, err := encodeMultipart(req)
	if err != nil {
		return nil, err
	}

	size := int64(body.Len())
	ctx = context.WithValue(ctx, bodySizeKey{}, size)
	if c.uploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.uploadTimeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetHeader("Accept", "application/json").
		SetBody(newProgressReader(body, size, progress)).
		Post("/content/upload")

	if err := c.check("upload content", resp, err, start); err != nil {
		return nil, err
	}

	var result models.UploadResult
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		// Backends that answer with a bare 2xx are still a success.
		return &models.UploadResult{OK: true, Filename: req.FileName}, nil
	}
	return &result, nil
}

// encodeMultipart buffers the full form so the total size is known up front
func encodeMultipart(req UploadRequest) (*bytes.Buffer, string, error) {
	if req.File == nil {
		return nil, "", fmt.Errorf("upload: no file")
	}

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode tags: %w", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", req.FileName)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, req.File); err != nil {
		return nil, "", fmt.Errorf("failed to read upload file: %w", err)
	}

	fields := []struct{ name, value string }{
		{"type", string(req.Type)},
		{"title", req.Title},
		{"tags", string(tagsJSON)},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("failed to write %s field: %w", f.name, err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

// check turns transport failures and non-2xx responses into *TransportError
func (c *Client) check(op string, resp *resty.Response, err error, start time.Time) error {
	log := logger.Get()

	if err != nil {
		log.Debug().
			Err(err).
			Str("op", op).
			Dur("duration", time.Since(start)).
			Msg("request failed")
		return &TransportError{Op: op, Err: err}
	}

	status := resp.StatusCode()
	log.Debug().
		Str("op", op).
		Str("method", resp.Request.Method).
		Str("url", resp.Request.URL).
		Int("status", status).
		Dur("duration", time.Since(start)).
		Msg("request finished")

	if status < 200 || status >= 300 {
		return &TransportError{
			Op:         op,
			StatusCode: status,
			Message:    errorMessage(resp.Body()),
			Body:       strings.TrimSpace(resp.String()),
		}
	}
	return nil
}

func decodeContent(body []byte) *models.Content {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	var content models.Content
	if err := json.Unmarshal(body, &content); err != nil {
		return nil
	}
	return &content
}
