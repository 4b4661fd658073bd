package videoapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/five82/vidlift/internal/media"
)

// API is the remote surface vidlift consumes. It is implemented by *Client
// and can be faked in tests.
type API interface {
	FetchVideos(ctx context.Context) ([]VideoRecord, error)
	Upload(ctx context.Context, file media.File, progress ProgressFunc) error
	Delete(ctx context.Context, id string) error
	PlaybackURL(filename string) string
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// ProgressFunc receives the number of payload bytes the transport has
// consumed so far and the payload total.
type ProgressFunc func(sent, total int64)

// UploadField is the multipart form field carrying the video payload.
const UploadField = "video"

const (
	defaultBaseURL        = "http://localhost:5000"
	defaultListPath       = "/api/videos"
	defaultUploadPath     = "/api/videos/upload"
	defaultDeletePath     = "/api/videos"
	defaultStaticPath     = "/uploads"
	defaultUserAgent      = "vidlift/0.1"
	defaultRequestTimeout = 10 * time.Second
	progressStep          = 32 * 1024
)

// Options configure a Client. Empty fields fall back to defaults.
type Options struct {
	BaseURL    string
	ListPath   string
	UploadPath string
	DeletePath string
	StaticBase string
	UserAgent  string

	// RequestTimeout bounds list and delete calls. Uploads are bounded only
	// by the caller's context.
	RequestTimeout time.Duration

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to the video storage HTTP API.
type Client struct {
	baseURL    *url.URL
	staticURL  *url.URL
	listPath   string
	uploadPath string
	deletePath string
	http       *http.Client
	userAgent  string
	timeout    time.Duration
	logger     *slog.Logger
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api %s %s returned status %d", e.Method, e.Path, e.Code)
}

// NewClient builds a Client from opts.
func NewClient(opts Options) (*Client, error) {
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}

	staticRaw := strings.TrimSpace(opts.StaticBase)
	if staticRaw == "" {
		staticRaw = strings.TrimRight(base.String(), "/") + defaultStaticPath
	}
	static, err := url.Parse(strings.TrimRight(staticRaw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse static_base %q: %w", opts.StaticBase, err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		baseURL:    base,
		staticURL:  static,
		listPath:   pathOrDefault(opts.ListPath, defaultListPath),
		uploadPath: pathOrDefault(opts.UploadPath, defaultUploadPath),
		deletePath: pathOrDefault(opts.DeletePath, defaultDeletePath),
		http:       httpClient,
		userAgent:  userAgent,
		timeout:    timeout,
		logger:     logger,
	}, nil
}

// FetchVideos retrieves every stored video record.
func (c *Client) FetchVideos(ctx context.Context) ([]VideoRecord, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var payload []VideoRecord
	if err := c.do(ctx, http.MethodGet, &url.URL{Path: c.listPath}, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Delete removes the video with the given id.
func (c *Client) Delete(ctx context.Context, id string) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("video id required")
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	rel := &url.URL{
		Path:    joinPath(c.deletePath, id),
		RawPath: joinPath(c.deletePath, url.PathEscape(id)),
	}
	return c.do(ctx, http.MethodDelete, rel, nil)
}

// Upload streams file as a multipart form to the upload endpoint. progress,
// when non-nil, is called as the transport consumes the payload; it is never
// called after Upload returns.
func (c *Client) Upload(ctx context.Context, file media.File, progress ProgressFunc) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	body, err := file.Reader()
	if err != nil {
		return fmt.Errorf("open payload: %w", err)
	}
	defer func() { _ = body.Close() }()

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)
	done := make(chan struct{})

	go func() {
		defer close(done)
		err := writeForm(form, file, body, progress)
		_ = pw.CloseWithError(err)
	}()

	rel := &url.URL{Path: c.uploadPath}
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL.String(), pr)
	if err != nil {
		_ = pr.CloseWithError(err)
		<-done
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	requestID := c.decorate(req)

	c.logger.Info("upload started",
		"request_id", requestID,
		"name", file.Name(),
		"content_type", file.ContentType(),
		"bytes", file.Size(),
	)

	resp, err := c.http.Do(req)
	// Unblock the writer if the transport stopped reading early.
	_ = pr.Close()
	<-done
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Method: http.MethodPost, Path: rel.String(), Code: resp.StatusCode}
	}
	c.logger.Info("upload finished", "request_id", requestID, "name", file.Name(), "status", resp.StatusCode)
	return nil
}

// PlaybackURL returns the static URL where a stored file can be streamed.
func (c *Client) PlaybackURL(filename string) string {
	if c == nil || strings.TrimSpace(filename) == "" {
		return ""
	}
	return strings.TrimRight(c.staticURL.String(), "/") + "/" + url.PathEscape(filename)
}

func (c *Client) do(ctx context.Context, method string, rel *url.URL, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	requestID := c.decorate(req)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "request_id", requestID, "method", method, "path", rel.String(), "error", err)
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Method: method, Path: rel.String(), Code: resp.StatusCode}
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) decorate(req *http.Request) string {
	requestID := uuid.NewString()
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	return requestID
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeForm(form *multipart.Writer, file media.File, body io.Reader, progress ProgressFunc) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		UploadField, quoteEscaper.Replace(file.Name())))
	header.Set("Content-Type", file.ContentType())

	part, err := form.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create form part: %w", err)
	}
	counter := &progressWriter{w: part, total: file.Size(), fn: progress}
	if _, err := io.Copy(counter, body); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}
	return form.Close()
}

// progressWriter reports bytes once the downstream pipe has accepted them.
type progressWriter struct {
	w     io.Writer
	total int64
	sent  int64
	fn    ProgressFunc
}

func (p *progressWriter) Write(b []byte) (int, error) {
	written := 0
	for len(b) > 0 {
		step := b
		if len(step) > progressStep {
			step = step[:progressStep]
		}
		n, err := p.w.Write(step)
		written += n
		p.sent += int64(n)
		if p.fn != nil && n > 0 {
			sent := p.sent
			if sent > p.total {
				sent = p.total
			}
			p.fn(sent, p.total)
		}
		if err != nil {
			return written, err
		}
		b = b[n:]
	}
	return written, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_base %q: %w", raw, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

func pathOrDefault(path, fallback string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return fallback
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(path, "/")
}

func joinPath(base, segment string) string {
	return strings.TrimRight(base, "/") + "/" + segment
}
