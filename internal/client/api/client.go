package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/userdesk/internal/common"
	"github.com/dmitrijs2005/userdesk/internal/logging"
	"github.com/google/uuid"
)

const DefaultTimeout = 10 * time.Second

// Invalidator is told when the server rejects the current credentials.
// The session manager implements it; the client never touches session
// storage itself.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Client performs credentialed HTTP calls against the API base URL and
// classifies the outcome:
//   - 2xx and other non-401 statuses: (*Response, nil);
//   - 401: (*Response, ErrUnauthorized), after notifying the Invalidator;
//   - no response at all: (nil, *TransportError).
//
// Client is safe for concurrent use.
type Client struct {
	base    *url.URL
	http    *http.Client
	jar     CredentialJar
	timeout time.Duration
	logger  logging.Logger

	mu          sync.RWMutex
	invalidator Invalidator
}

type Option func(*Client)

// WithHTTPClient uses hc as the transport template. Its Jar is replaced by
// the client's credential jar.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithJar(jar CredentialJar) Option {
	return func(c *Client) { c.jar = jar }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithInvalidator(inv Invalidator) Option {
	return func(c *Client) { c.invalidator = inv }
}

// ParseBaseURL validates an absolute http(s) base URL and strips a trailing slash.
func ParseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(raw), "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: absolute http(s) url required", raw)
	}
	return u, nil
}

func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := ParseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	c := &Client{base: base, timeout: DefaultTimeout, logger: logging.NopLogger{}}
	for _, opt := range opts {
		opt(c)
	}

	if c.jar == nil {
		c.jar = NewMemoryJar()
	}

	hc := &http.Client{}
	if c.http != nil {
		copied := *c.http
		hc = &copied
	}
	hc.Jar = c.jar
	if hc.Timeout == 0 {
		hc.Timeout = c.timeout
	}
	c.http = hc

	return c, nil
}

// SetInvalidator installs the 401 hook. It exists because the session
// manager is built on top of the client and can only be wired afterwards.
func (c *Client) SetInvalidator(inv Invalidator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidator = inv
}

func (c *Client) BaseURL() string {
	return c.base.String()
}

// URL resolves an API path (e.g. a profile image path) against the base URL.
func (c *Client) URL(path string) string {
	if path == "" {
		return c.base.String()
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.base.String() + path
}

// ClearCredentials drops every stored credential cookie.
func (c *Client) ClearCredentials(ctx context.Context) error {
	return c.jar.Clear(ctx)
}

// Do executes req. See Client for how outcomes are reported.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	op := req.Method + " " + req.Path
	requestID := uuid.NewString()
	log := c.logger.With("request_id", requestID, "method", req.Method, "path", req.Path)

	httpReq, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	httpReq.Header.Set(common.RequestIDHeaderName, requestID)

	started := time.Now()
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		log.Warn(ctx, "request failed", "error", err, "duration", time.Since(started))
		return nil, &TransportError{Op: op, Err: err}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		log.Warn(ctx, "reading response failed", "error", err)
		return nil, &TransportError{Op: op, Err: err}
	}

	resp := &Response{Status: httpResp.StatusCode, Header: httpResp.Header, Body: body}
	log.Debug(ctx, "request done", "status", resp.Status, "duration", time.Since(started))

	if resp.Status == http.StatusUnauthorized {
		if !req.SkipInvalidate {
			c.invalidate(ctx)
		}
		return resp, ErrUnauthorized
	}

	return resp, nil
}

func (c *Client) invalidate(ctx context.Context) {
	c.mu.RLock()
	inv := c.invalidator
	c.mu.RUnlock()

	if inv == nil {
		return
	}
	c.logger.Info(ctx, "server rejected credentials, invalidating session")
	inv.Invalidate(ctx)
}

func (c *Client) newHTTPRequest(ctx context.Context, req Request) (*http.Request, error) {
	if req.Method == "" {
		return nil, errors.New("method is required")
	}

	target := c.URL(req.Path)
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)

	switch {
	case req.File != nil:
		buf, ct, err := encodeMultipart(req.File)
		if err != nil {
			return nil, err
		}
		body, contentType = buf, ct
	case req.Body != nil:
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, err
		}
		body, contentType = bytes.NewReader(b), "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	return httpReq, nil
}

func encodeMultipart(f *FilePart) (*bytes.Buffer, string, error) {
	field := f.Field
	if field == "" {
		field = "file"
	}

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(field), escapeQuotes(f.FileName)))
	if f.ContentType != "" {
		h.Set("Content-Type", f.ContentType)
	} else {
		h.Set("Content-Type", "application/octet-stream")
	}

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f.Reader); err != nil {
		return nil, "", fmt.Errorf("copy file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
