package odl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/starford/odl/pkg/apperr"
)

// Default database endpoints.
const (
	DefaultUploadURL   = "http://vm-webtools.keck.hawaii.edu:59999/"
	DefaultDownloadURL = "http://vm-devnginxsw/api/ddoi/getDefs"
	DefaultTimeout     = 30 * time.Second
)

// UploadField is the multipart form field carrying the document.
const UploadField = "yaml_cfg"

// Client talks to the observatory database.
type Client struct {
	UploadURL   string
	DownloadURL string
	HTTP        *http.Client
	Registry    *Registry
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithUploadURL overrides the upload endpoint.
func WithUploadURL(u string) ClientOption { return func(c *Client) { c.UploadURL = u } }

// WithDownloadURL overrides the download endpoint.
func WithDownloadURL(u string) ClientOption { return func(c *Client) { c.DownloadURL = u } }

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(h *http.Client) ClientOption { return func(c *Client) { c.HTTP = h } }

// WithTimeout sets the request timeout of the default HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.HTTP = &http.Client{Timeout: d} }
}

// WithRegistry sets the registry used to decode downloads.
func WithRegistry(r *Registry) ClientOption { return func(c *Client) { c.Registry = r } }

// NewClient returns a client for the default endpoints.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		UploadURL:   DefaultUploadURL,
		DownloadURL: DefaultDownloadURL,
		HTTP:        &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.Registry == nil {
		c.Registry = DefaultRegistry()
	}
	return c
}

// Upload posts doc as the yaml_cfg form field. It reports whether the
// database accepted it; a rejection is a warning, not an error. Transport
// failures return apperr.ErrUnreachable.
func (c *Client) Upload(ctx context.Context, doc *Document) (bool, error) {
	data, err := Marshal(doc)
	if err != nil {
		return false, err
	}
	return c.UploadRaw(ctx, data)
}

// UploadRaw posts an already encoded document.
func (c *Client) UploadRaw(ctx context.Context, data []byte) (bool, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(UploadField, "odl.yaml")
	if err != nil {
		return false, err
	}
	if _, err := fw.Write(data); err != nil {
		return false, err
	}
	if err := mw.Close(); err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.UploadURL, &body)
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %w", apperr.ErrUnreachable, c.UploadURL, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		apperr.Warn(apperr.WarnUploadFailed, "upload rejected",
			slog.String("url", c.UploadURL),
			slog.Int("status", resp.StatusCode))
		return false, nil
	}
	return true, nil
}

// Download fetches the definitions of collection col, optionally only the
// one called name, and parses them.
func (c *Client) Download(ctx context.Context, col, name string) (*Document, error) {
	u, err := url.Parse(c.DownloadURL)
	if err != nil {
		return nil, fmt.Errorf("download url: %w", err)
	}
	q := u.Query()
	q.Set("col", col)
	if name != "" {
		q.Set("name", name)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", apperr.ErrUnreachable, c.DownloadURL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", apperr.ErrUnreachable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %d", apperr.ErrDownloadFailed, col, resp.StatusCode)
	}
	return Parse(data, c.Registry)
}

// Ping checks that the upload endpoint answers at all.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.UploadURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %s: %w", apperr.ErrUnreachable, c.UploadURL, err)
	}
	resp.Body.Close()
	return nil
}
