// Package sharepoint is the REST adapter for SharePoint Online. Every
// remote failure is surfaced as a *domain.RemoteError carrying the HTTP
// status and any Retry-After hint, so the retry layer never parses
// message text.
package sharepoint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/minhvo/spsweep/internal/core/domain"
)

// Config holds SharePoint connection configuration. The auth handshake is
// out of scope; the adapter takes a ready bearer token (typically injected
// via ${SP_ACCESS_TOKEN} in the config file).
type Config struct {
	AccessToken    string `yaml:"access_token"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// TokenSource provides bearer tokens for REST calls. Lets callers plug in
// a refreshing credential without the adapter knowing its shape.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource backed by a fixed string.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) { return string(s), nil }

// Client issues SharePoint REST calls for one tenant.
type Client struct {
	httpClient *http.Client
	tokens     TokenSource
	ignore     map[string]struct{}
	log        *slog.Logger
}

// NewClient creates a SharePoint REST client. ignoreLists is the set of
// list titles excluded from enumeration results before the sweep core
// ever sees them.
func NewClient(cfg Config, ignoreLists []string, log *slog.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	ignore := make(map[string]struct{}, len(ignoreLists))
	for _, title := range ignoreLists {
		ignore[title] = struct{}{}
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		tokens: StaticToken(cfg.AccessToken),
		ignore: ignore,
		log:    log,
	}
}

// WithTokenSource replaces the static config token with a live source.
func (c *Client) WithTokenSource(ts TokenSource) *Client {
	c.tokens = ts
	return c
}

// Session is the exclusive connection to one site. The traverser owns one
// at a time and releases it before moving on, on error paths included.
type Session struct {
	client  *Client
	siteURL string
	closed  bool
}

// SiteURL returns the site this session is bound to.
func (s *Session) SiteURL() string { return s.siteURL }

// Connect opens a session against a site, validating reachability with a
// lightweight web-metadata request.
func (c *Client) Connect(ctx context.Context, siteURL string) (*Session, error) {
	siteURL = strings.TrimRight(siteURL, "/")
	var web struct {
		Title string `json:"Title"`
	}
	if err := c.get(ctx, "connect site", siteURL+"/_api/web?$select=Title", &web); err != nil {
		return nil, err
	}
	c.log.Debug("connected to site", "site", siteURL, "title", web.Title)
	return &Session{client: c, siteURL: siteURL}, nil
}

// Disconnect releases the session. Idempotent; REST sessions hold no
// server-side state, so this only marks the session unusable.
func (s *Session) Disconnect() {
	s.closed = true
}

func (c *Client) get(ctx context.Context, op, url string, out any) error {
	return c.do(ctx, op, http.MethodGet, url, nil, out)
}

func (c *Client) post(ctx context.Context, op, url string, body any, out any) error {
	return c.do(ctx, op, http.MethodPost, url, body, out)
}

func (c *Client) do(ctx context.Context, op, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json;odata=nometadata")
	if body != nil {
		req.Header.Set("Content-Type", "application/json;odata=nometadata")
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("%s: acquire token: %w", op, err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.RemoteError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &domain.RemoteError{
			Op:         op,
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("%s", strings.TrimSpace(string(raw))),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// parseRetryAfter handles both delta-seconds and HTTP-date forms.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
