// Package api is the HTTP client for the collection service. Callers list,
// create and delete entities by resource name; URLs, JSON and status codes
// stay inside the package.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/h0rv/catalog/internal/domain"
)

// ErrStatus is returned (wrapped) when the service answers with status >= 400.
var ErrStatus = errors.New("unexpected status")

// Lister loads a full collection. Implemented by *Client; fakes implement it in tests.
type Lister interface {
	List(ctx context.Context, resource string) ([]domain.Entity, error)
}

// Mutator creates and deletes entities of a collection.
type Mutator interface {
	Create(ctx context.Context, resource string, payload any) (domain.Entity, error)
	Delete(ctx context.Context, resource string, id string) error
}

// Ensure Client implements both contracts at compile time.
var (
	_ Lister  = (*Client)(nil)
	_ Mutator = (*Client)(nil)
)

// Client talks to the collection service over HTTP.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultUserAgent = "catalog/0.1"
	defaultTimeout   = 10 * time.Second
)

// New creates a client for the given base URL. A zero timeout uses the default.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns the normalized service root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// resolve joins the base URL with a resource path and optional extra segments.
// Each segment is escaped as a single path element, so an id containing a
// slash stays one element.
func (c *Client) resolve(resource string, segments ...string) string {
	u := *c.baseURL
	plain := []string{strings.TrimRight(u.Path, "/")}
	raw := []string{strings.TrimRight(u.EscapedPath(), "/")}
	for _, p := range strings.Split(strings.Trim(resource, "/"), "/") {
		plain = append(plain, p)
		raw = append(raw, url.PathEscape(p))
	}
	for _, seg := range segments {
		plain = append(plain, seg)
		raw = append(raw, url.PathEscape(seg))
	}
	u.Path = "/" + strings.TrimLeft(strings.Join(plain, "/"), "/")
	u.RawPath = "/" + strings.TrimLeft(strings.Join(raw, "/"), "/")
	return u.String()
}

// do executes a request with JSON encoding on both sides.
// A nil body sends no payload; a nil dest discards the response body.
func (c *Client) do(ctx context.Context, method, target string, body any, dest any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s: %w %d", method, target, ErrStatus, resp.StatusCode)
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("base url is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
