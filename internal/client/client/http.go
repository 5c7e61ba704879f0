package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/addressbook/internal/client/models"
	"github.com/dmitrijs2005/addressbook/internal/common"
	"github.com/google/uuid"
)

// RequestIDHeader carries a client generated id the server echoes in its logs.
const RequestIDHeader = "X-Request-Id"

type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	listeners    []func(models.TokenPair)
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient returns a client for the API rooted at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", baseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q", baseURL)
	}

	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}, nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) SetTokens(access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = access
	c.refreshToken = refresh
}

func (c *HTTPClient) Tokens() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

// OnTokens registers fn to be called with every newly issued token pair.
func (c *HTTPClient) OnTokens(fn func(models.TokenPair)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *HTTPClient) storeTokens(tp models.TokenPair) {
	c.mu.Lock()
	c.accessToken = tp.AccessToken
	c.refreshToken = tp.RefreshToken
	listeners := slices.Clone(c.listeners)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(tp)
	}
}

// payload is a request body that can be replayed after a token refresh.
type payload struct {
	body        []byte
	contentType string
}

func jsonPayload(v any) (*payload, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return &payload{body: b, contentType: "application/json"}, nil
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, p *payload, token string) (*http.Request, error) {
	var body io.Reader
	if p != nil {
		body = bytes.NewReader(p.body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if p != nil {
		req.Header.Set("Content-Type", p.contentType)
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}
	return req, nil
}

// send performs one request and decodes a successful body into out.
func (c *HTTPClient) send(ctx context.Context, method, path string, p *payload, token string, out any) error {
	req, err := c.newRequest(ctx, method, path, p, token)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// authorized sends an authenticated request. When the access token is
// missing or expired and a refresh token is known, the pair is rotated once
// and the request retried.
func (c *HTTPClient) authorized(ctx context.Context, method, path string, p *payload, out any) error {
	access, refresh := c.Tokens()
	if access == "" && refresh == "" {
		return ErrNotLoggedIn
	}

	if access != "" {
		err := c.send(ctx, method, path, p, access, out)
		if !errors.Is(err, common.ErrTokenExpired) || refresh == "" {
			return err
		}
	}

	if _, err := c.Refresh(ctx); err != nil {
		return err
	}

	access, _ = c.Tokens()
	return c.send(ctx, method, path, p, access, out)
}

// Ping checks /health and reports ErrUnavailable when the server or its
// database is down.
func (c *HTTPClient) Ping(ctx context.Context) error {
	var status struct {
		Status string `json:"status"`
	}
	if err := c.send(ctx, http.MethodGet, "/health", nil, "", &status); err != nil {
		if errors.Is(err, ErrUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if status.Status != "ok" {
		return ErrUnavailable
	}
	return nil
}
