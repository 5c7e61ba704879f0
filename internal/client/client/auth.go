package client

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/dmitrijs2005/addressbook/internal/client/models"
)

type messageResponse struct {
	Message string `json:"message"`
}

func (c *HTTPClient) Register(ctx context.Context, email, password, userName string) (*models.User, error) {
	p, err := jsonPayload(map[string]string{"email": email, "password": password, "username": userName})
	if err != nil {
		return nil, err
	}

	var u models.User
	if err := c.send(ctx, http.MethodPost, "/auth/register", p, "", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login authenticates and keeps the issued token pair.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	p, err := jsonPayload(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}

	var tp models.TokenPair
	if err := c.send(ctx, http.MethodPost, "/auth/login", p, "", &tp); err != nil {
		return nil, err
	}

	c.storeTokens(tp)
	return &tp, nil
}

// Refresh rotates the current refresh token.
func (c *HTTPClient) Refresh(ctx context.Context) (*models.TokenPair, error) {
	_, refresh := c.Tokens()
	if refresh == "" {
		return nil, ErrNotLoggedIn
	}

	p, err := jsonPayload(map[string]string{"refresh_token": refresh})
	if err != nil {
		return nil, err
	}

	var tp models.TokenPair
	if err := c.send(ctx, http.MethodPost, "/auth/refresh", p, "", &tp); err != nil {
		return nil, err
	}

	c.storeTokens(tp)
	return &tp, nil
}

// Logout revokes the refresh token on the server. Local tokens are dropped
// even when the server call fails.
func (c *HTTPClient) Logout(ctx context.Context) error {
	_, refresh := c.Tokens()
	c.SetTokens("", "")
	if refresh == "" {
		return nil
	}

	p, err := jsonPayload(map[string]string{"refresh_token": refresh})
	if err != nil {
		return err
	}
	return c.send(ctx, http.MethodPost, "/auth/logout", p, "", nil)
}

func (c *HTTPClient) VerifyEmail(ctx context.Context, token string) (string, error) {
	var m messageResponse
	if err := c.send(ctx, http.MethodGet, "/auth/verify/"+url.PathEscape(token), nil, "", &m); err != nil {
		return "", err
	}
	return m.Message, nil
}

func (c *HTTPClient) RequestEmail(ctx context.Context, email string) (string, error) {
	return c.postMessage(ctx, "/auth/request-email", map[string]string{"email": email})
}

func (c *HTTPClient) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	return c.postMessage(ctx, "/auth/password-reset-request", map[string]string{"email": email})
}

func (c *HTTPClient) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	return c.postMessage(ctx, "/auth/password-reset", map[string]string{"token": token, "new_password": newPassword})
}

func (c *HTTPClient) postMessage(ctx context.Context, path string, body any) (string, error) {
	p, err := jsonPayload(body)
	if err != nil {
		return "", err
	}

	var m messageResponse
	if err := c.send(ctx, http.MethodPost, path, p, "", &m); err != nil {
		return "", err
	}
	return m.Message, nil
}

func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.authorized(ctx, http.MethodGet, "/users/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UploadAvatar sends data as the multipart "file" field.
func (c *HTTPClient) UploadAvatar(ctx context.Context, fileName string, data []byte) (*models.User, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filepath.Base(fileName))
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("encode multipart: %w", err)
	}

	p := &payload{body: buf.Bytes(), contentType: w.FormDataContentType()}

	var u models.User
	if err := c.authorized(ctx, http.MethodPatch, "/users/avatar", p, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
