package rest

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01")

func multipartRequest(t *testing.T, field string, data []byte, token string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "avatar.png")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPatch, "/users/avatar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestUploadAvatar(t *testing.T) {
	env := newTestEnv(t, nil)
	tokens := env.signUp(t, "leo@example.com")

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, multipartRequest(t, "file", pngBytes, tokens.AccessToken))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	user := decodeBody[userResponse](t, rec)
	assert.True(t, strings.HasPrefix(user.AvatarURL, "https://img.test/avatars/"+user.ID+"/"), user.AvatarURL)
	assert.True(t, strings.HasSuffix(user.AvatarURL, ".png"))
	assert.Len(t, env.storage.objects, 1)

	rec = env.do(t, http.MethodGet, "/users/me", nil, tokens.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, user.AvatarURL, decodeBody[userResponse](t, rec).AvatarURL)
}

func TestUploadAvatar_Rejections(t *testing.T) {
	env := newTestEnv(t, nil)
	tokens := env.signUp(t, "mia@example.com")

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, multipartRequest(t, "file", []byte("hello, plain text"), tokens.AccessToken))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, multipartRequest(t, "picture", pngBytes, tokens.AccessToken))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, http.MethodPatch, "/users/avatar", map[string]string{"file": "x"}, tokens.AccessToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.storage.err = errors.New("bucket gone")
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, multipartRequest(t, "file", pngBytes, tokens.AccessToken))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestMe_RequiresAuth(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/users/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
