package rest

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/addressbook/internal/logging"
	"github.com/dmitrijs2005/addressbook/internal/server/cache"
	"github.com/dmitrijs2005/addressbook/internal/server/config"
	"github.com/dmitrijs2005/addressbook/internal/server/ratelimit"
	"github.com/dmitrijs2005/addressbook/internal/server/repositories/memory"
	"github.com/dmitrijs2005/addressbook/internal/server/services"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

type captureMailer struct {
	mu     sync.Mutex
	verify map[string]string
	reset  map[string]string
}

func newCaptureMailer() *captureMailer {
	return &captureMailer{verify: map[string]string{}, reset: map[string]string{}}
}

func (m *captureMailer) SendVerificationEmail(_ context.Context, to, _, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verify[to] = token
	return nil
}

func (m *captureMailer) SendPasswordResetEmail(_ context.Context, to, _, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset[to] = token
	return nil
}

func (m *captureMailer) verifyToken(t *testing.T, email string) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	token, ok := m.verify[email]
	require.True(t, ok, "no verification mail for %s", email)
	return token
}

type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func (s *memStorage) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	if s.objects == nil {
		s.objects = map[string][]byte{}
	}
	s.objects[key] = data
	return "https://img.test/" + key, nil
}

type testEnv struct {
	handler http.Handler
	mailer  *captureMailer
	storage *memStorage
	db      *sql.DB
	cfg     *config.Config
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	cfg.RateLimitRequests = 0
	cfg.AuthRateLimitRequests = 0
	return cfg
}

func newTestEnv(t *testing.T, limiter ratelimit.Limiter, opts ...func(*config.Config)) *testEnv {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	env := &testEnv{mailer: newCaptureMailer(), storage: &memStorage{}, db: db, cfg: testConfig()}
	for _, opt := range opts {
		opt(env.cfg)
	}
	rm := memory.NewRepositoryManager()
	as := services.NewAuthService(db, rm, env.cfg, env.mailer, cache.NewMemoryResetTokens(), cache.NopUserCache{})
	us := services.NewUserService(db, rm, cache.NopUserCache{}, env.storage)
	cs := services.NewContactService(db, rm)

	env.handler = NewHTTPServer(env.cfg, logging.Discard(), db, as, us, cs, limiter).Router()
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// signUp registers, verifies and logs in, returning the token pair.
func (e *testEnv) signUp(t *testing.T, email string) tokenResponse {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/auth/register", registerRequest{Email: email, Password: "secret123", UserName: "tester"}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodGet, "/auth/verify/"+e.mailer.verifyToken(t, email), nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: "secret123"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeBody[tokenResponse](t, rec)
}

func sampleContact() contactRequest {
	return contactRequest{
		FirstName: "Ann",
		LastName:  "Lee",
		Email:     "ann.lee@example.com",
		Phone:     "+380501234567",
		Birthday:  "1990-05-01",
		Notes:     "met at conf",
	}
}

type fakeLimiter struct {
	res   ratelimit.Result
	err   error
	keys  []string
	limit int
}

func (f *fakeLimiter) Allow(_ context.Context, key string, limit int, _ time.Duration) (ratelimit.Result, error) {
	f.keys = append(f.keys, key)
	f.limit = limit
	return f.res, f.err
}
