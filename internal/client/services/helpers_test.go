package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/addressbook/internal/client/client"
	"github.com/dmitrijs2005/addressbook/internal/client/models"
	"github.com/stretchr/testify/require"
)

// ---- helpers ----

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func getMeta(t *testing.T, db *sql.DB, k string) (string, bool) {
	t.Helper()
	var v string
	err := db.QueryRow(`SELECT value FROM metadata WHERE key=?`, k).Scan(&v)
	if err == sql.ErrNoRows {
		return "", false
	}
	require.NoError(t, err)
	return v, true
}

// ---- fake client ----

// fakeClient implements client.Client for service tests. Methods the tests
// do not configure panic through the embedded nil interface.
type fakeClient struct {
	client.Client

	access, refresh string
	listeners       []func(models.TokenPair)

	loginPair *models.TokenPair
	loginErr  error

	refreshPair *models.TokenPair
	refreshErr  error
	refreshSeen string

	logoutErr    error
	logoutCalled bool

	registerUser *models.User
	registerErr  error
	lastPassword string

	uploadName string
	uploadData []byte

	pages     [][]models.Contact
	listErr   error
	queries   []models.ContactQuery
	created   *models.ContactInput
	updatedID int64
	deletedID int64

	closed bool
}

func (f *fakeClient) SetTokens(a, r string)              { f.access, f.refresh = a, r }
func (f *fakeClient) Tokens() (string, string)           { return f.access, f.refresh }
func (f *fakeClient) OnTokens(fn func(models.TokenPair)) { f.listeners = append(f.listeners, fn) }
func (f *fakeClient) Close() error                       { f.closed = true; return nil }
func (f *fakeClient) Ping(context.Context) error         { return nil }

func (f *fakeClient) emit(tp models.TokenPair) {
	f.access, f.refresh = tp.AccessToken, tp.RefreshToken
	for _, fn := range f.listeners {
		fn(tp)
	}
}

func (f *fakeClient) Register(_ context.Context, email, password, userName string) (*models.User, error) {
	f.lastPassword = password
	return f.registerUser, f.registerErr
}

func (f *fakeClient) Login(_ context.Context, email, password string) (*models.TokenPair, error) {
	f.lastPassword = password
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.emit(*f.loginPair)
	return f.loginPair, nil
}

func (f *fakeClient) Refresh(context.Context) (*models.TokenPair, error) {
	f.refreshSeen = f.refresh
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	f.emit(*f.refreshPair)
	return f.refreshPair, nil
}

func (f *fakeClient) Logout(context.Context) error {
	f.logoutCalled = true
	f.access, f.refresh = "", ""
	return f.logoutErr
}

func (f *fakeClient) UploadAvatar(_ context.Context, name string, data []byte) (*models.User, error) {
	f.uploadName, f.uploadData = name, data
	return &models.User{AvatarURL: "https://cdn/a.png"}, nil
}

func (f *fakeClient) ListContacts(_ context.Context, q models.ContactQuery) ([]models.Contact, error) {
	f.queries = append(f.queries, q)
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.pages) == 0 {
		return []models.Contact{}, nil
	}
	p := f.pages[0]
	f.pages = f.pages[1:]
	return p, nil
}

func (f *fakeClient) CreateContact(_ context.Context, in models.ContactInput) (*models.Contact, error) {
	f.created = &in
	return &models.Contact{ID: 1, FirstName: in.FirstName}, nil
}

func (f *fakeClient) UpdateContact(_ context.Context, id int64, in models.ContactInput) (*models.Contact, error) {
	f.updatedID = id
	return &models.Contact{ID: id, FirstName: in.FirstName}, nil
}

func (f *fakeClient) DeleteContact(_ context.Context, id int64) error {
	f.deletedID = id
	return nil
}
