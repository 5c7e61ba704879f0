package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/addressbook/internal/common"
	"github.com/dmitrijs2005/addressbook/internal/dbx"
	"github.com/dmitrijs2005/addressbook/internal/server/config"
	"github.com/dmitrijs2005/addressbook/internal/server/models"
	"github.com/dmitrijs2005/addressbook/internal/server/repositories/contacts"
	"github.com/dmitrijs2005/addressbook/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/addressbook/internal/server/repositories/users"
	_ "modernc.org/sqlite"
)

// --- helpers ---

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

// newTxDB returns a real database handle so that dbx.WithTx can begin and
// commit; the in-memory repositories never touch it.
func newTxDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                         "k",
		AccessTokenValidityDuration:       time.Hour,
		RefreshTokenValidityDuration:      2 * time.Hour,
		VerificationTokenValidityDuration: time.Hour,
		ResetTokenValidityDuration:        time.Hour,
	}
}

type sentMail struct {
	kind, to, name, token string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) record(kind, to, name, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{kind: kind, to: to, name: name, token: token})
	return nil
}

func (m *fakeMailer) SendVerificationEmail(_ context.Context, to, name, token string) error {
	return m.record("verify", to, name, token)
}

func (m *fakeMailer) SendPasswordResetEmail(_ context.Context, to, name, token string) error {
	return m.record("reset", to, name, token)
}

func (m *fakeMailer) last(t *testing.T, kind string) sentMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].kind == kind {
			return m.sent[i]
		}
	}
	t.Fatalf("no %s mail sent", kind)
	return sentMail{}
}

type fakeCache struct {
	users   map[string]*models.User
	getErr  error
	deleted []string
}

func newFakeCache() *fakeCache { return &fakeCache{users: map[string]*models.User{}} }

func (c *fakeCache) Get(_ context.Context, id string) (*models.User, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	u, ok := c.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (c *fakeCache) Set(_ context.Context, u *models.User) error {
	c.users[u.ID] = u
	return nil
}

func (c *fakeCache) Delete(_ context.Context, id string) error {
	delete(c.users, id)
	c.deleted = append(c.deleted, id)
	return nil
}

// --- fake repositories for error paths ---

type fakeUsersRepo struct {
	users.Repository
	createOut *models.User
	createErr error
	getOut    *models.User
	getErr    error
	updErr    error
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(context.Context, string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUsersRepo) GetByID(context.Context, string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUsersRepo) UpdateAvatar(_ context.Context, id, url string) (*models.User, error) {
	if f.updErr != nil {
		return nil, f.updErr
	}
	return &models.User{ID: id, AvatarURL: url}, nil
}

type fakeRefreshRepo struct {
	refreshtokens.Repository
	consumeOut   *models.RefreshToken
	consumeErr   error
	createErr    error
	deleteErr    error
	revokedUsers []string
}

func (f *fakeRefreshRepo) Create(context.Context, string, string, time.Duration) error {
	return f.createErr
}

func (f *fakeRefreshRepo) Consume(context.Context, string) (*models.RefreshToken, error) {
	if f.consumeErr != nil {
		return nil, f.consumeErr
	}
	return f.consumeOut, nil
}

func (f *fakeRefreshRepo) Delete(context.Context, string) error { return f.deleteErr }

func (f *fakeRefreshRepo) DeleteByUser(_ context.Context, userID string) (int64, error) {
	f.revokedUsers = append(f.revokedUsers, userID)
	return 1, nil
}

type fakeContactsRepo struct {
	contacts.Repository
	listFilter models.ContactFilter
	listOut    []*models.Contact
	err        error
}

func (f *fakeContactsRepo) List(_ context.Context, _ string, filter models.ContactFilter) ([]*models.Contact, error) {
	f.listFilter = filter
	return f.listOut, f.err
}

func (f *fakeContactsRepo) ListAll(context.Context, string) ([]*models.Contact, error) {
	return f.listOut, f.err
}

func (f *fakeContactsRepo) Create(context.Context, *models.Contact) (*models.Contact, error) {
	return nil, f.err
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	c *fakeContactsRepo
	r *fakeRefreshRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return m.u }
func (m *fakeRepoManager) Contacts(dbx.DBTX) contacts.Repository        { return m.c }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository {
	return m.r
}
