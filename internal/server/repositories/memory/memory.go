// Package memory implements the repository contracts in process memory. It
// follows the same uniqueness and ownership rules as the PostgreSQL
// repositories and ignores the DBTX handle, so it suits tests and local
// experiments but offers no transactional rollback.
package memory

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/addressbook/internal/common"
	"github.com/dmitrijs2005/addressbook/internal/dbx"
	"github.com/dmitrijs2005/addressbook/internal/server/models"
	"github.com/dmitrijs2005/addressbook/internal/server/repositories/contacts"
	"github.com/dmitrijs2005/addressbook/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/addressbook/internal/server/repositories/users"
	"github.com/google/uuid"
)

// RepositoryManager vends repositories sharing one in-memory store.
type RepositoryManager struct {
	store *store
}

func NewRepositoryManager() *RepositoryManager {
	return &RepositoryManager{store: &store{
		users:    make(map[string]*models.User),
		contacts: make(map[int64]*models.Contact),
		tokens:   make(map[string]*models.RefreshToken),
		now:      time.Now,
	}}
}

func (m *RepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *RepositoryManager) Users(dbx.DBTX) users.Repository { return (*userRepo)(m.store) }

func (m *RepositoryManager) Contacts(dbx.DBTX) contacts.Repository { return (*contactRepo)(m.store) }

func (m *RepositoryManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository {
	return (*tokenRepo)(m.store)
}

type store struct {
	mu            sync.Mutex
	users         map[string]*models.User
	contacts      map[int64]*models.Contact
	tokens        map[string]*models.RefreshToken
	lastContactID int64
	now           func() time.Time
}

// --- users ---

type userRepo store

func (r *userRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email {
			return nil, common.ErrAlreadyExists
		}
	}
	now := s.now()
	u.ID = uuid.NewString()
	u.Confirmed = false
	u.CreatedAt, u.UpdatedAt = now, now
	cp := *u
	s.users[u.ID] = &cp
	return u, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *userRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *userRepo) update(id string, fn func(u *models.User)) (*models.User, error) {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	fn(u)
	u.UpdatedAt = s.now()
	cp := *u
	return &cp, nil
}

func (r *userRepo) UpdateAvatar(_ context.Context, id string, avatarURL string) (*models.User, error) {
	return r.update(id, func(u *models.User) { u.AvatarURL = avatarURL })
}

func (r *userRepo) MarkConfirmed(_ context.Context, id string) error {
	_, err := r.update(id, func(u *models.User) { u.Confirmed = true })
	return err
}

func (r *userRepo) UpdatePassword(_ context.Context, id string, passwordHash string) error {
	_, err := r.update(id, func(u *models.User) { u.PasswordHash = passwordHash })
	return err
}

// --- contacts ---

type contactRepo store

func (r *contactRepo) emailTaken(s *store, userID, email string, exceptID int64) bool {
	for _, c := range s.contacts {
		if c.UserID == userID && c.ID != exceptID && strings.EqualFold(c.Email, email) {
			return true
		}
	}
	return false
}

func (r *contactRepo) Create(_ context.Context, c *models.Contact) (*models.Contact, error) {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.emailTaken(s, c.UserID, c.Email, 0) {
		return nil, common.ErrAlreadyExists
	}
	s.lastContactID++
	now := s.now()
	cp := *c
	cp.ID = s.lastContactID
	cp.CreatedAt, cp.UpdatedAt = now, now
	s.contacts[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *contactRepo) Get(_ context.Context, userID string, id int64) (*models.Contact, error) {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contacts[id]
	if !ok || c.UserID != userID {
		return nil, common.ErrorNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *contactRepo) Update(_ context.Context, c *models.Contact) (*models.Contact, error) {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.contacts[c.ID]
	if !ok || existing.UserID != c.UserID {
		return nil, common.ErrorNotFound
	}
	if r.emailTaken(s, c.UserID, c.Email, c.ID) {
		return nil, common.ErrAlreadyExists
	}
	existing.FirstName = c.FirstName
	existing.LastName = c.LastName
	existing.Email = c.Email
	existing.Phone = c.Phone
	existing.Birthday = c.Birthday
	existing.Notes = c.Notes
	existing.UpdatedAt = s.now()
	cp := *existing
	return &cp, nil
}

func (r *contactRepo) Delete(_ context.Context, userID string, id int64) error {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contacts[id]
	if !ok || c.UserID != userID {
		return common.ErrorNotFound
	}
	delete(s.contacts, id)
	return nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func (r *contactRepo) owned(userID string, match func(*models.Contact) bool) []*models.Contact {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.Contact, 0)
	for _, c := range s.contacts {
		if c.UserID == userID && match(c) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *contactRepo) List(_ context.Context, userID string, f models.ContactFilter) ([]*models.Contact, error) {
	all := r.owned(userID, func(c *models.Contact) bool {
		if f.FirstName != "" && !containsFold(c.FirstName, f.FirstName) {
			return false
		}
		if f.LastName != "" && !containsFold(c.LastName, f.LastName) {
			return false
		}
		if f.Email != "" && !containsFold(c.Email, f.Email) {
			return false
		}
		if f.Name != "" && !containsFold(c.FirstName, f.Name) && !containsFold(c.LastName, f.Name) {
			return false
		}
		return true
	})

	if f.Offset >= len(all) {
		return make([]*models.Contact, 0), nil
	}
	end := len(all)
	if f.Limit > 0 && f.Offset+f.Limit < end {
		end = f.Offset + f.Limit
	}
	return all[f.Offset:end], nil
}

func (r *contactRepo) ListAll(_ context.Context, userID string) ([]*models.Contact, error) {
	return r.owned(userID, func(*models.Contact) bool { return true }), nil
}

// --- refresh tokens ---

type tokenRepo store

func (r *tokenRepo) Create(_ context.Context, userID string, token string, validity time.Duration) error {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.tokens[token]; dup {
		return fmt.Errorf("db error: %w", common.ErrAlreadyExists)
	}
	now := s.now()
	s.tokens[token] = &models.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     token,
		Expires:   now.Add(validity),
		CreatedAt: now,
	}
	return nil
}

func (r *tokenRepo) Consume(_ context.Context, token string) (*models.RefreshToken, error) {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(s.tokens, token)
	return t, nil
}

func (r *tokenRepo) Delete(_ context.Context, token string) error {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tokens, token)
	return nil
}

func (r *tokenRepo) deleteWhere(match func(*models.RefreshToken) bool) int64 {
	s := (*store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for k, t := range s.tokens {
		if match(t) {
			delete(s.tokens, k)
			n++
		}
	}
	return n
}

func (r *tokenRepo) DeleteByUser(_ context.Context, userID string) (int64, error) {
	return r.deleteWhere(func(t *models.RefreshToken) bool { return t.UserID == userID }), nil
}

func (r *tokenRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	return r.deleteWhere(func(t *models.RefreshToken) bool { return t.Expires.Before(now) }), nil
}
