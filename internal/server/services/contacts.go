package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/addressbook/internal/common"
	"github.com/dmitrijs2005/addressbook/internal/server/models"
	"github.com/dmitrijs2005/addressbook/internal/server/repositories/repomanager"
)

const (
	DefaultListLimit    = 10
	MaxListLimit        = 500
	DefaultBirthdayDays = 7
	MaxBirthdayDays     = 366
)

// ContactService runs owner-scoped contact operations. Every method takes the
// caller's user id; contacts of other users are reported as not found.
type ContactService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewContactService(db *sql.DB, m repomanager.RepositoryManager) *ContactService {
	return &ContactService{db: db, repomanager: m, now: time.Now}
}

func (s *ContactService) Create(ctx context.Context, userID string, c *models.Contact) (*models.Contact, error) {
	c.UserID = userID
	created, err := s.repomanager.Contacts(s.db).Create(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("error creating contact: %w", err)
	}
	return created, nil
}

func (s *ContactService) Get(ctx context.Context, userID string, id int64) (*models.Contact, error) {
	return s.repomanager.Contacts(s.db).Get(ctx, userID, id)
}

func (s *ContactService) Update(ctx context.Context, userID string, id int64, c *models.Contact) (*models.Contact, error) {
	c.ID = id
	c.UserID = userID
	updated, err := s.repomanager.Contacts(s.db).Update(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("error updating contact: %w", err)
	}
	return updated, nil
}

func (s *ContactService) Delete(ctx context.Context, userID string, id int64) error {
	return s.repomanager.Contacts(s.db).Delete(ctx, userID, id)
}

// List returns a page of the caller's contacts. A zero Limit means
// DefaultListLimit.
func (s *ContactService) List(ctx context.Context, userID string, filter models.ContactFilter) ([]*models.Contact, error) {
	if filter.Limit == 0 {
		filter.Limit = DefaultListLimit
	}
	if filter.Limit < 1 || filter.Limit > MaxListLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", common.ErrValidation, MaxListLimit)
	}
	if filter.Offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", common.ErrValidation)
	}
	return s.repomanager.Contacts(s.db).List(ctx, userID, filter)
}

// UpcomingBirthdays returns the caller's contacts whose birthday falls within
// the next days days, today included.
func (s *ContactService) UpcomingBirthdays(ctx context.Context, userID string, days int) ([]models.UpcomingBirthday, error) {
	if days < 0 || days > MaxBirthdayDays {
		return nil, fmt.Errorf("%w: days must be between 0 and %d", common.ErrValidation, MaxBirthdayDays)
	}
	all, err := s.repomanager.Contacts(s.db).ListAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	return UpcomingBirthdays(all, s.now(), days), nil
}
