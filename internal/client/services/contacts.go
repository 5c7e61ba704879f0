package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/addressbook/internal/client/client"
	"github.com/dmitrijs2005/addressbook/internal/client/models"
	"github.com/dmitrijs2005/addressbook/internal/common"
)

// PageSize is the page length used when walking the whole contact list.
const PageSize = 100

type ContactService interface {
	List(ctx context.Context, q models.ContactQuery) ([]models.Contact, error)
	All(ctx context.Context) ([]models.Contact, error)
	Search(ctx context.Context, term string) ([]models.Contact, error)
	Add(ctx context.Context, in models.ContactInput) (*models.Contact, error)
	Get(ctx context.Context, id int64) (*models.Contact, error)
	Update(ctx context.Context, id int64, in models.ContactInput) (*models.Contact, error)
	Delete(ctx context.Context, id int64) error
	Birthdays(ctx context.Context, days int) ([]models.Birthday, error)
}

type contactService struct {
	client client.Client
}

func NewContactService(c client.Client) ContactService {
	return &contactService{client: c}
}

func (s *contactService) List(ctx context.Context, q models.ContactQuery) ([]models.Contact, error) {
	return s.client.ListContacts(ctx, q)
}

// All pages through every contact of the current user.
func (s *contactService) All(ctx context.Context) ([]models.Contact, error) {
	return s.collect(ctx, models.ContactQuery{})
}

// Search matches term against names, or against email when term contains '@'.
func (s *contactService) Search(ctx context.Context, term string) ([]models.Contact, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, fmt.Errorf("%w: search term is empty", common.ErrValidation)
	}

	q := models.ContactQuery{Name: term}
	if strings.Contains(term, "@") {
		q = models.ContactQuery{Email: term}
	}
	return s.collect(ctx, q)
}

func (s *contactService) collect(ctx context.Context, q models.ContactQuery) ([]models.Contact, error) {
	q.Limit = PageSize
	var out []models.Contact
	for {
		page, err := s.client.ListContacts(ctx, q)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if len(page) < PageSize {
			return out, nil
		}
		q.Offset += PageSize
	}
}

func (s *contactService) Add(ctx context.Context, in models.ContactInput) (*models.Contact, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	return s.client.CreateContact(ctx, in)
}

func (s *contactService) Get(ctx context.Context, id int64) (*models.Contact, error) {
	return s.client.GetContact(ctx, id)
}

func (s *contactService) Update(ctx context.Context, id int64, in models.ContactInput) (*models.Contact, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	return s.client.UpdateContact(ctx, id, in)
}

func (s *contactService) Delete(ctx context.Context, id int64) error {
	return s.client.DeleteContact(ctx, id)
}

func (s *contactService) Birthdays(ctx context.Context, days int) ([]models.Birthday, error) {
	return s.client.UpcomingBirthdays(ctx, days)
}

// validateInput catches the mistakes worth a local message before a round
// trip; the server performs the full validation.
func validateInput(in models.ContactInput) error {
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return fmt.Errorf("%w: first and last name are required", common.ErrValidation)
	}
	if _, err := time.Parse(models.DateLayout, in.Birthday); err != nil {
		return fmt.Errorf("%w: birthday must be YYYY-MM-DD", common.ErrValidation)
	}
	return nil
}
