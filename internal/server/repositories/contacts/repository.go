// Package contacts declares and implements owner-scoped persistence for
// address book contacts. Every method takes the owner's user id and never
// returns rows belonging to anyone else.
package contacts

import (
	"context"

	"github.com/dmitrijs2005/addressbook/internal/server/models"
)

type Repository interface {
	// Create inserts c for c.UserID. A second contact with the same email for
	// the same owner yields common.ErrAlreadyExists.
	Create(ctx context.Context, c *models.Contact) (*models.Contact, error)

	// Get returns the contact or common.ErrorNotFound when it is missing or
	// owned by someone else.
	Get(ctx context.Context, userID string, id int64) (*models.Contact, error)

	// Update overwrites the mutable fields of c (matched by c.ID and c.UserID).
	Update(ctx context.Context, c *models.Contact) (*models.Contact, error)

	// Delete removes the contact; common.ErrorNotFound if nothing was deleted.
	Delete(ctx context.Context, userID string, id int64) error

	// List returns a page of contacts matching filter, ordered by id.
	List(ctx context.Context, userID string, filter models.ContactFilter) ([]*models.Contact, error)

	// ListAll returns every contact of the owner, ordered by id.
	ListAll(ctx context.Context, userID string) ([]*models.Contact, error)
}
