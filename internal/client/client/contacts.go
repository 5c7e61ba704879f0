package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/addressbook/internal/client/models"
)

func contactPath(id int64) string {
	return "/contacts/" + strconv.FormatInt(id, 10)
}

// queryValues encodes the non-zero fields of q.
func queryValues(q models.ContactQuery) url.Values {
	v := url.Values{}
	set := func(k, s string) {
		if s != "" {
			v.Set(k, s)
		}
	}
	set("first_name", q.FirstName)
	set("last_name", q.LastName)
	set("email", q.Email)
	set("name", q.Name)
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	return v
}

func (c *HTTPClient) ListContacts(ctx context.Context, q models.ContactQuery) ([]models.Contact, error) {
	path := "/contacts"
	if v := queryValues(q); len(v) > 0 {
		path += "?" + v.Encode()
	}

	var list []models.Contact
	if err := c.authorized(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *HTTPClient) CreateContact(ctx context.Context, in models.ContactInput) (*models.Contact, error) {
	p, err := jsonPayload(in)
	if err != nil {
		return nil, err
	}

	var out models.Contact
	if err := c.authorized(ctx, http.MethodPost, "/contacts", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) GetContact(ctx context.Context, id int64) (*models.Contact, error) {
	var out models.Contact
	if err := c.authorized(ctx, http.MethodGet, contactPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UpdateContact(ctx context.Context, id int64, in models.ContactInput) (*models.Contact, error) {
	p, err := jsonPayload(in)
	if err != nil {
		return nil, err
	}

	var out models.Contact
	if err := c.authorized(ctx, http.MethodPut, contactPath(id), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteContact(ctx context.Context, id int64) error {
	return c.authorized(ctx, http.MethodDelete, contactPath(id), nil, nil)
}

// UpcomingBirthdays lists birthdays in the next days days; days <= 0 uses
// the server default.
func (c *HTTPClient) UpcomingBirthdays(ctx context.Context, days int) ([]models.Birthday, error) {
	path := "/contacts/birthdays"
	if days > 0 {
		path += "?days=" + strconv.Itoa(days)
	}

	var list []models.Birthday
	if err := c.authorized(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}
