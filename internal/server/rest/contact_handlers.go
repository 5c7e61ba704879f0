package rest

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/addressbook/internal/common"
	"github.com/dmitrijs2005/addressbook/internal/server/models"
	"github.com/dmitrijs2005/addressbook/internal/server/services"
	"github.com/go-chi/chi/v5"
)

// queryInt reads an optional integer query parameter.
func queryInt(q url.Values, name string, def int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", common.ErrValidation, name)
	}
	return n, nil
}

func contactID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: id must be a positive integer", common.ErrValidation)
	}
	return id, nil
}

func (s *HTTPServer) listContacts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, err := queryInt(q, "limit", services.DefaultListLimit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	offset, err := queryInt(q, "offset", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	filter := models.ContactFilter{
		FirstName: q.Get("first_name"),
		LastName:  q.Get("last_name"),
		Email:     q.Get("email"),
		Name:      q.Get("name"),
		Limit:     limit,
		Offset:    offset,
	}
	if filter.Limit == 0 {
		s.writeError(w, r, fmt.Errorf("%w: limit must be between 1 and %d", common.ErrValidation, services.MaxListLimit))
		return
	}

	list, err := s.contacts.List(r.Context(), userIDFrom(r.Context()), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newContactList(list))
}

func (s *HTTPServer) createContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	c, err := s.contacts.Create(r.Context(), userIDFrom(r.Context()), req.toModel())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newContactResponse(c))
}

func (s *HTTPServer) getContact(w http.ResponseWriter, r *http.Request) {
	id, err := contactID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	c, err := s.contacts.Get(r.Context(), userIDFrom(r.Context()), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newContactResponse(c))
}

func (s *HTTPServer) updateContact(w http.ResponseWriter, r *http.Request) {
	id, err := contactID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req contactRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	c, err := s.contacts.Update(r.Context(), userIDFrom(r.Context()), id, req.toModel())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newContactResponse(c))
}

func (s *HTTPServer) deleteContact(w http.ResponseWriter, r *http.Request) {
	id, err := contactID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.contacts.Delete(r.Context(), userIDFrom(r.Context()), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) upcomingBirthdays(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r.URL.Query(), "days", services.DefaultBirthdayDays)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	list, err := s.contacts.UpcomingBirthdays(r.Context(), userIDFrom(r.Context()), days)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newBirthdayList(list))
}
