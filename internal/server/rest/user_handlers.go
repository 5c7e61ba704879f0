package rest

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/addressbook/internal/common"
	"github.com/dmitrijs2005/addressbook/internal/server/avatars"
)

// multipartOverhead is the slack allowed on top of avatars.MaxSize for
// multipart boundaries and headers.
const multipartOverhead = 64 << 10

func (s *HTTPServer) me(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.Me(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(user))
}

func (s *HTTPServer) uploadAvatar(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, avatars.MaxSize+multipartOverhead)

	if err := r.ParseMultipartForm(avatars.MaxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, r, fmt.Errorf("%w: %v", common.ErrValidation, avatars.ErrTooLarge))
			return
		}
		s.writeError(w, r, fmt.Errorf("%w: expected multipart form with a file field", errMalformedBody))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, _, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: file is required", common.ErrValidation))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, avatars.MaxSize+1))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errMalformedBody, err))
		return
	}

	user, err := s.users.UploadAvatar(r.Context(), userIDFrom(r.Context()), data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(user))
}
