package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/addressbook/internal/common"
	"github.com/go-chi/chi/v5"
)

func (s *HTTPServer) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.auth.Register(r.Context(), req.Email, req.Password, req.UserName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Registered", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, newUserResponse(user))
}

func (s *HTTPServer) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	pair, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTokenResponse(pair))
}

// refreshTokenFrom takes the refresh token from a JSON body and falls back to
// the bearer header when the body is empty or carries no token.
func (s *HTTPServer) refreshTokenFrom(w http.ResponseWriter, r *http.Request) (string, error) {
	var req refreshRequest
	if r.Body != nil {
		err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req)
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%w: %v", errMalformedBody, err)
		}
	}
	if token := strings.TrimSpace(req.RefreshToken); token != "" {
		return token, nil
	}
	if token := bearerToken(r); token != "" {
		return token, nil
	}
	return "", fmt.Errorf("%w: refresh_token is required", common.ErrValidation)
}

func (s *HTTPServer) refresh(w http.ResponseWriter, r *http.Request) {
	token, err := s.refreshTokenFrom(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	pair, err := s.auth.RefreshToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, common.ErrRefreshTokenRevoked) {
			s.logger.Warn(r.Context(), "refresh token reuse, sessions revoked")
		}
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTokenResponse(pair))
}

func (s *HTTPServer) logout(w http.ResponseWriter, r *http.Request) {
	token, err := s.refreshTokenFrom(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.auth.Logout(r.Context(), token); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) verifyEmail(w http.ResponseWriter, r *http.Request) {
	already, err := s.auth.VerifyEmail(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if already {
		writeJSON(w, http.StatusOK, messageResponse{Message: "Your email is already confirmed"})
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Email confirmed"})
}

func (s *HTTPServer) requestEmail(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	already, err := s.auth.RequestEmail(r.Context(), req.Email)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if already {
		writeJSON(w, http.StatusOK, messageResponse{Message: "Your email is already confirmed"})
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Check your email for confirmation"})
}

func (s *HTTPServer) requestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.auth.RequestPasswordReset(r.Context(), req.Email); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Password reset link has been sent to your email"})
}

func (s *HTTPServer) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req passwordResetRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.auth.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Password updated successfully"})
}
