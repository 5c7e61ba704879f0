package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/addressbook/internal/common"
	"github.com/go-playground/validator/v10"
)

// maxBodySize bounds JSON request bodies.
const maxBodySize = 1 << 20

var errMalformedBody = errors.New("malformed request body")

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusOf maps an error to its HTTP status and public error code. The order
// matters for errors that wrap more than one sentinel.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, errMalformedBody):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, common.ErrValidation):
		return http.StatusUnprocessableEntity, "validation_error"
	case errors.Is(err, common.ErrEmailNotConfirmed):
		return http.StatusUnauthorized, "email_not_confirmed"
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, "token_expired"
	case errors.Is(err, common.ErrRefreshTokenRevoked), errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid_token"
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, common.ErrAlreadyExists):
		return http.StatusConflict, "conflict"
	case errors.Is(err, common.ErrUpstream):
		return http.StatusBadGateway, "upstream_error"
	case errors.Is(err, common.ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeError renders err as {"error","detail"}. Unexpected errors are logged
// and answered with a generic body.
func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusOf(err)
	detail := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		detail = "internal server error"
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="addressbook"`)
	}
	writeJSON(w, status, errorResponse{Error: code, Detail: detail})
}

// decode reads a JSON body into dst and validates it.
func (s *HTTPServer) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	return s.check(dst)
}

func (s *HTTPServer) check(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", common.ErrValidation, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a date formatted as %s", fe.Field(), fe.Param())
	case "phone":
		return fe.Field() + " must be 9 to 15 digits, optionally prefixed with +"
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

var phonePattern = regexp.MustCompile(`^\+?\d{9,15}$`)

// newValidator reports fields by their JSON names and knows the "phone" tag.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}
