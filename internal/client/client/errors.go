package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/addressbook/internal/common"
)

var (
	ErrUnavailable = errors.New("server unavailable")
	ErrNotLoggedIn = errors.New("not logged in")
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// APIError is a non-2xx response from the API.
type APIError struct {
	Status     int
	Code       string
	Detail     string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	switch {
	case e.Code != "" && e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Code, e.Detail)
	case e.Code != "":
		return e.Code
	case e.Detail != "":
		return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Detail)
	default:
		return fmt.Sprintf("unexpected status %d", e.Status)
	}
}

// Unwrap maps the response to the sentinels from internal/common.
func (e *APIError) Unwrap() []error {
	switch e.Code {
	case "bad_request", "validation_error":
		return []error{common.ErrValidation}
	case "email_not_confirmed":
		return []error{common.ErrInvalidCredentials, common.ErrEmailNotConfirmed}
	case "invalid_credentials":
		return []error{common.ErrInvalidCredentials}
	case "token_expired":
		return []error{common.ErrTokenExpired}
	case "invalid_token":
		return []error{common.ErrInvalidToken}
	case "unauthorized":
		return []error{common.ErrorUnauthorized}
	case "not_found":
		return []error{common.ErrorNotFound}
	case "conflict":
		return []error{common.ErrAlreadyExists}
	case "upstream_error":
		return []error{common.ErrUpstream}
	case "rate_limited":
		return []error{common.ErrRateLimited}
	}

	switch {
	case e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity:
		return []error{common.ErrValidation}
	case e.Status == http.StatusUnauthorized:
		return []error{common.ErrorUnauthorized}
	case e.Status == http.StatusNotFound:
		return []error{common.ErrorNotFound}
	case e.Status == http.StatusConflict:
		return []error{common.ErrAlreadyExists}
	case e.Status == http.StatusTooManyRequests:
		return []error{common.ErrRateLimited}
	case e.Status == http.StatusBadGateway:
		return []error{common.ErrUpstream}
	case e.Status == http.StatusServiceUnavailable || e.Status == http.StatusGatewayTimeout:
		return []error{ErrUnavailable}
	default:
		return []error{common.ErrorInternal}
	}
}

// decodeError builds an *APIError from resp. Bodies that are not the API's
// error envelope are kept as the detail.
func decodeError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode}

	if s := resp.Header.Get("Retry-After"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil {
			apiErr.RetryAfter = time.Duration(secs) * time.Second
		}
	}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		apiErr.Code = body.Error
		apiErr.Detail = body.Detail
		return apiErr
	}

	apiErr.Detail = strings.TrimSpace(string(data))
	return apiErr
}
