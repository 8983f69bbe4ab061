package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/cryptobulldev/userdash/internal/common"
	"github.com/cryptobulldev/userdash/internal/netx"
)

var (
	// ErrNoRefreshCredential means a refresh was needed but the session holds
	// no refresh credential. No network call is made.
	ErrNoRefreshCredential = errors.New("no refresh credential")

	// ErrRefreshRejected means the refresh endpoint refused the credential.
	// The session is logged out.
	ErrRefreshRejected = errors.New("refresh rejected")

	// ErrUnavailable marks transport failures, timeouts and gateway-class
	// server errors. It never logs the session out.
	ErrUnavailable = errors.New("server unavailable")

	// ErrUnauthorized is an authentication failure that survived the single
	// refresh-and-retry.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrSessionChanged means a refresh finished after the session it
	// belonged to was logged out or replaced; its outcome was discarded.
	ErrSessionChanged = errors.New("session changed during refresh")
)

// StatusError is a non-2xx API response. errors.Is matches it against the
// sentinel implied by the status code and against Cause.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string

	// Cause explains why a 401 could not be recovered, if known.
	Cause error
}

// NewStatusError builds a StatusError from resp, draining and closing its
// body.
func NewStatusError(resp *http.Response) *StatusError {
	apiErr := netx.ReadAPIError(resp)
	return &StatusError{StatusCode: resp.StatusCode, Code: apiErr.Code, Message: apiErr.Message}
}

func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("api error %d: %s (%v)", e.StatusCode, msg, e.Cause)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, msg)
}

func (e *StatusError) Unwrap() []error {
	var errs []error
	if k := statusKind(e.StatusCode); k != nil {
		errs = append(errs, k)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

func statusKind(code int) error {
	switch {
	case code == http.StatusUnauthorized:
		return ErrUnauthorized
	case code == http.StatusForbidden:
		return common.ErrorUnauthorized
	case code == http.StatusNotFound:
		return common.ErrorNotFound
	case code == http.StatusConflict:
		return common.ErrorAlreadyExists
	case code == http.StatusBadRequest, code == http.StatusUnprocessableEntity:
		return common.ErrorValidation
	case code == http.StatusBadGateway, code == http.StatusServiceUnavailable, code == http.StatusGatewayTimeout:
		return ErrUnavailable
	case code >= 500:
		return common.ErrorInternal
	default:
		return nil
	}
}
