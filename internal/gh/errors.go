package gh

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/google/go-github/v63/github"
)

// ConfigurationError signals missing setup (token, repository, secret).
// The user must fix configuration; the action is never retried.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// Configurationf builds a ConfigurationError
func Configurationf(format string, args ...interface{}) error {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

// StateError signals a local invariant violation (duplicate link,
// missing selection). It is raised before any remote call is made.
type StateError struct {
	Message string
}

func (e *StateError) Error() string {
	return e.Message
}

// Statef builds a StateError
func Statef(format string, args ...interface{}) error {
	return &StateError{Message: fmt.Sprintf(format, args...)}
}

// RemoteRejectionError carries a non-success HTTP status from GitHub
// together with the remote-reported message when one was present.
type RemoteRejectionError struct {
	StatusCode int
	Message    string
	cause      error
}

func (e *RemoteRejectionError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("GitHub rejected the request (HTTP %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("GitHub rejected the request (HTTP %d)", e.StatusCode)
}

func (e *RemoteRejectionError) Unwrap() error {
	return e.cause
}

// ConnectivityError covers transport-level failures: timeout, DNS,
// connection reset. Surfaced as a generic message, never auto-retried.
type ConnectivityError struct {
	cause error
}

func (e *ConnectivityError) Error() string {
	return "failed to connect to GitHub: check your internet connection"
}

func (e *ConnectivityError) Unwrap() error {
	return e.cause
}

// wrapRemote classifies an error returned by a go-github call into the
// error taxonomy. nil passes through.
func wrapRemote(err error) error {
	if err == nil {
		return nil
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return &RemoteRejectionError{
			StatusCode: 403,
			Message:    "API rate limit exceeded",
			cause:      err,
		}
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return &RemoteRejectionError{
			StatusCode: 403,
			Message:    "secondary rate limit exceeded",
			cause:      err,
		}
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) {
		status := 0
		if respErr.Response != nil {
			status = respErr.Response.StatusCode
		}
		return &RemoteRejectionError{
			StatusCode: status,
			Message:    respErr.Message,
			cause:      err,
		}
	}

	if isTransportError(err) {
		return &ConnectivityError{cause: err}
	}

	return err
}

// isTransportError reports whether the error happened below HTTP:
// timeouts, DNS failures, resets.
func isTransportError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// errorStatus extracts the HTTP status from a classified error,
// or 0 when there is none.
func errorStatus(err error) int {
	var rejection *RemoteRejectionError
	if errors.As(err, &rejection) {
		return rejection.StatusCode
	}
	return 0
}

// IsNotFound reports whether the error is a remote 404. Several
// delete flows treat 404 as success.
func IsNotFound(err error) bool {
	return errorStatus(err) == 404
}
