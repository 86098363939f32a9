package n8n

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnavailable means n8n could not be reached at all.
	ErrUnavailable = errors.New("n8n is unavailable")
	// ErrAuthFailed means n8n rejected the API key.
	ErrAuthFailed = errors.New("n8n authentication failed")
	// ErrNotFound means the addressed workflow or execution does not exist.
	ErrNotFound = errors.New("n8n resource not found")
	// ErrWebhookNotAvailable means neither the production nor the test webhook accepted the call.
	ErrWebhookNotAvailable = errors.New("n8n webhook not available")
)

// APIError is any other non-success answer from n8n.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return "n8n API error: " + e.Message
}

// classify maps an n8n error response onto the package's error taxonomy.
func classify(op string, statusCode int, message string) error {
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return fmt.Errorf("%s: %w", op, ErrAuthFailed)
	case statusCode == http.StatusNotFound:
		return fmt.Errorf("%w during %s", ErrNotFound, op)
	}

	if statusCode < 400 || statusCode > 599 {
		statusCode = http.StatusInternalServerError
	}

	if message == "" {
		message = http.StatusText(statusCode)
	}

	return &APIError{Op: op, StatusCode: statusCode, Message: message}
}

// IsAuthError reports whether err is an n8n authentication failure.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrAuthFailed)
}

// IsNotFound reports whether err is an n8n 404.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StatusCode returns the HTTP status carried by err, or 0 when it has none.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrAuthFailed):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	}

	return 0
}
