package basecamp

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Fehlerarten. Jeder *APIError entpackt zu genau einer davon, prüfen mit errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrValidationFailed = errors.New("validation failed")
	ErrRateLimited      = errors.New("rate limited")
	ErrServerError      = errors.New("server error")
	ErrUnexpectedStatus = errors.New("unexpected status")

	// ErrInvalidArgument kommt, bevor überhaupt ein Request gesendet wird.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrForeignPageLink: ein Link Header zeigt auf einen fremden Host.
	ErrForeignPageLink = errors.New("pagination link to foreign host")
)

const maxErrorBody = 4096

// APIError ist eine Antwort des Servers außerhalb von 2xx.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Body       string
	RetryAfter time.Duration // nur bei 429 gesetzt

	kind error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s failed %d", e.Method, e.Path, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.kind
}

func kindForStatus(code int) error {
	switch {
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ErrPermissionDenied
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity:
		return ErrValidationFailed
	case code == http.StatusTooManyRequests:
		return ErrRateLimited
	case code >= 500:
		return ErrServerError
	default:
		return ErrUnexpectedStatus
	}
}

func newAPIError(resp *http.Response, method, path string, now time.Time) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Method:     method,
		Path:       path,
		Body:       strings.TrimSpace(string(body)),
		kind:       kindForStatus(resp.StatusCode),
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		apiErr.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"), now)
	}
	return apiErr
}

// parseRetryAfter versteht Sekunden und HTTP-Datum.
func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
