package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrRateLimited marks a transient rejection by the upstream model (HTTP 429).
	ErrRateLimited = errors.New("llm rate limited")
	// ErrQuotaExceeded marks a rate-limit rejection caused by an exhausted account quota.
	ErrQuotaExceeded = errors.New("llm quota exceeded")
	// ErrUnauthorized marks a rejected or missing API credential.
	ErrUnauthorized = errors.New("llm credential rejected")
)

// StatusError is a non-2xx answer from a model endpoint.
// It matches ErrRateLimited, ErrQuotaExceeded and ErrUnauthorized through errors.Is.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad status %d: %s", e.StatusCode, e.Body)
}

// Is classifies the status for errors.Is.
func (e *StatusError) Is(target error) bool {
	body := strings.ToLower(e.Body)
	switch target {
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	case ErrQuotaExceeded:
		return e.StatusCode == http.StatusTooManyRequests &&
			(strings.Contains(body, "quota") || strings.Contains(body, "resource_exhausted"))
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized ||
			e.StatusCode == http.StatusForbidden ||
			strings.Contains(body, "api key")
	}
	return false
}

// IsRateLimited reports whether err is a transient rate-limit failure worth retrying.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
