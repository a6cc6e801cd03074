package llm

import (
	"errors"

	"github.com/nationwide-haul/call-tracker/internal/resilience"
)

// classify tags a vendor error with its HTTP status so the retry and breaker
// layers can act on it.
func classify(err error, code int, hasCode bool) error {
	if !hasCode {
		return err
	}
	if resilience.IsTransientHTTPStatus(code) {
		return resilience.NewTransientError(err, code)
	}
	return &StatusError{Err: err, StatusCode: code}
}

// IsAuthError reports whether err is a rejected credential.
func IsAuthError(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && resilience.IsAuthStatus(se.StatusCode)
}

// shouldTrip counts failures that will repeat on the next call with the
// same credential. Malformed prompts and parse failures do not trip.
func shouldTrip(err error) bool {
	return resilience.IsTransient(err) || IsAuthError(err)
}
