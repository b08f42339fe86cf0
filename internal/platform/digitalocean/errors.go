package digitalocean

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/digitalocean/godo"
)

// RequestError is a failed DigitalOcean API call.
type RequestError struct {
	Op         string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("failed to %s (HTTP %d): %v", e.Op, e.StatusCode, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

func newRequestError(op string, resp *godo.Response, err error) *RequestError {
	re := &RequestError{Op: op, Err: err}
	switch {
	case resp != nil && resp.Response != nil:
		re.StatusCode = resp.StatusCode
	default:
		var apiErr *godo.ErrorResponse
		if errors.As(err, &apiErr) && apiErr.Response != nil {
			re.StatusCode = apiErr.Response.StatusCode
		}
	}
	return re
}

// statusCode returns the HTTP status of a failed request, or 0.
func statusCode(err error) int {
	var re *RequestError
	if errors.As(err, &re) {
		return re.StatusCode
	}
	var apiErr *godo.ErrorResponse
	if errors.As(err, &apiErr) && apiErr.Response != nil {
		return apiErr.Response.StatusCode
	}
	return 0
}

// IsUnprocessable reports a 422 answer. DigitalOcean uses it for a key
// whose material is already registered.
func IsUnprocessable(err error) bool {
	return statusCode(err) == http.StatusUnprocessableEntity
}

// IsNotFound checks if an error indicates a resource was not found.
func IsNotFound(err error) bool {
	return statusCode(err) == http.StatusNotFound
}

// IsUnauthorized reports a rejected API token.
func IsUnauthorized(err error) bool {
	return statusCode(err) == http.StatusUnauthorized
}

// IsRateLimited checks if an error indicates rate limiting.
func IsRateLimited(err error) bool {
	return statusCode(err) == http.StatusTooManyRequests
}
