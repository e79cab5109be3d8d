package auth0

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx response from the Auth0 management API. The body is
// carried verbatim so the operator sees exactly what the tenant said.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("auth0 management API error: status %d: %s", e.Status, strings.TrimSpace(e.Body))
}

// IsConflict reports whether err is the management API telling us the
// resource already exists. Grant creation races resolve this way.
func IsConflict(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusConflict ||
		strings.Contains(strings.ToLower(apiErr.Body), "already exists")
}

// IsUnauthorized reports whether err indicates an invalid or expired
// management token.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}
