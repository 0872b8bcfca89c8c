package cloudsave

import (
	"fmt"
	"strings"
)

// ServiceError is an application-level error reason returned by the save
// service in a {"success": false, "error": ...} body.
type ServiceError struct {
	StatusCode int    `json:"-"`
	Reason     string `json:"error"`
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("cloudsave: %s (HTTP %d)", e.Reason, e.StatusCode)
}

// Known error reasons from the save service.
const (
	reasonMissingFields      = "required"
	reasonInvalidObject      = "valid JSON object"
	reasonTooLarge           = "too large"
	reasonBackendUnavailable = "connection"
)

// IsMissingFields reports a request missing deviceId or saveData.
func (e *ServiceError) IsMissingFields() bool {
	return strings.Contains(e.Reason, reasonMissingFields)
}

// IsInvalidObject reports a saveData payload that was not a JSON object.
func (e *ServiceError) IsInvalidObject() bool {
	return strings.Contains(e.Reason, reasonInvalidObject)
}

// IsTooLarge reports a save payload over the service size cap.
func (e *ServiceError) IsTooLarge() bool {
	return strings.Contains(e.Reason, reasonTooLarge) || e.StatusCode == 413
}

// IsBackendUnavailable reports a transient storage failure behind the
// service.
func (e *ServiceError) IsBackendUnavailable() bool {
	return strings.Contains(e.Reason, reasonBackendUnavailable) || e.StatusCode == 503
}

// IsRetryable reports whether the request can be retried as-is.
func (e *ServiceError) IsRetryable() bool {
	return e.IsBackendUnavailable()
}

// HTTPError is a non-200 response without a decodable service error body.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("cloudsave: HTTP %d: %s", e.StatusCode, e.Body)
}

// IsRetryable is true for rate limits and server errors.
func (e *HTTPError) IsRetryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// AuthError indicates the stored credential was rejected.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("cloudsave: authentication failed (HTTP %d): %s", e.StatusCode, e.Message)
}
