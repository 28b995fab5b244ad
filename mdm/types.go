package mdm

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// ErrNotFound - a lookup matched no object
var ErrNotFound = errors.New("object not found")

// ServiceError is a non-2xx Graph response. Message carries the service's
// own text so it can be recorded verbatim.
type ServiceError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return fmt.Sprintf("%s (status %d)", e.Code, e.StatusCode)
	}
	return fmt.Sprintf("unexpected status code %d", e.StatusCode)
}

// IsAccessDenied is true for 401/403 responses
func (e *ServiceError) IsAccessDenied() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// graphErrorBody is the error envelope Graph returns
type graphErrorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newServiceError(statusCode int, body []byte) *ServiceError {
	svcErr := &ServiceError{StatusCode: statusCode}
	var envelope graphErrorBody
	if err := json.Unmarshal(body, &envelope); err == nil {
		svcErr.Code = envelope.Error.Code
		svcErr.Message = envelope.Error.Message
	}
	return svcErr
}

// AsServiceError unwraps err to a *ServiceError when it is one
func AsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr, true
	}
	return nil, false
}

// listPage is one page of a Graph collection
type listPage[T any] struct {
	Count    int    `json:"@odata.count,omitempty"`
	NextLink string `json:"@odata.nextLink,omitempty"`
	Value    []T    `json:"value"`
}

// renameRequest is the PATCH body for a group rename
type renameRequest struct {
	DisplayName string `json:"displayName"`
}
