package sharepoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError represents an error returned by the SharePoint REST API.
type APIError struct {
	StatusCode int    `json:"status_code" yaml:"status_code"`
	Code       string `json:"code"        yaml:"code"`
	Message    string `json:"message"     yaml:"message"`
	RequestID  string `json:"request_id"  yaml:"request_id"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (status: %d)", e.Code, e.Message, e.StatusCode)
	}

	return fmt.Sprintf("%s (status: %d)", e.Message, e.StatusCode)
}

// Is reports whether target is an APIError with the same status code, so
// errors.Is matches any produced APIError against the exported error
// classes regardless of the SharePoint-assigned error code.
func (e *APIError) Is(target error) bool {
	other, ok := target.(*APIError)
	if !ok {
		return false
	}

	return e.StatusCode == other.StatusCode
}

// odataError is the "odata.error" / "error" envelope SharePoint returns.
// Both verbose and minimal metadata shapes are accepted.
type odataError struct {
	Code    string `json:"code"`
	Message struct {
		Lang  string `json:"lang"`
		Value string `json:"value"`
	} `json:"message"`
}

type errorEnvelope struct {
	ODataError *odataError `json:"odata.error"`
	Error      *odataError `json:"error"`
}

// Common error classes used for classification with errors.Is.
var (
	ErrNotFound           = &APIError{StatusCode: http.StatusNotFound, Code: "SPO-ResourceNotFound"}
	ErrUnauthorized       = &APIError{StatusCode: http.StatusUnauthorized, Code: "SPO-NotAuthenticated"}
	ErrForbidden          = &APIError{StatusCode: http.StatusForbidden, Code: "SPO-AccessDenied"}
	ErrValidation         = &APIError{StatusCode: http.StatusBadRequest, Code: "SPO-InvalidField"}
	ErrThrottled          = &APIError{StatusCode: http.StatusTooManyRequests, Code: "SPO-Throttled"}
	ErrServiceUnavailable = &APIError{StatusCode: http.StatusServiceUnavailable, Code: "SPO-ServiceUnavailable"}
)

// Static errors that can be wrapped with context.
var (
	ErrConfigRequired           = errors.New("config is required")
	ErrSiteURLRequired          = errors.New("site URL is required")
	ErrInvalidSiteURL           = errors.New("invalid site URL")
	ErrNoHostInURL              = errors.New("no host specified in URL")
	ErrListNameRequired         = errors.New("list name is required")
	ErrFileNameRequired         = errors.New("file name is required")
	ErrFolderPathRequired       = errors.New("folder path is required")
	ErrItemNotFound             = errors.New("item not found in list")
	ErrUserNotFound             = errors.New("site user not found")
	ErrStaticTokenCannotRefresh = errors.New("static token cannot be refreshed")
	ErrNoTokenManagerConfigured = errors.New("no token manager configured")
	ErrNoMoreItems              = errors.New("no more items")
	ErrFieldNotInSchema         = errors.New("field not present in list schema")
	ErrFieldTypeMismatch        = errors.New("field value does not match schema type")
	ErrReadOnlyField            = errors.New("field is read-only")
	ErrRequiredFieldMissing     = errors.New("required field missing")
	ErrUnknownFieldType         = errors.New("unknown field type")
	ErrEmptyFilterExpression    = errors.New("filter expression is empty")
	ErrProvisionTitleRequired   = errors.New("list definition requires a title")
	ErrSkipTLSOnlyInDev         = errors.New("skipTLS is only allowed in development environments")
)

// NewAPIError builds an APIError from a response body and status code.
// SharePoint wraps errors in either an "odata.error" or "error" envelope;
// a body that is not such an envelope is used verbatim as the message.
func NewAPIError(statusCode int, body []byte, requestID string) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Message:    http.StatusText(statusCode),
		RequestID:  requestID,
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil {
		inner := envelope.ODataError
		if inner == nil {
			inner = envelope.Error
		}

		if inner != nil {
			apiErr.Code = inner.Code
			if inner.Message.Value != "" {
				apiErr.Message = inner.Message.Value
			}
		}
	}

	return apiErr
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized checks if the error is an authentication error.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsForbidden checks if the error is an authorization error.
func IsForbidden(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

// IsValidation checks if the error is a field or schema rejection.
func IsValidation(err error) bool {
	if hasStatus(err, http.StatusBadRequest) || hasStatus(err, http.StatusUnprocessableEntity) {
		return true
	}

	return errors.Is(err, ErrFieldNotInSchema) ||
		errors.Is(err, ErrFieldTypeMismatch) ||
		errors.Is(err, ErrReadOnlyField) ||
		errors.Is(err, ErrRequiredFieldMissing)
}

// IsThrottled checks if the error is a SharePoint throttling response.
func IsThrottled(err error) bool {
	return hasStatus(err, http.StatusTooManyRequests)
}

// IsRemoteServiceError checks if the error is a transport or service failure.
func IsRemoteServiceError(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError
	}

	return false
}

func hasStatus(err error, statusCode int) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == statusCode
	}

	return false
}
