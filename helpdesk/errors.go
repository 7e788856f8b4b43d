package helpdesk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid helpdesk configuration")
	// ErrEmptyUpdate indicates an update payload with no fields set
	ErrEmptyUpdate = errors.New("got payload with empty values")
	// ErrMissingTotalCount indicates list_info carried no total_count
	ErrMissingTotalCount = errors.New("total_count is not present in list_info")
	// ErrMissingPage indicates list_info carried neither page nor page_number
	ErrMissingPage = errors.New("page is not present in list_info")
)

// APIError is returned for every non-2xx response that is not an expected
// 404 on a single-entity lookup.
type APIError struct {
	StatusCode int
	Body       string

	parseOnce sync.Once
	parsed    any
}

// NewAPIError builds an APIError from a failed response.
func NewAPIError(statusCode int, body []byte) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Body:       string(body),
	}
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("helpdesk API error: HTTP CODE: %d, RESPONSE DATA: %s", e.StatusCode, e.Body)
}

// JSON returns the body parsed as any JSON value (object, array, string,
// number or bool). It is nil when the body is empty or does not parse; a
// parse failure never surfaces as an error.
func (e *APIError) JSON() any {
	e.parseOnce.Do(func() {
		if e.Body == "" {
			return
		}
		var parsed any
		if err := json.Unmarshal([]byte(e.Body), &parsed); err != nil {
			return
		}
		e.parsed = parsed
	})
	return e.parsed
}

// Status returns the provider's response_status block, if the body has one.
// List endpoints send it as a one-element array.
func (e *APIError) Status() *ResponseStatus {
	var envelope struct {
		ResponseStatus json.RawMessage `json:"response_status"`
	}
	if err := json.Unmarshal([]byte(e.Body), &envelope); err != nil || len(envelope.ResponseStatus) == 0 {
		return nil
	}

	var status ResponseStatus
	if err := json.Unmarshal(envelope.ResponseStatus, &status); err == nil {
		return &status
	}
	var statuses []ResponseStatus
	if err := json.Unmarshal(envelope.ResponseStatus, &statuses); err == nil && len(statuses) > 0 {
		return &statuses[0]
	}
	return nil
}

// Message returns the first provider message, or the HTTP status text.
func (e *APIError) Message() string {
	if status := e.Status(); status != nil {
		for _, m := range status.Messages {
			if m.Message != "" {
				return m.Message
			}
		}
	}
	return http.StatusText(e.StatusCode)
}

// IsNotFound checks if the error indicates a not found response
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsConflict checks if the upstream rejected the change as conflicting
func (e *APIError) IsConflict() bool {
	return e.StatusCode == http.StatusConflict
}

// ResponseStatus is the status block the v3 API attaches to its responses.
type ResponseStatus struct {
	StatusCode int             `json:"status_code"`
	Status     string          `json:"status"`
	Messages   []StatusMessage `json:"messages,omitempty"`
}

// StatusMessage is a single entry of ResponseStatus.Messages.
type StatusMessage struct {
	StatusCode int    `json:"status_code"`
	Type       string `json:"type,omitempty"`
	Field      string `json:"field,omitempty"`
	Message    string `json:"message,omitempty"`
}

// ValidationError indicates a payload or response that failed schema checks.
// Local validation failures are raised before any request is sent.
type ValidationError struct {
	Op     string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: validation failed: %s", e.Op, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// AsAPIError unwraps err into an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// raiseForStatus turns a non-2xx response into an *APIError.
func raiseForStatus(resp *Response) error {
	if resp.IsSuccess() {
		return nil
	}
	return NewAPIError(resp.StatusCode, resp.Body)
}
