package helpdesk

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIErrorJSON(t *testing.T) {
	tests := []struct {
		name string
		body []byte
		want any
	}{
		{name: "empty body", body: []byte(""), want: nil},
		{name: "invalid json", body: []byte("<html>bad gateway</html>"), want: nil},
		{name: "json array", body: []byte(`[1,2]`), want: []any{float64(1), float64(2)}},
		{name: "json string", body: []byte(`"oops"`), want: "oops"},
		{name: "json number", body: []byte(`502`), want: float64(502)},
		{name: "json object", body: []byte(`{"a":1}`), want: map[string]any{"a": float64(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewAPIError(http.StatusBadRequest, tt.body)
			assert.Equal(t, tt.want, err.JSON())
			// parsed once, same result afterwards
			assert.Equal(t, tt.want, err.JSON())
		})
	}
}

func TestAPIErrorError(t *testing.T) {
	err := NewAPIError(http.StatusInternalServerError, []byte(`{"oops":true}`))
	assert.Equal(t, `helpdesk API error: HTTP CODE: 500, RESPONSE DATA: {"oops":true}`, err.Error())
}

func TestAPIErrorStatus(t *testing.T) {
	tests := []struct {
		name        string
		statusCode  int
		body        string
		wantMessage string
		wantStatus  bool
	}{
		{
			name:       "object status",
			statusCode: http.StatusBadRequest,
			body: `{"response_status":{"status_code":4000,"status":"failed",
				"messages":[{"status_code":4012,"type":"failed","field":"subject","message":"Value is mandatory"}]}}`,
			wantMessage: "Value is mandatory",
			wantStatus:  true,
		},
		{
			name:       "array status from list endpoints",
			statusCode: http.StatusBadRequest,
			body: `{"response_status":[{"status_code":4000,"status":"failed",
				"messages":[{"status_code":4001,"message":"Invalid input"}]}]}`,
			wantMessage: "Invalid input",
			wantStatus:  true,
		},
		{
			name:        "no status falls back to status text",
			statusCode:  http.StatusBadGateway,
			body:        `upstream unavailable`,
			wantMessage: "Bad Gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewAPIError(tt.statusCode, []byte(tt.body))
			assert.Equal(t, tt.wantMessage, err.Message())
			if tt.wantStatus {
				require.NotNil(t, err.Status())
				assert.Equal(t, "failed", err.Status().Status)
			} else {
				assert.Nil(t, err.Status())
			}
		})
	}
}

func TestAPIErrorClassification(t *testing.T) {
	tests := []struct {
		status       int
		notFound     bool
		unauthorized bool
		conflict     bool
	}{
		{status: http.StatusNotFound, notFound: true},
		{status: http.StatusUnauthorized, unauthorized: true},
		{status: http.StatusForbidden, unauthorized: true},
		{status: http.StatusConflict, conflict: true},
		{status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := NewAPIError(tt.status, nil)
			assert.Equal(t, tt.notFound, err.IsNotFound())
			assert.Equal(t, tt.unauthorized, err.IsUnauthorized())
			assert.Equal(t, tt.conflict, err.IsConflict())
		})
	}
}

func TestAsAPIError(t *testing.T) {
	wrapped := fmt.Errorf("listing: %w", NewAPIError(http.StatusTeapot, nil))

	apiErr, ok := AsAPIError(wrapped)
	require.True(t, ok)
	assert.Equal(t, http.StatusTeapot, apiErr.StatusCode)

	_, ok = AsAPIError(errors.New("plain"))
	assert.False(t, ok)
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Op: "update ticket", Reason: ErrEmptyUpdate.Error(), Err: ErrEmptyUpdate}
	assert.Equal(t, "update ticket: validation failed: got payload with empty values", err.Error())
	assert.ErrorIs(t, err, ErrEmptyUpdate)
}
