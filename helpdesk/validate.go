package helpdesk

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var schemaValidator = validator.New(validator.WithRequiredStructEnabled())

// decodeSchema unmarshals body into a T and checks its required fields.
func decodeSchema[T any](op string, body []byte) (*T, error) {
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			return nil, &ValidationError{Op: op, Reason: vErr.Reason, Err: err}
		}
		return nil, fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	if err := schemaValidator.Struct(&out); err != nil {
		return nil, &ValidationError{Op: op, Reason: err.Error(), Err: err}
	}
	return &out, nil
}
