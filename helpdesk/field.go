package helpdesk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

var jsonNull = []byte("null")

// Field is an optional payload value with three states: unset, explicit null
// and set. The zero Field is unset; struct fields tagged `omitzero` drop it
// from the encoded document entirely, while a Field built with Null encodes
// as JSON null. The upstream API treats the two cases differently.
type Field[T any] struct {
	value T
	set   bool
	null  bool
}

// Set returns a Field holding v.
func Set[T any](v T) Field[T] {
	return Field[T]{value: v, set: true}
}

// Null returns a Field that is explicitly null.
func Null[T any]() Field[T] {
	return Field[T]{set: true, null: true}
}

// IsZero reports whether the field was never set. encoding/json consults it
// for `omitzero`.
func (f Field[T]) IsZero() bool {
	return !f.set
}

// IsSet reports whether the field was provided, including as null.
func (f Field[T]) IsSet() bool {
	return f.set
}

// IsNull reports whether the field was provided as an explicit null.
func (f Field[T]) IsNull() bool {
	return f.set && f.null
}

// Get returns the value and whether a non-null value is present.
func (f Field[T]) Get() (T, bool) {
	return f.value, f.set && !f.null
}

// OrElse returns the value, or def when the field is unset or null.
func (f Field[T]) OrElse(def T) T {
	if v, ok := f.Get(); ok {
		return v
	}
	return def
}

// MarshalJSON implements json.Marshaler
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.set || f.null {
		return jsonNull, nil
	}
	return json.Marshal(f.value)
}

// UnmarshalJSON implements json.Unmarshaler. A present key always marks the
// field as set; a literal null marks it null.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		*f = Null[T]()
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Set(v)
	return nil
}

func (f Field[T]) String() string {
	switch {
	case !f.set:
		return "<unset>"
	case f.null:
		return "<null>"
	default:
		return fmt.Sprint(f.value)
	}
}

// ID identifies a helpdesk entity. The v3 API renders identifiers as strings;
// decoding accepts both strings and numbers, encoding always writes a number.
type ID int64

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// UnmarshalJSON implements json.Unmarshaler
func (id *ID) UnmarshalJSON(data []byte) error {
	n, err := decodeFlexInt(data)
	if err != nil {
		return fmt.Errorf("invalid id: %w", err)
	}
	*id = ID(n)
	return nil
}

// ParseID parses a decimal identifier, as given on a command line.
func ParseID(s string) (ID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return ID(n), nil
}

// decodeFlexInt reads an integer that may be quoted.
func decodeFlexInt(data []byte) (int64, error) {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, jsonNull) {
		return 0, nil
	}

	text := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			return 0, err
		}
	}
	if text == "" {
		return 0, fmt.Errorf("empty integer value")
	}
	return strconv.ParseInt(text, 10, 64)
}

// JSONText carries a value that travels as a JSON document embedded inside a
// JSON string, e.g. `"search_fields": "{\"name\":\"VPN\"}"`. The zero JSONText
// is unset and is dropped by `omitzero`.
type JSONText[T any] struct {
	value T
	set   bool
}

// Embed returns a JSONText wrapping v.
func Embed[T any](v T) JSONText[T] {
	return JSONText[T]{value: v, set: true}
}

// IsZero reports whether no value was embedded.
func (t JSONText[T]) IsZero() bool {
	return !t.set
}

// Value returns the embedded value and whether one was set.
func (t JSONText[T]) Value() (T, bool) {
	return t.value, t.set
}

// MarshalJSON implements json.Marshaler
func (t JSONText[T]) MarshalJSON() ([]byte, error) {
	if !t.set {
		return jsonNull, nil
	}
	inner, err := json.Marshal(t.value)
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(inner))
}

// UnmarshalJSON implements json.Unmarshaler. Both the string-embedded form
// and a plain JSON object are accepted.
func (t *JSONText[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, jsonNull) {
		*t = JSONText[T]{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		data = []byte(text)
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*t = Embed(v)
	return nil
}
