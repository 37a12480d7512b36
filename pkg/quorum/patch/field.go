// Package patch tracks which fields of a JSON update body were present.
//
// A Field distinguishes three states that plain pointers cannot:
// absent (leave unchanged), explicit null (clear) and a value (set).
package patch

import (
	"bytes"
	"encoding/json"
)

var null = []byte("null")

// Field is one member of a partial-update request body.
type Field[T any] struct {
	Present bool
	Null    bool
	Value   T
}

// Set returns a Field holding v.
func Set[T any](v T) Field[T] {
	return Field[T]{Present: true, Value: v}
}

// Clear returns a Field that was sent as explicit null.
func Clear[T any]() Field[T] {
	return Field[T]{Present: true, Null: true}
}

// UnmarshalJSON is only called by encoding/json when the key is in the
// object, so reaching it means the field is present.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Present = true
	if bytes.Equal(bytes.TrimSpace(data), null) {
		f.Null = true
		var zero T
		f.Value = zero
		return nil
	}
	f.Null = false
	return json.Unmarshal(data, &f.Value)
}

// MarshalJSON writes null for absent or cleared fields.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Present || f.Null {
		return null, nil
	}
	return json.Marshal(f.Value)
}

// HasValue reports whether the field was sent with a non-null value.
func (f Field[T]) HasValue() bool {
	return f.Present && !f.Null
}

// Ptr returns nil when the field is null, otherwise a pointer to a copy of
// the value. It is meant for nullable columns after Present was checked.
func (f Field[T]) Ptr() *T {
	if f.Null {
		return nil
	}
	v := f.Value
	return &v
}
