package domain

import (
	"bytes"
	"encoding/json"
)

// Optional distinguishes "field omitted" from "field explicitly set", including an
// explicit null. It is used by partial updates where a JSON null clears a value and an
// absent key leaves it untouched.
type Optional[T any] struct {
	// Set is true when the field was present in the input.
	Set bool
	// Value is nil when the field was present but null.
	Value *T
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null returns an Optional that is set to null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// UnmarshalJSON is only invoked by encoding/json when the key is present.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}
