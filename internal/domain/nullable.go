package domain

import (
	"bytes"
	"encoding/json"
)

// Nullable distinguishes a JSON field that was omitted from one explicitly
// set to null. Set is true whenever the key was present in the payload;
// Value is nil when that value was null.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// NullableOf returns a Nullable holding v.
func NullableOf[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

// Null returns a Nullable explicitly set to null.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

// UnmarshalJSON implements json.Unmarshaler. It is only invoked when the key
// is present, which is what marks the field as set.
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// MarshalJSON implements json.Marshaler.
func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// IsNull reports whether the field was present and null.
func (n Nullable[T]) IsNull() bool {
	return n.Set && n.Value == nil
}
