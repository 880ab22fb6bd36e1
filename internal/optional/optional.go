// Package optional contains a safer alternative to pointers for
// representing values that may be missing.
package optional

import (
	"bytes"
	"encoding/json"
	"reflect"
)

// Value is an optional value. The zero value is an empty Value.
type Value[Type any] struct {
	indirect *Type
}

// None constructs an empty value.
func None[Type any]() Value[Type] {
	return Value[Type]{nil}
}

// Some constructs a some value unless T is a pointer and points to
// nil, in which case [Some] is equivalent to [None].
func Some[Type any](value Type) Value[Type] {
	v := Value[Type]{}
	if !isNil(value) {
		v.indirect = &value
	}
	return v
}

func isNil[Type any](value Type) bool {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() {
		return true
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

// MarshalJSON implements json.Marshaler. An empty value serializes
// to `null` and otherwise we serialize the underlying value.
func (v Value[Type]) MarshalJSON() ([]byte, error) {
	if v.indirect == nil {
		return json.Marshal(nil)
	}
	return json.Marshal(*v.indirect)
}

// UnmarshalJSON implements json.Unmarshaler. The `null` input
// produces an empty value.
func (v *Value[Type]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		v.indirect = nil
		return nil
	}
	var value Type
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*v = Some(value)
	return nil
}

// IsNone returns whether this [Value] is empty.
func (v Value[Type]) IsNone() bool {
	return v.indirect == nil
}

// Unwrap returns the underlying value or panics. In case of
// panic, the value passed to panic is an error.
func (v Value[Type]) Unwrap() Type {
	if v.indirect == nil {
		panic(ErrEmptyValue)
	}
	return *v.indirect
}

// UnwrapOr returns the underlying value or the given default.
func (v Value[Type]) UnwrapOr(fallback Type) Type {
	if v.indirect == nil {
		return fallback
	}
	return *v.indirect
}

// Or returns v when it is not empty and other otherwise.
func (v Value[Type]) Or(other Value[Type]) Value[Type] {
	if v.indirect == nil {
		return other
	}
	return v
}

// Equal tells whether two values are both empty or wrap deeply
// equal values. The go-cmp package uses this method.
func (v Value[Type]) Equal(other Value[Type]) bool {
	if v.indirect == nil || other.indirect == nil {
		return v.indirect == other.indirect
	}
	return reflect.DeepEqual(*v.indirect, *other.indirect)
}
