package optional

import "errors"

// ErrEmptyValue is the error passed to panic when calling
// Unwrap on an empty [Value].
var ErrEmptyValue = errors.New("optional: empty value")
