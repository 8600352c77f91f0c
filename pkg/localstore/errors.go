package localstore

import "errors"

// ErrInvalidKey is returned by Write when the key is not a string.
var ErrInvalidKey = errors.New(MsgKeyNotString)

// SerializationError reports a value Write could not encode as JSON.
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string {
	return "Failed to serialize object for localStorage"
}

func (e *SerializationError) Unwrap() error { return e.Err }

// BackendError reports a failed backend write.
type BackendError struct {
	Op  string
	Key string
	Err error
}

func (e *BackendError) Error() string {
	return "backend " + e.Op + " " + e.Key + ": " + e.Err.Error()
}

func (e *BackendError) Unwrap() error { return e.Err }
