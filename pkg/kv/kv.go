package kv

import "errors"

// ErrQuotaExceeded is returned by backends that enforce a capacity limit
// when a Set would grow the stored data past it.
var ErrQuotaExceeded = errors.New("kv: quota exceeded")

// Backend defines the string-keyed, string-valued store the local storage
// facade is built on. Implementations can be swapped out, allowing for
// different storage engines (in-memory, bbolt, SQLite, Redis, Raft-replicated).
//
// Implementations must be safe for concurrent use by multiple goroutines.
type Backend interface {
	// Get retrieves the raw value associated with the given key.
	// Returns the value and true if the key exists, or empty string and false if not.
	Get(key string) (string, bool, error)

	// Set stores a key-value pair, replacing any previous value.
	Set(key, value string) error

	// Delete removes a key from the store.
	// Deleting a missing key is not an error.
	Delete(key string) error

	// Clear removes every key from the store.
	Clear() error

	// Len reports the number of stored keys.
	Len() (int, error)

	// Keys returns a snapshot of all stored keys.
	Keys() ([]string, error)
}
