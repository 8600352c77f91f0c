// Package localstore is a local storage facade over a kv.Backend: JSON
// (de)serialization, expiring entries and status-tagged outcomes.
//
// Failures are reported in two ways. Write and WriteWithExpiry return an
// error; every other operation returns an Outcome whose Value carries a
// short message (see the Msg* constants) and never returns an error.
//
// # Validation
//
// Write, Read, Delete and Update require a string key. Has,
// WriteWithExpiry and ReadWithExpiry accept any key and look it up by its
// string form.
//
// # Concurrency
//
// A Store adds no locking. Delete (read, remove, verify) and Update (read,
// write, read) are not atomic: another writer sharing the backend can
// change the key between steps and the Store will neither detect nor
// resolve it.
//
// # Expiry envelopes
//
// WriteWithExpiry stores {"value": ..., "expiresAt": <epoch ms>}. A value
// of the same shape written with Write is indistinguishable from an
// envelope, and ReadWithExpiry and CleanExpired treat it as one.
// CleanExpired is never scheduled by the Store itself.
package localstore
