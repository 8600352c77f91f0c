package localstore

import (
	"encoding/json"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/heysubinoy/localkv/pkg/kv"
	"github.com/tidwall/gjson"
)

// Store is the local storage facade over a kv.Backend. It holds no state
// of its own between calls; every operation re-queries the backend.
type Store struct {
	backend kv.Backend
	now     func() time.Time
	logger  hclog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLogger sets the logger used for evictions and backend failures.
func WithLogger(logger hclog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New returns a Store over backend.
func New(backend kv.Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		now:     time.Now,
		logger:  hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Write stores value under key. Maps, slices, arrays and structs are
// stored as JSON; anything else by its string form.
func (s *Store) Write(key, value any) error {
	k, ok := key.(string)
	if !ok {
		return ErrInvalidKey
	}

	raw, err := encode(value)
	if err != nil {
		return err
	}
	if err := s.backend.Set(k, raw); err != nil {
		return &BackendError{Op: "set", Key: k, Err: err}
	}
	return nil
}

// Read returns the JSON-decoded value stored under key, or the raw string
// when it is not valid JSON.
func (s *Store) Read(key any) Outcome {
	k, ok := key.(string)
	if !ok {
		return failure(MsgInvalidKey)
	}

	raw, found, err := s.backend.Get(k)
	if err != nil {
		s.logger.Warn("backend get failed", "key", k, "error", err)
		return failure(MsgReadFailed)
	}
	if !found {
		return failure(MsgNotFound)
	}
	return success(decode(raw))
}

// Delete removes an existing key and verifies it is gone. Deleting a
// missing key reports the same outcome as reading it.
func (s *Store) Delete(key any) Outcome {
	k, ok := key.(string)
	if !ok {
		return failure(MsgInvalidKey)
	}

	if existing := s.Read(k); !existing.OK() {
		return existing
	}

	if err := s.backend.Delete(k); err != nil {
		s.logger.Warn("backend delete failed", "key", k, "error", err)
		return failure(MsgDeleteFailed)
	}

	_, found, err := s.backend.Get(k)
	if err != nil || found {
		s.logger.Warn("key still present after delete", "key", k, "error", err)
		return failure(MsgDeleteFailed)
	}

	return success(MsgRemoved)
}

// Clear wipes the whole backend.
func (s *Store) Clear() Outcome {
	if err := s.backend.Clear(); err != nil {
		s.logger.Warn("backend clear failed", "error", err)
		return failure(MsgWipeException)
	}

	n, err := s.backend.Len()
	if err != nil {
		s.logger.Warn("backend len failed", "error", err)
		return failure(MsgWipeException)
	}
	if n > 0 {
		return failure(MsgWipeFailed)
	}

	return success(MsgWiped)
}

// Update replaces the value of an existing key. It never creates a key,
// and any write failure is reported as MsgUpdateFailed.
func (s *Store) Update(key, value any) Outcome {
	k, ok := key.(string)
	if !ok {
		return failure(MsgKeyNotString)
	}

	if existing := s.Read(k); !existing.OK() {
		return existing
	}

	if err := s.Write(k, value); err != nil {
		s.logger.Debug("update write failed", "key", k, "error", err)
		return failure(MsgUpdateFailed)
	}

	if confirm := s.Read(k); !confirm.OK() {
		return confirm
	}

	return success(`Key "` + k + `" was updated`)
}

// Has reports whether the backend holds an entry for key. The key is not
// validated; non-string keys are looked up by their string form.
func (s *Store) Has(key any) bool {
	k := stringify(key)
	_, found, err := s.backend.Get(k)
	if err != nil {
		s.logger.Warn("backend get failed", "key", k, "error", err)
		return false
	}
	return found
}

// WriteWithExpiry stores value wrapped in a {value, expiresAt} envelope
// expiring ttl from now. The key is not validated and a negative ttl
// yields an already expired entry.
func (s *Store) WriteWithExpiry(key, value any, ttl time.Duration) error {
	payload, err := json.Marshal(envelope{
		Value:     value,
		ExpiresAt: s.now().Add(ttl).UnixMilli(),
	})
	if err != nil {
		return err
	}
	return s.backend.Set(stringify(key), string(payload))
}

// ReadWithExpiry returns the value of an envelope written by
// WriteWithExpiry, evicting it when it has expired.
func (s *Store) ReadWithExpiry(key any) Outcome {
	k := stringify(key)

	raw, found, err := s.backend.Get(k)
	if err != nil {
		s.logger.Warn("backend get failed", "key", k, "error", err)
		return failure(MsgReadFailed)
	}
	if !found || raw == "" {
		return failure(MsgExpiryNotFound)
	}

	if !gjson.Valid(raw) {
		return failure(MsgInvalidFormat)
	}
	parsed := gjson.Parse(raw)
	if parsed.Type == gjson.Null {
		return failure(MsgInvalidFormat)
	}

	if pastDeadline(parsed.Get("expiresAt"), s.now().UnixMilli()) {
		if err := s.backend.Delete(k); err != nil {
			s.logger.Warn("evicting expired entry failed", "key", k, "error", err)
		} else {
			s.logger.Debug("evicted expired entry", "key", k)
		}
		return failure(MsgExpired)
	}

	return success(decodeResult(parsed.Get("value")))
}

// CleanExpired removes every entry whose JSON value carries an expiresAt
// in the past. Entries that are not JSON, or have no expiresAt, are left
// alone. Keys written while the sweep runs are not visited.
func (s *Store) CleanExpired() {
	keys, err := s.backend.Keys()
	if err != nil {
		s.logger.Warn("backend keys failed", "error", err)
		return
	}

	nowMs := s.now().UnixMilli()
	removed := 0
	for _, k := range keys {
		raw, found, err := s.backend.Get(k)
		if err != nil || !found {
			continue
		}
		if !sweepable(raw, nowMs) {
			continue
		}
		if err := s.backend.Delete(k); err != nil {
			s.logger.Warn("evicting expired entry failed", "key", k, "error", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Debug("swept expired entries", "removed", removed, "scanned", len(keys))
	}
}
