package localstore

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// envelope wraps a value written by WriteWithExpiry. ExpiresAt is in
// milliseconds since the Unix epoch.
type envelope struct {
	Value     any   `json:"value"`
	ExpiresAt int64 `json:"expiresAt"`
}

// pastDeadline reports whether a numeric expiresAt lies before nowMs.
// Non-numeric or missing fields never expire.
func pastDeadline(expiresAt gjson.Result, nowMs int64) bool {
	return expiresAt.Type == gjson.Number && float64(nowMs) > expiresAt.Num
}

// sweepable reports whether CleanExpired should remove raw. A zero
// expiresAt is treated as unset.
func sweepable(raw string, nowMs int64) bool {
	if !gjson.Valid(raw) {
		return false
	}
	exp := gjson.Get(raw, "expiresAt")
	return exp.Num != 0 && pastDeadline(exp, nowMs)
}

// decodeResult converts a gjson field into the same Go values decode
// produces: nil for a missing field.
func decodeResult(r gjson.Result) any {
	if !r.Exists() {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(r.Raw), &v); err != nil {
		return r.Value()
	}
	return v
}
