package localstore

// Status tags an Outcome as a success or an error.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Messages carried by error outcomes and success confirmations. Callers
// match on these strings, so they must not change.
const (
	MsgInvalidKey   = "key was not a valid string"
	MsgKeyNotString = "Key must be a string"
	MsgNotFound     = "no value was found associated to key"
	MsgReadFailed   = "error occurred reading key"
	MsgDeleteFailed = "error occurred deleting key"
	MsgRemoved      = "value of key is removed"

	MsgWipeFailed    = "Error wiping localStorage"
	MsgWipeException = "Exception while clearing localStorage"
	MsgWiped         = "LocalStorage has been wiped"

	MsgUpdateFailed = "Failed to update localStorage"

	MsgExpiryNotFound = "Not found"
	MsgInvalidFormat  = "Invalid format"
	MsgExpired        = "Expired"
)

// Outcome is the tagged result returned by most Store operations. On
// success Value carries the operation's payload; on error it carries one
// of the Msg* strings.
type Outcome struct {
	Status Status `json:"status"`
	Value  any    `json:"value"`
}

func success(v any) Outcome {
	return Outcome{Status: StatusSuccess, Value: v}
}

func failure(msg string) Outcome {
	return Outcome{Status: StatusError, Value: msg}
}

// OK reports whether the outcome is a success.
func (o Outcome) OK() bool {
	return o.Status == StatusSuccess
}

// Message returns the diagnostic of an error outcome, or "" on success.
func (o Outcome) Message() string {
	if o.OK() {
		return ""
	}
	msg, _ := o.Value.(string)
	return msg
}
