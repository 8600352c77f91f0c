package store

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/raft"
	"github.com/heysubinoy/localkv/pkg/kv"
)

const defaultApplyTimeout = 5 * time.Second

// RaftCommand represents a mutation to be applied via Raft.
type RaftCommand struct {
	Op    string `json:"op"` // "set", "delete" or "clear"
	Key   string `json:"key,omitempty"`
	Value string `json:"value,omitempty"` // only for set
}

// RaftStore replicates writes through Raft and serves reads from the local
// MemStore it applies them to. It is both the kv.Backend handed to the
// facade and the raft.FSM handed to raft.NewRaft.
type RaftStore struct {
	store   *MemStore
	raft    *raft.Raft
	timeout time.Duration
}

var (
	_ kv.Backend = (*RaftStore)(nil)
	_ raft.FSM   = (*RaftStore)(nil)
)

// NewRaftStore wraps store. The raft handle is attached later with
// SetRaft, since raft.NewRaft needs the FSM first.
func NewRaftStore(store *MemStore) *RaftStore {
	return &RaftStore{store: store, timeout: defaultApplyTimeout}
}

// SetRaft attaches the raft node that writes are submitted to.
func (rs *RaftStore) SetRaft(r *raft.Raft) {
	rs.raft = r
}

// GetRaft returns the underlying raft.Raft pointer (for API layer leader checks)
func (rs *RaftStore) GetRaft() *raft.Raft {
	return rs.raft
}

// Apply applies a Raft log entry to the local store.
func (rs *RaftStore) Apply(log *raft.Log) interface{} {
	var cmd RaftCommand
	if err := json.Unmarshal(log.Data, &cmd); err != nil {
		return fmt.Errorf("decode raft command: %w", err)
	}
	switch cmd.Op {
	case "set":
		return rs.store.Set(cmd.Key, cmd.Value)
	case "delete":
		return rs.store.Delete(cmd.Key)
	case "clear":
		return rs.store.Clear()
	default:
		return fmt.Errorf("unknown raft op %q", cmd.Op)
	}
}

// Snapshot captures the applied state as JSON.
func (rs *RaftStore) Snapshot() (raft.FSMSnapshot, error) {
	return &memSnapshot{data: rs.store.Snapshot()}, nil
}

// Restore replaces the local state with a snapshot written by Persist.
func (rs *RaftStore) Restore(rc io.ReadCloser) error {
	defer rc.Close()

	data := make(map[string]string)
	if err := json.NewDecoder(rc).Decode(&data); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	rs.store.Replace(data)
	return nil
}

type memSnapshot struct {
	data map[string]string
}

func (m *memSnapshot) Persist(sink raft.SnapshotSink) error {
	if err := json.NewEncoder(sink).Encode(m.data); err != nil {
		_ = sink.Cancel()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return sink.Close()
}

func (m *memSnapshot) Release() {}

func (rs *RaftStore) apply(cmd RaftCommand) error {
	if rs.raft == nil {
		return fmt.Errorf("raft is not configured")
	}
	data, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	f := rs.raft.Apply(data, rs.timeout)
	if err := f.Error(); err != nil {
		return err
	}
	if err, ok := f.Response().(error); ok && err != nil {
		return err
	}
	return nil
}

// Set submits a set command to Raft.
func (rs *RaftStore) Set(key, value string) error {
	return rs.apply(RaftCommand{Op: "set", Key: key, Value: value})
}

// Delete submits a delete command to Raft.
func (rs *RaftStore) Delete(key string) error {
	return rs.apply(RaftCommand{Op: "delete", Key: key})
}

// Clear submits a clear command to Raft.
func (rs *RaftStore) Clear() error {
	return rs.apply(RaftCommand{Op: "clear"})
}

// Get reads directly from the local store.
func (rs *RaftStore) Get(key string) (string, bool, error) {
	return rs.store.Get(key)
}

// Len reads directly from the local store.
func (rs *RaftStore) Len() (int, error) {
	return rs.store.Len()
}

// Keys reads directly from the local store.
func (rs *RaftStore) Keys() ([]string, error) {
	return rs.store.Keys()
}
