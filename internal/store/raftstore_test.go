package store

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/raft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSingleNodeRaft bootstraps a one-voter in-memory cluster over rs and
// waits until it leads.
func newSingleNodeRaft(t *testing.T, rs *RaftStore) {
	t.Helper()

	cfg := raft.DefaultConfig()
	cfg.LocalID = "node1"
	cfg.HeartbeatTimeout = 50 * time.Millisecond
	cfg.ElectionTimeout = 50 * time.Millisecond
	cfg.LeaderLeaseTimeout = 50 * time.Millisecond
	cfg.CommitTimeout = 5 * time.Millisecond
	cfg.Logger = hclog.NewNullLogger()

	addr, transport := raft.NewInmemTransport("")
	logs := raft.NewInmemStore()
	snaps := raft.NewInmemSnapshotStore()

	r, err := raft.NewRaft(cfg, rs, logs, logs, snaps, transport)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Shutdown().Error() })

	err = r.BootstrapCluster(raft.Configuration{
		Servers: []raft.Server{{ID: cfg.LocalID, Address: addr}},
	}).Error()
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return r.State() == raft.Leader
	}, 5*time.Second, 10*time.Millisecond)

	rs.SetRaft(r)
}

func TestRaftStoreBackend(t *testing.T) {
	rs := NewRaftStore(NewMemStore())
	newSingleNodeRaft(t, rs)

	testBackend(t, rs)
}

func TestRaftStoreQuotaErrorPropagates(t *testing.T) {
	rs := NewRaftStore(NewMemStore(WithQuota(4)))
	newSingleNodeRaft(t, rs)

	require.NoError(t, rs.Set("a", "b"))
	assert.Error(t, rs.Set("long", "value"))
}

func TestRaftStoreWithoutRaft(t *testing.T) {
	rs := NewRaftStore(NewMemStore())

	assert.Error(t, rs.Set("k", "v"))
	assert.Nil(t, rs.GetRaft())
}

func TestRaftStoreApply(t *testing.T) {
	mem := NewMemStore()
	rs := NewRaftStore(mem)

	data, err := json.Marshal(RaftCommand{Op: "set", Key: "k", Value: "v"})
	require.NoError(t, err)
	assert.Nil(t, rs.Apply(&raft.Log{Data: data}))

	v, found, _ := mem.Get("k")
	assert.True(t, found)
	assert.Equal(t, "v", v)

	resp := rs.Apply(&raft.Log{Data: []byte(`{"op":"rename"}`)})
	assert.Error(t, resp.(error))

	resp = rs.Apply(&raft.Log{Data: []byte(`not json`)})
	assert.Error(t, resp.(error))
}

type bufferSink struct {
	bytes.Buffer
	cancelled bool
}

func (s *bufferSink) ID() string    { return "test" }
func (s *bufferSink) Close() error  { return nil }
func (s *bufferSink) Cancel() error { s.cancelled = true; return nil }

func TestRaftStoreSnapshotRestore(t *testing.T) {
	src := NewMemStore()
	require.NoError(t, src.Set("a", "1"))
	require.NoError(t, src.Set("b", `{"value":2,"expiresAt":0}`))

	snap, err := NewRaftStore(src).Snapshot()
	require.NoError(t, err)

	sink := &bufferSink{}
	require.NoError(t, snap.Persist(sink))
	snap.Release()
	assert.False(t, sink.cancelled)

	dst := NewMemStore()
	require.NoError(t, dst.Set("stale", "x"))
	require.NoError(t, NewRaftStore(dst).Restore(io.NopCloser(&sink.Buffer)))

	assert.Equal(t, src.Snapshot(), dst.Snapshot())
}
