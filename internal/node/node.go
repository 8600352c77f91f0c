// Package node starts the Raft node behind the replicated backend.
package node

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/raft"
	raftboltdb "github.com/hashicorp/raft-boltdb"
)

// Options describes one Raft node.
type Options struct {
	NodeID    string
	RaftAddr  string
	DataDir   string
	Bootstrap bool
	Logger    hclog.Logger
}

// Node bundles a running raft.Raft with the stores it owns.
type Node struct {
	Raft      *raft.Raft
	logStore  *raftboltdb.BoltStore
	transport *raft.NetworkTransport
}

// Start opens the log/stable store and snapshots under DataDir, listens on
// RaftAddr and starts Raft with fsm. When Bootstrap is set and no state
// exists yet, a single-node cluster is bootstrapped.
func Start(opts Options, fsm raft.FSM) (*Node, error) {
	if opts.NodeID == "" {
		return nil, fmt.Errorf("node id is required")
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}

	if err := os.MkdirAll(opts.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create raft data dir: %w", err)
	}

	conf := raft.DefaultConfig()
	conf.LocalID = raft.ServerID(opts.NodeID)
	conf.Logger = opts.Logger.Named("raft")

	addr, err := net.ResolveTCPAddr("tcp", opts.RaftAddr)
	if err != nil {
		return nil, fmt.Errorf("resolve raft addr: %w", err)
	}
	transport, err := raft.NewTCPTransportWithLogger(opts.RaftAddr, addr, 3, 10*time.Second, conf.Logger)
	if err != nil {
		return nil, fmt.Errorf("raft transport: %w", err)
	}

	snapshots, err := raft.NewFileSnapshotStoreWithLogger(opts.DataDir, 2, conf.Logger)
	if err != nil {
		_ = transport.Close()
		return nil, fmt.Errorf("raft snapshot store: %w", err)
	}

	logStore, err := raftboltdb.NewBoltStore(filepath.Join(opts.DataDir, "raft.db"))
	if err != nil {
		_ = transport.Close()
		return nil, fmt.Errorf("raft log store: %w", err)
	}

	r, err := raft.NewRaft(conf, fsm, logStore, logStore, snapshots, transport)
	if err != nil {
		_ = logStore.Close()
		_ = transport.Close()
		return nil, fmt.Errorf("start raft: %w", err)
	}

	if opts.Bootstrap {
		existing, err := raft.HasExistingState(logStore, logStore, snapshots)
		if err != nil {
			return nil, fmt.Errorf("check raft state: %w", err)
		}
		if !existing {
			cfg := raft.Configuration{Servers: []raft.Server{{
				ID:      conf.LocalID,
				Address: transport.LocalAddr(),
			}}}
			if err := r.BootstrapCluster(cfg).Error(); err != nil {
				return nil, fmt.Errorf("bootstrap cluster: %w", err)
			}
			opts.Logger.Info("bootstrapped single-node cluster", "id", opts.NodeID)
		}
	}

	return &Node{Raft: r, logStore: logStore, transport: transport}, nil
}

// Join adds a voter to the cluster. Only the leader can do this.
func (n *Node) Join(id, addr string) error {
	if n.Raft.State() != raft.Leader {
		return raft.ErrNotLeader
	}
	return n.Raft.AddVoter(raft.ServerID(id), raft.ServerAddress(addr), 0, 0).Error()
}

// Leader returns the id and raft address of the current leader.
func (n *Node) Leader() (id, addr string) {
	a, i := n.Raft.LeaderWithID()
	return string(i), string(a)
}

// Shutdown stops Raft and releases its stores.
func (n *Node) Shutdown() error {
	err := n.Raft.Shutdown().Error()
	if cerr := n.logStore.Close(); err == nil {
		err = cerr
	}
	if cerr := n.transport.Close(); err == nil {
		err = cerr
	}
	return err
}
