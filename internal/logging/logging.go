// Package logging builds the root hclog logger shared by the server,
// the facade and raft.
package logging

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

// New returns a logger named "localkv" writing to w (stderr when nil).
// Unknown levels fall back to info.
func New(level string, json bool, w io.Writer) hclog.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		lvl = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       "localkv",
		Level:      lvl,
		Output:     w,
		JSONFormat: json,
	})
}
