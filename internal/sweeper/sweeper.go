package sweeper

import (
	"context"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Cleaner removes expired entries in one pass.
type Cleaner interface {
	CleanExpired()
}

// Run calls c.CleanExpired every interval until ctx is done. A zero or
// negative interval disables sweeping and Run returns immediately.
func Run(ctx context.Context, c Cleaner, interval time.Duration, logger hclog.Logger) {
	if interval <= 0 {
		return
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	logger.Info("expiry sweeper started", "interval", interval)
	for {
		select {
		case <-t.C:
			start := time.Now()
			c.CleanExpired()
			logger.Trace("sweep finished", "elapsed", time.Since(start))
		case <-ctx.Done():
			logger.Info("expiry sweeper stopped")
			return
		}
	}
}
