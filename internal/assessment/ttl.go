package assessment

import (
	"context"
	"log/slog"
	"time"
)

// StartTTLWorker runs a background goroutine that periodically closes
// assessment runs idle for longer than ttl.
func StartTTLWorker(ctx context.Context, mgr *Manager, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("TTL worker started", "interval", interval, "ttl", ttl)

		for {
			select {
			case <-ticker.C:
				if n := mgr.SweepIdle(ttl); n > 0 {
					slog.Info("TTL worker closed idle assessments", "count", n, "remaining", mgr.Len())
				}
			case <-ctx.Done():
				slog.Info("TTL worker shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}
