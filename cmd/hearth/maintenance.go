package main

import (
	"context"
	"time"

	"github.com/nerrad567/hearth/internal/infrastructure/logging"
)

// pruneInterval is how often old actuator history is removed.
const pruneInterval = 24 * time.Hour

// historyPruner is the subset of the history repository used for retention.
type historyPruner interface {
	PruneHistory(ctx context.Context, olderThan time.Duration) (int64, error)
}

// pruneHistory removes actuator history older than retentionDays once at
// startup and then every pruneInterval until ctx is cancelled.
func pruneHistory(ctx context.Context, repo historyPruner, retentionDays int, interval time.Duration, log *logging.Logger) {
	if retentionDays <= 0 {
		return
	}
	retention := time.Duration(retentionDays) * 24 * time.Hour

	prune := func() {
		n, err := repo.PruneHistory(ctx, retention)
		if err != nil {
			if ctx.Err() == nil {
				log.Warn("pruning actuator history failed", "error", err)
			}
			return
		}
		if n > 0 {
			log.Info("pruned actuator history", "removed", n, "retention_days", retentionDays)
		}
	}

	prune()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prune()
		}
	}
}
