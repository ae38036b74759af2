package utils

import (
	"context"
	"time"

	"github.com/openedu/studyhub/config"
	"github.com/openedu/studyhub/services"
)

// StartTrashSweeper launches a background goroutine that periodically purges
// resources left in the trash beyond the configured retention period. It is
// best-effort and logs failures; every purge goes through the same lifecycle
// transition the API uses, so restored resources are never swept.
func StartTrashSweeper(lifecycle *services.LifecycleService, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup
			time.Sleep(interval)

			retention := config.Get().TrashRetentionDays
			cutoff := time.Now().UTC().AddDate(0, 0, -retention)

			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			purged, err := lifecycle.PurgeExpired(ctx, cutoff)
			cancel()
			if err != nil {
				if Sugar != nil {
					Sugar.Warnf("trash sweeper failed: %v", err)
				}
				continue
			}
			if len(purged) > 0 && Sugar != nil {
				Sugar.Infof("trash sweeper purged %d resources", len(purged))
			}
		}
	}()
}
