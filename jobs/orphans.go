package jobs

import (
	tasks "betaffiliate/task"
	"context"
	"time"

	"gorm.io/gorm"
)

// StartOrphanPurge deletes expired orphan postbacks once an hour.
func StartOrphanPurge(ctx context.Context, db *gorm.DB, retention time.Duration) {
	ticker := time.NewTicker(time.Hour)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				_, _ = tasks.PurgeOrphanPostbacks(db.WithContext(ctx), retention, now)
			}
		}
	}()
}
