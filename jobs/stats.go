package jobs

import (
	"betaffiliate/services/stats"
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// StartStatsScheduler refreshes the stats snapshot now and then every
// interval until ctx is done. Without a cache there is nothing to refresh.
func StartStatsScheduler(ctx context.Context, db *gorm.DB, cache *stats.Cache, interval time.Duration) {
	if cache == nil {
		log.Info().Msg("stats cache disabled, reports are computed on read")
		return
	}

	refresh := func() {
		rctx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()

		start := time.Now()
		snap, err := stats.Refresh(rctx, db, cache)
		if err != nil {
			log.Error().Err(err).Str("component", "stats").Msg("stats refresh failed")
			return
		}
		log.Debug().
			Str("component", "stats").
			Int("affiliates", len(snap.ByAffiliate)).
			Int("houses", len(snap.ByHouse)).
			Dur("took", time.Since(start)).
			Msg("stats snapshot refreshed")
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		refresh()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				refresh()
			}
		}
	}()
}
