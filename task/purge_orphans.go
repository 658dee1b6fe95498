package tasks

import (
	"betaffiliate/models"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// PurgeOrphanPostbacks hard-deletes orphan postbacks received before now-retention.
func PurgeOrphanPostbacks(db *gorm.DB, retention time.Duration, now time.Time) (int64, error) {
	cutoff := now.Add(-retention)
	result := db.Unscoped().
		Where("created_at < ?", cutoff).
		Delete(&models.OrphanPostback{})

	if result.Error != nil {
		log.Error().Err(result.Error).Msg("failed to purge orphan postbacks")
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		log.Info().Int64("deleted", result.RowsAffected).Time("cutoff", cutoff).Msg("purged orphan postbacks")
	}
	return result.RowsAffected, nil
}
