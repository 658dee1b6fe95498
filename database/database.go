package database

import (
	"betaffiliate/config"
	"betaffiliate/models"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect(cfg config.DBConfig) error {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return err
	}

	DB = db
	log.Info().Str("host", cfg.Host).Str("db", cfg.Name).Msg("connected to database")

	if cfg.AutoMigrate {
		log.Info().Msg("starting auto-migration")
		if err := Migrate(DB); err != nil {
			return err
		}
		log.Info().Msg("auto-migration completed")
	}
	return nil
}

// Migrate creates or updates the schema, including the conversion idempotency index.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.BettingHouse{},
		&models.Affiliate{},
		&models.AffiliateLink{},
		&models.Conversion{},
		&models.OrphanPostback{},
	)
}
