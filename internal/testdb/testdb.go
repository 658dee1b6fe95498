// Package testdb opens throwaway SQLite databases for tests.
package testdb

import (
	"betaffiliate/database"
	"betaffiliate/models"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a migrated database backed by a file in t.TempDir.
// A single connection keeps concurrent test writers from hitting SQLITE_BUSY.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// HybridHouse creates the reference Hybrid house: CPA 150 at 100%, RevShare 30% at 50%.
func HybridHouse(t testing.TB, db *gorm.DB, slug, apiKey string) *models.BettingHouse {
	t.Helper()

	h := &models.BettingHouse{
		Name:                     "House " + slug,
		Slug:                     slug,
		APIKey:                   apiKey,
		CommissionType:           models.CommissionHybrid,
		CPAValue:                 decimal.NewFromInt(150),
		CPAAffiliatePercent:      decimal.NewFromInt(100),
		RevShareValue:            decimal.NewFromInt(30),
		RevShareAffiliatePercent: decimal.NewFromInt(50),
		Currency:                 "BRL",
		IsActive:                 true,
	}
	require.NoError(t, db.Create(h).Error)
	return h
}

func Affiliate(t testing.TB, db *gorm.DB, username string) *models.Affiliate {
	t.Helper()

	a := &models.Affiliate{Username: username, Email: username + "@example.com", IsActive: true}
	require.NoError(t, db.Create(a).Error)
	return a
}
