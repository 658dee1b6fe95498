package tasks

import (
	"betaffiliate/internal/testdb"
	"betaffiliate/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurgeOrphanPostbacks(t *testing.T) {
	db := testdb.Open(t)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	old := models.OrphanPostback{HouseID: 1, SubID: "ghost", CustomerID: "c1", EventType: models.EventDeposit, Reason: "affiliate_not_found"}
	old.CreatedAt = now.Add(-40 * 24 * time.Hour)
	recent := models.OrphanPostback{HouseID: 1, SubID: "ghost", CustomerID: "c2", EventType: models.EventDeposit, Reason: "affiliate_not_found"}
	recent.CreatedAt = now.Add(-time.Hour)
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Create(&recent).Error)

	deleted, err := PurgeOrphanPostbacks(db, 30*24*time.Hour, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	var left []models.OrphanPostback
	require.NoError(t, db.Unscoped().Find(&left).Error)
	require.Len(t, left, 1)
	assert.Equal(t, "c2", left[0].CustomerID)
}
