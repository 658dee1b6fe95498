package postback

import (
	"betaffiliate/models"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var conversionKey = []clause.Column{
	{Name: "house_id"},
	{Name: "customer_id"},
	{Name: "type"},
	{Name: "event_ref"},
}

// Record inserts the conversion unless one with the same idempotency key
// exists. The unique index decides, so concurrent duplicates collapse to a
// single row. It returns the stored row and whether it already existed.
func Record(db *gorm.DB, conv *models.Conversion) (*models.Conversion, bool, error) {
	tx := db.Clauses(clause.OnConflict{
		Columns:   conversionKey,
		DoNothing: true,
	}).Create(conv)
	if tx.Error != nil {
		return nil, false, fmt.Errorf("insert conversion: %w", tx.Error)
	}
	created := tx.RowsAffected > 0

	// soft-deleted rows still hold the unique key
	var stored models.Conversion
	if err := db.Unscoped().Where("house_id = ? AND customer_id = ? AND type = ? AND event_ref = ?",
		conv.HouseID, conv.CustomerID, conv.Type, conv.EventRef).
		First(&stored).Error; err != nil {
		return nil, false, fmt.Errorf("load conversion: %w", err)
	}
	return &stored, !created, nil
}

// RecordOrphan stores an authenticated postback whose subid matched nobody.
func RecordOrphan(db *gorm.DB, orphan *models.OrphanPostback) error {
	if err := db.Create(orphan).Error; err != nil {
		return fmt.Errorf("insert orphan postback: %w", err)
	}
	return nil
}
