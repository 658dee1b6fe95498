package postback

import (
	"betaffiliate/models"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type Resolution struct {
	Affiliate *models.Affiliate
	House     *models.BettingHouse
}

// Resolve maps (house, subid) to an affiliate and the current house record.
// Affiliate links are not consulted: the house decides who referred the customer.
func Resolve(db *gorm.DB, houseID uint, subID string) (*Resolution, error) {
	var house models.BettingHouse
	if err := db.First(&house, houseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHouseInactive
		}
		return nil, fmt.Errorf("load house: %w", err)
	}
	if !house.IsActive {
		return nil, ErrHouseInactive
	}

	var affiliate models.Affiliate
	if err := db.Where("username = ?", subID).First(&affiliate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: subid %q", ErrAffiliateNotFound, subID)
		}
		return nil, fmt.Errorf("load affiliate: %w", err)
	}
	if !affiliate.IsActive {
		return nil, fmt.Errorf("%w: subid %q is inactive", ErrAffiliateNotFound, subID)
	}

	return &Resolution{Affiliate: &affiliate, House: &house}, nil
}
