package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CommissionType string

const (
	CommissionCPA      CommissionType = "CPA"
	CommissionRevShare CommissionType = "RevShare"
	CommissionHybrid   CommissionType = "Hybrid"
)

// BettingHouse is a partner house reporting conversions through postbacks.
// Percent fields are expressed 0-100.
type BettingHouse struct {
	gorm.Model

	Name   string `gorm:"size:128;not null" json:"name"`
	Slug   string `gorm:"size:64;uniqueIndex;not null" json:"slug"`
	APIKey string `gorm:"size:128;not null" json:"-"`

	CommissionType           CommissionType  `gorm:"size:16;not null" json:"commission_type"`
	CPAValue                 decimal.Decimal `gorm:"type:numeric(14,2)" json:"cpa_value"`
	RevShareValue            decimal.Decimal `gorm:"type:numeric(7,4)" json:"revshare_value"`
	CPAAffiliatePercent      decimal.Decimal `gorm:"type:numeric(7,4)" json:"cpa_affiliate_percent"`
	RevShareAffiliatePercent decimal.Decimal `gorm:"type:numeric(7,4)" json:"revshare_affiliate_percent"`
	CPATrigger               EventType       `gorm:"size:32;not null" json:"cpa_trigger"`

	Currency string `gorm:"size:8" json:"currency"`
	IsActive bool   `gorm:"not null" json:"is_active"`
}

func (h *BettingHouse) BeforeSave(tx *gorm.DB) (err error) {
	if h.CPATrigger == "" {
		h.CPATrigger = EventRegistration
	}
	return nil
}
