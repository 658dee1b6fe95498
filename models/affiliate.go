package models

import "gorm.io/gorm"

// Affiliate is identified in postbacks by its username (the subid).
type Affiliate struct {
	gorm.Model

	Username string `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email    string `gorm:"size:255" json:"email"`
	IsActive bool   `gorm:"default:true" json:"is_active"`
}

type AffiliateLink struct {
	gorm.Model

	AffiliateID  uint   `gorm:"not null;index;index:idx_active_affiliate_link,unique,where:is_active = true" json:"affiliate_id"`
	HouseID      uint   `gorm:"not null;index;index:idx_active_affiliate_link,unique,where:is_active = true" json:"house_id"`
	Code         string `gorm:"size:36;uniqueIndex;not null" json:"code"`
	GeneratedURL string `gorm:"size:512" json:"generated_url"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`
}
