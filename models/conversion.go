package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EventType string

const (
	EventClick            EventType = "click"
	EventRegistration     EventType = "registration"
	EventDeposit          EventType = "deposit"
	EventRecurringDeposit EventType = "recurring_deposit"
	EventRevenue          EventType = "revenue"
	EventWithdrawal       EventType = "withdrawal"
	EventPayout           EventType = "payout"
)

func (e EventType) Valid() bool {
	switch e {
	case EventClick, EventRegistration, EventDeposit, EventRecurringDeposit,
		EventRevenue, EventWithdrawal, EventPayout:
		return true
	}
	return false
}

type ConversionStatus string

const (
	StatusPending ConversionStatus = "pending"
	StatusPaid    ConversionStatus = "paid"
	StatusSuccess ConversionStatus = "success"
	StatusFailure ConversionStatus = "failure"
)

// Conversion is one accepted postback. The unique index idx_conversion_key is
// the idempotency boundary: (house, customer, type, event ref).
type Conversion struct {
	gorm.Model

	AffiliateID uint      `gorm:"not null;index" json:"affiliate_id"`
	HouseID     uint      `gorm:"not null;index;index:idx_conversion_key,unique,priority:1" json:"house_id"`
	CustomerID  string    `gorm:"size:128;not null;index:idx_conversion_key,unique,priority:2" json:"customer_id"`
	Type        EventType `gorm:"size:32;not null;index;index:idx_conversion_key,unique,priority:3" json:"type"`
	EventRef    string    `gorm:"size:128;not null;index:idx_conversion_key,unique,priority:4" json:"event_ref,omitempty"`

	Amount         decimal.NullDecimal `gorm:"type:numeric(18,2)" json:"amount"`
	Commission     decimal.NullDecimal `gorm:"type:numeric(18,2)" json:"commission"`
	CommissionRule string              `gorm:"size:32" json:"commission_rule"`

	Status      ConversionStatus `gorm:"size:16;not null;index" json:"status"`
	Metadata    datatypes.JSON   `gorm:"type:jsonb" json:"metadata,omitempty"`
	ConvertedAt time.Time        `gorm:"not null;index" json:"converted_at"`
}

// OrphanPostback keeps authenticated postbacks whose subid matched no affiliate.
type OrphanPostback struct {
	gorm.Model

	HouseID    uint                `gorm:"index" json:"house_id"`
	SubID      string              `gorm:"size:64;index" json:"subid"`
	CustomerID string              `gorm:"size:128" json:"customer_id"`
	EventType  EventType           `gorm:"size:32" json:"event_type"`
	EventRef   string              `gorm:"size:128" json:"event_ref,omitempty"`
	Amount     decimal.NullDecimal `gorm:"type:numeric(18,2)" json:"amount"`
	Payload    datatypes.JSON      `gorm:"type:jsonb" json:"payload,omitempty"`
	Reason     string              `gorm:"size:64" json:"reason"`
}
