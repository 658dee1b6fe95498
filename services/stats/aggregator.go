package stats

import (
	"betaffiliate/models"
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Filter narrows every rollup. Zero values mean no restriction.
type Filter struct {
	From        *time.Time
	To          *time.Time
	AffiliateID uint
	HouseID     uint
}

// Rollup aggregates conversions for one scope (affiliate or house).
// Rates are percentages rounded to two decimals.
type Rollup struct {
	ID               uint            `json:"id"`
	Name             string          `json:"name"`
	Conversions      int64           `json:"conversions"`
	Clicks           int64           `json:"clicks"`
	Registrations    int64           `json:"registrations"`
	Deposits         int64           `json:"deposits"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	TotalCommission  decimal.Decimal `json:"total_commission"`
	RegistrationRate decimal.Decimal `json:"registration_rate"`
	DepositRate      decimal.Decimal `json:"deposit_rate"`
}

type EventRollup struct {
	Type            models.EventType `json:"type"`
	Count           int64            `json:"count"`
	TotalAmount     decimal.Decimal  `json:"total_amount"`
	TotalCommission decimal.Decimal  `json:"total_commission"`
}

// Summary is the affiliate dashboard view.
type Summary struct {
	Totals  Rollup          `json:"totals"`
	ByHouse []Rollup        `json:"by_house"`
	ByEvent []EventRollup   `json:"by_event"`
	Pending decimal.Decimal `json:"pending_commission"`
	Paid    decimal.Decimal `json:"paid_commission"`
}

const rollupColumns = `COUNT(*) AS conversions,
	COALESCE(SUM(CASE WHEN c.type = 'click' THEN 1 ELSE 0 END), 0) AS clicks,
	COALESCE(SUM(CASE WHEN c.type = 'registration' THEN 1 ELSE 0 END), 0) AS registrations,
	COALESCE(SUM(CASE WHEN c.type = 'deposit' THEN 1 ELSE 0 END), 0) AS deposits,
	COALESCE(SUM(c.amount), 0) AS total_amount,
	COALESCE(SUM(c.commission), 0) AS total_commission`

func scoped(ctx context.Context, db *gorm.DB, f Filter) *gorm.DB {
	q := db.WithContext(ctx).Table("conversions AS c").Where("c.deleted_at IS NULL")
	if f.From != nil {
		q = q.Where("c.converted_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("c.converted_at <= ?", *f.To)
	}
	if f.AffiliateID != 0 {
		q = q.Where("c.affiliate_id = ?", f.AffiliateID)
	}
	if f.HouseID != 0 {
		q = q.Where("c.house_id = ?", f.HouseID)
	}
	return q
}

func ByAffiliate(ctx context.Context, db *gorm.DB, f Filter) ([]Rollup, error) {
	var rows []Rollup
	err := scoped(ctx, db, f).
		Select("c.affiliate_id AS id, a.username AS name, " + rollupColumns).
		Joins("JOIN affiliates a ON a.id = c.affiliate_id").
		Group("c.affiliate_id, a.username").
		Order("total_commission DESC, c.affiliate_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return withRates(rows), nil
}

func ByHouse(ctx context.Context, db *gorm.DB, f Filter) ([]Rollup, error) {
	var rows []Rollup
	err := scoped(ctx, db, f).
		Select("c.house_id AS id, h.name AS name, " + rollupColumns).
		Joins("JOIN betting_houses h ON h.id = c.house_id").
		Group("c.house_id, h.name").
		Order("total_commission DESC, c.house_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return withRates(rows), nil
}

func ByEventType(ctx context.Context, db *gorm.DB, f Filter) ([]EventRollup, error) {
	var rows []EventRollup
	err := scoped(ctx, db, f).
		Select(`c.type AS type, COUNT(*) AS count,
			COALESCE(SUM(c.amount), 0) AS total_amount,
			COALESCE(SUM(c.commission), 0) AS total_commission`).
		Group("c.type").
		Order("c.type").
		Scan(&rows).Error
	return rows, err
}

// Totals rolls every conversion matching the filter into one row.
func Totals(ctx context.Context, db *gorm.DB, f Filter) (Rollup, error) {
	var row Rollup
	err := scoped(ctx, db, f).Select(rollupColumns).Scan(&row).Error
	if err != nil {
		return Rollup{}, err
	}
	return withRates([]Rollup{row})[0], nil
}

func AffiliateSummary(ctx context.Context, db *gorm.DB, affiliateID uint, f Filter) (*Summary, error) {
	f.AffiliateID = affiliateID

	totals, err := Totals(ctx, db, f)
	if err != nil {
		return nil, err
	}
	totals.ID = affiliateID

	byHouse, err := ByHouse(ctx, db, f)
	if err != nil {
		return nil, err
	}
	byEvent, err := ByEventType(ctx, db, f)
	if err != nil {
		return nil, err
	}

	pending, err := commissionByStatus(ctx, db, f, models.StatusPending)
	if err != nil {
		return nil, err
	}
	paid, err := commissionByStatus(ctx, db, f, models.StatusPaid)
	if err != nil {
		return nil, err
	}

	return &Summary{
		Totals:  totals,
		ByHouse: byHouse,
		ByEvent: byEvent,
		Pending: pending,
		Paid:    paid,
	}, nil
}

func commissionByStatus(ctx context.Context, db *gorm.DB, f Filter, status models.ConversionStatus) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := scoped(ctx, db, f).
		Where("c.status = ?", status).
		Select("COALESCE(SUM(c.commission), 0) AS total").
		Scan(&row).Error
	return row.Total, err
}

// ConversionRate returns part/whole as a percentage, or zero when whole is zero.
func ConversionRate(part, whole int64) decimal.Decimal {
	if whole == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(part).Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(whole)).Round(2)
}

func withRates(rows []Rollup) []Rollup {
	for i := range rows {
		rows[i].RegistrationRate = ConversionRate(rows[i].Registrations, rows[i].Clicks)
		rows[i].DepositRate = ConversionRate(rows[i].Deposits, rows[i].Clicks)
	}
	return rows
}

// ListConversions pages through one affiliate's conversions, newest first.
func ListConversions(ctx context.Context, db *gorm.DB, f Filter, eventType models.EventType, page, limit int) ([]models.Conversion, int64, error) {
	q := db.WithContext(ctx).Model(&models.Conversion{})
	if f.AffiliateID != 0 {
		q = q.Where("affiliate_id = ?", f.AffiliateID)
	}
	if f.HouseID != 0 {
		q = q.Where("house_id = ?", f.HouseID)
	}
	if f.From != nil {
		q = q.Where("converted_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("converted_at <= ?", *f.To)
	}
	if eventType != "" {
		q = q.Where("type = ?", eventType)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Conversion
	err := q.Order("converted_at DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&rows).Error
	return rows, total, err
}
