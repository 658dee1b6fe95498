package commission

import (
	"betaffiliate/models"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNoApplicableRule is a warning: the conversion is still recorded, without commission.
var ErrNoApplicableRule = errors.New("no applicable commission rule")

type Rule string

const (
	RuleNone             Rule = "none"
	RuleCPA              Rule = "cpa"
	RuleCPAGross         Rule = "cpa_gross_fallback"
	RuleRevShare         Rule = "revshare"
	RuleRevShareGross    Rule = "revshare_gross_fallback"
	RuleHouseOverride    Rule = "house_override"
	RuleNotApplicable    Rule = "not_applicable"
	RuleInvalidHouseConf Rule = "invalid_house_config"
)

// Result carries the unrounded commission. Rounding to cents happens when the
// conversion is persisted or rendered.
type Result struct {
	Commission  decimal.NullDecimal
	Rule        Rule
	Fallback    bool
	Description string
}

// Calculate applies the commission config to one event. Clicks never carry
// commission. Events without a formula return ErrNoApplicableRule.
func Calculate(cfg Config, eventType models.EventType, amount decimal.NullDecimal) (Result, error) {
	if eventType == models.EventClick {
		return Result{Rule: RuleNone, Description: "click events carry no commission"}, nil
	}
	if cfg == nil {
		return Result{Rule: RuleInvalidHouseConf, Description: "house has no valid commission config"}, ErrNoApplicableRule
	}

	cpa, rev := cfg.legs()

	if cpa != nil && eventType == cpa.Trigger {
		return cpa.apply(), nil
	}

	if rev != nil && isRevShareEvent(eventType) {
		if !amount.Valid {
			return Result{
				Rule:        RuleNotApplicable,
				Description: fmt.Sprintf("%s event without amount cannot earn revshare", eventType),
			}, ErrNoApplicableRule
		}
		return rev.apply(amount.Decimal), nil
	}

	return Result{
		Rule:        RuleNotApplicable,
		Description: fmt.Sprintf("%s house has no formula for %s events", cfg.Type(), eventType),
	}, ErrNoApplicableRule
}

// PaidOnce reports whether the result came from the CPA leg, which is owed
// once per customer no matter how many qualifying events the house reports.
func (r Result) PaidOnce() bool {
	return r.Rule == RuleCPA || r.Rule == RuleCPAGross
}

// WithOverride replaces the computed commission with a house-supplied value.
func WithOverride(res Result, eventType models.EventType, override decimal.NullDecimal) Result {
	if !override.Valid || eventType == models.EventClick {
		return res
	}
	return Result{
		Commission:  override,
		Rule:        RuleHouseOverride,
		Description: "commission supplied by house",
	}
}

func isRevShareEvent(t models.EventType) bool {
	switch t {
	case models.EventDeposit, models.EventRecurringDeposit, models.EventRevenue:
		return true
	}
	return false
}

func (l CPALeg) apply() Result {
	if l.AffiliatePercent.IsZero() {
		return Result{
			Commission:  decimal.NewNullDecimal(l.Value),
			Rule:        RuleCPAGross,
			Fallback:    true,
			Description: fmt.Sprintf("cpa %s passed through gross, no affiliate split configured", l.Value),
		}
	}
	return Result{
		Commission:  decimal.NewNullDecimal(l.Value.Mul(l.AffiliatePercent.Shift(-2))),
		Rule:        RuleCPA,
		Description: fmt.Sprintf("cpa %s x %s%%", l.Value, l.AffiliatePercent),
	}
}

func (l RevShareLeg) apply(amount decimal.Decimal) Result {
	gross := amount.Mul(l.Percent.Shift(-2))
	if l.AffiliatePercent.IsZero() {
		return Result{
			Commission:  decimal.NewNullDecimal(gross),
			Rule:        RuleRevShareGross,
			Fallback:    true,
			Description: fmt.Sprintf("revshare %s%% of %s passed through gross, no affiliate split configured", l.Percent, amount),
		}
	}
	return Result{
		Commission:  decimal.NewNullDecimal(gross.Mul(l.AffiliatePercent.Shift(-2))),
		Rule:        RuleRevShare,
		Description: fmt.Sprintf("revshare %s x %s%% x %s%%", amount, l.Percent, l.AffiliatePercent),
	}
}
