package commission

import (
	"betaffiliate/models"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrInvalidConfig = errors.New("invalid commission config")

var hundred = decimal.NewFromInt(100)

// Config is the validated commission setup of a house: one of CPAConfig,
// RevShareConfig or HybridConfig.
type Config interface {
	Type() models.CommissionType
	legs() (*CPALeg, *RevShareLeg)
}

// CPALeg pays a fixed Value when Trigger is reported. A zero AffiliatePercent
// means no split was configured and the gross value is passed through.
type CPALeg struct {
	Value            decimal.Decimal
	AffiliatePercent decimal.Decimal
	Trigger          models.EventType
}

// RevShareLeg pays Percent of the reported amount, split by AffiliatePercent.
type RevShareLeg struct {
	Percent          decimal.Decimal
	AffiliatePercent decimal.Decimal
}

type CPAConfig struct {
	CPA CPALeg
}

type RevShareConfig struct {
	RevShare RevShareLeg
}

type HybridConfig struct {
	CPA      CPALeg
	RevShare RevShareLeg
}

func (CPAConfig) Type() models.CommissionType      { return models.CommissionCPA }
func (RevShareConfig) Type() models.CommissionType { return models.CommissionRevShare }
func (HybridConfig) Type() models.CommissionType   { return models.CommissionHybrid }

func (c CPAConfig) legs() (*CPALeg, *RevShareLeg)      { return &c.CPA, nil }
func (c RevShareConfig) legs() (*CPALeg, *RevShareLeg) { return nil, &c.RevShare }
func (c HybridConfig) legs() (*CPALeg, *RevShareLeg)   { return &c.CPA, &c.RevShare }

// FromHouse validates the commission fields of a house and returns its Config.
// Defaulting happens here, once, so Calculate never needs fallback chains.
func FromHouse(h *models.BettingHouse) (Config, error) {
	if h == nil {
		return nil, fmt.Errorf("%w: nil house", ErrInvalidConfig)
	}

	trigger := h.CPATrigger
	if trigger == "" {
		trigger = models.EventRegistration
	}

	cpa := CPALeg{
		Value:            h.CPAValue,
		AffiliatePercent: h.CPAAffiliatePercent,
		Trigger:          trigger,
	}
	rev := RevShareLeg{
		Percent:          h.RevShareValue,
		AffiliatePercent: h.RevShareAffiliatePercent,
	}

	switch h.CommissionType {
	case models.CommissionCPA:
		if err := cpa.validate(); err != nil {
			return nil, err
		}
		return CPAConfig{CPA: cpa}, nil
	case models.CommissionRevShare:
		if err := rev.validate(); err != nil {
			return nil, err
		}
		return RevShareConfig{RevShare: rev}, nil
	case models.CommissionHybrid:
		if err := cpa.validate(); err != nil {
			return nil, err
		}
		if err := rev.validate(); err != nil {
			return nil, err
		}
		if cpa.Trigger != models.EventRegistration {
			return nil, fmt.Errorf("%w: hybrid houses must trigger CPA on registration", ErrInvalidConfig)
		}
		return HybridConfig{CPA: cpa, RevShare: rev}, nil
	default:
		return nil, fmt.Errorf("%w: unknown commission type %q", ErrInvalidConfig, h.CommissionType)
	}
}

func (l CPALeg) validate() error {
	if !l.Value.IsPositive() {
		return fmt.Errorf("%w: cpa value must be positive", ErrInvalidConfig)
	}
	if !validPercent(l.AffiliatePercent) {
		return fmt.Errorf("%w: cpa affiliate percent must be within 0-100", ErrInvalidConfig)
	}
	if l.Trigger != models.EventRegistration && l.Trigger != models.EventDeposit {
		return fmt.Errorf("%w: cpa trigger must be registration or deposit", ErrInvalidConfig)
	}
	return nil
}

func (l RevShareLeg) validate() error {
	if !l.Percent.IsPositive() || l.Percent.GreaterThan(hundred) {
		return fmt.Errorf("%w: revshare value must be within (0, 100]", ErrInvalidConfig)
	}
	if !validPercent(l.AffiliatePercent) {
		return fmt.Errorf("%w: revshare affiliate percent must be within 0-100", ErrInvalidConfig)
	}
	return nil
}

func validPercent(p decimal.Decimal) bool {
	return !p.IsNegative() && p.LessThanOrEqual(hundred)
}
