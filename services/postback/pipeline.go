package postback

import (
	"betaffiliate/models"
	"betaffiliate/services/commission"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Options struct {
	RecordOrphans bool
	Now           func() time.Time
}

// Outcome is what the caller of Ingest reports back to the house.
type Outcome struct {
	Conversion *models.Conversion
	Affiliate  *models.Affiliate
	House      *models.BettingHouse
	Result     commission.Result
	Duplicate  bool
	// Warning is commission.ErrNoApplicableRule when the event was recorded without commission.
	Warning error
}

// Ingest runs an authenticated, parsed event through resolution, commission
// calculation and idempotent recording.
func Ingest(ctx context.Context, db *gorm.DB, house *models.BettingHouse, ev *Event, opts Options) (*Outcome, error) {
	db = db.WithContext(ctx)
	logger := log.With().
		Str("component", "postback").
		Uint("house_id", house.ID).
		Str("event_type", string(ev.Type)).
		Str("subid", ev.SubID).
		Str("customer_id", ev.CustomerID).
		Strs("metadata_keys", ev.MetadataKeys()).
		Logger()

	res, err := Resolve(db, house.ID, ev.SubID)
	if err != nil {
		if errors.Is(err, ErrAffiliateNotFound) && opts.RecordOrphans {
			if oerr := RecordOrphan(db, orphanFrom(house.ID, ev)); oerr != nil {
				logger.Error().Err(oerr).Msg("failed to record orphan postback")
			}
		}
		logger.Warn().Err(err).Msg("postback rejected")
		return nil, err
	}

	out := &Outcome{Affiliate: res.Affiliate, House: res.House}

	cfg, cfgErr := commission.FromHouse(res.House)
	if cfgErr != nil {
		logger.Warn().Err(cfgErr).Msg("house commission config is invalid")
		cfg = nil
	}

	out.Result, out.Warning = commission.Calculate(cfg, ev.Type, ev.Amount)
	cpaLeg := out.Result.PaidOnce()
	out.Result = commission.WithOverride(out.Result, ev.Type, ev.Commission)
	if out.Result.Rule == commission.RuleHouseOverride {
		out.Warning = nil
	}
	logCommission(logger, out)

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	conv := &models.Conversion{
		AffiliateID:    res.Affiliate.ID,
		HouseID:        res.House.ID,
		CustomerID:     ev.CustomerID,
		Type:           ev.Type,
		EventRef:       ev.EventRef,
		Amount:         roundCents(ev.Amount),
		Commission:     roundCents(out.Result.Commission),
		CommissionRule: string(out.Result.Rule),
		Status:         models.StatusSuccess,
		Metadata:       metadataJSON(ev.Metadata),
		ConvertedAt:    now().UTC(),
	}
	if conv.Commission.Valid {
		conv.Status = models.StatusPending
	}
	// CPA is keyed on (house, customer, type) only; the ref stays in metadata.
	if cpaLeg && conv.EventRef != "" {
		conv.Metadata = metadataJSON(withEventRef(ev.Metadata, conv.EventRef))
		conv.EventRef = ""
	}

	stored, duplicate, err := Record(db, conv)
	if err != nil {
		logger.Error().Err(err).Msg("failed to record conversion")
		return nil, err
	}
	out.Conversion = stored
	out.Duplicate = duplicate

	if duplicate {
		logger.Info().Uint("conversion_id", stored.ID).Msg("duplicate postback, returning existing conversion")
	} else {
		logger.Info().Uint("conversion_id", stored.ID).Msg("conversion recorded")
	}
	return out, nil
}

func logCommission(logger zerolog.Logger, out *Outcome) {
	ev := logger.Debug()
	switch {
	case out.Warning != nil:
		ev = logger.Warn().Err(out.Warning)
	case out.Result.Fallback:
		ev = logger.Warn().Bool("commission_fallback", true)
	}
	ev.Str("rule", string(out.Result.Rule)).
		Str("description", out.Result.Description).
		Msg("commission evaluated")
}

func roundCents(v decimal.NullDecimal) decimal.NullDecimal {
	if !v.Valid {
		return v
	}
	return decimal.NewNullDecimal(v.Decimal.Round(2))
}

func metadataJSON(m map[string]any) datatypes.JSON {
	if len(m) == 0 {
		return nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}

func withEventRef(m map[string]any, ref string) map[string]any {
	out := make(map[string]any, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	out["event_ref"] = ref
	return out
}

func orphanFrom(houseID uint, ev *Event) *models.OrphanPostback {
	payload := map[string]any{
		"event_type":  ev.RawType,
		"subid":       ev.SubID,
		"customer_id": ev.CustomerID,
	}
	if ev.Amount.Valid {
		payload["amount"] = ev.Amount.Decimal.String()
	}
	if len(ev.Metadata) > 0 {
		payload["metadata"] = ev.Metadata
	}
	return &models.OrphanPostback{
		HouseID:    houseID,
		SubID:      ev.SubID,
		CustomerID: ev.CustomerID,
		EventType:  ev.Type,
		EventRef:   ev.EventRef,
		Amount:     roundCents(ev.Amount),
		Payload:    metadataJSON(payload),
		Reason:     "affiliate_not_found",
	}
}
