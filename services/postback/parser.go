package postback

import (
	"betaffiliate/models"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// RawInput is an inbound postback as received: query parameters, optional
// body and the event segment of the path when the route carries one.
type RawInput struct {
	Query       map[string]string
	Body        []byte
	ContentType string
	PathEvent   string
}

// Event is a parsed and normalized postback.
type Event struct {
	Type       models.EventType
	RawType    string
	SubID      string
	CustomerID string
	EventRef   string
	Amount     decimal.NullDecimal
	Commission decimal.NullDecimal
	Metadata   map[string]any
}

var eventSynonyms = map[string]models.EventType{
	"click":             models.EventClick,
	"clicks":            models.EventClick,
	"visit":             models.EventClick,
	"register":          models.EventRegistration,
	"registration":      models.EventRegistration,
	"registered":        models.EventRegistration,
	"signup":            models.EventRegistration,
	"sign_up":           models.EventRegistration,
	"reg":               models.EventRegistration,
	"lead":              models.EventRegistration,
	"deposit":           models.EventDeposit,
	"first_deposit":     models.EventDeposit,
	"ftd":               models.EventDeposit,
	"recurring_deposit": models.EventRecurringDeposit,
	"redeposit":         models.EventRecurringDeposit,
	"re_deposit":        models.EventRecurringDeposit,
	"revenue":           models.EventRevenue,
	"profit":            models.EventRevenue,
	"net_revenue":       models.EventRevenue,
	"ngr":               models.EventRevenue,
	"ggr":               models.EventRevenue,
	"withdrawal":        models.EventWithdrawal,
	"withdraw":          models.EventWithdrawal,
	"payout":            models.EventPayout,
}

// field aliases, first match wins
var (
	typeKeys       = []string{"event_type", "event", "type"}
	subIDKeys      = []string{"subid", "sub_id", "affiliate", "aff_id"}
	customerKeys   = []string{"customer_id", "customerId", "player_id", "user_id"}
	eventRefKeys   = []string{"event_id", "transaction_id", "txn_id"}
	amountKeys     = []string{"amount", "value"}
	commissionKeys = []string{"commission"}
)

// credential and routing keys never end up in metadata
var reservedKeys = map[string]bool{
	"token":    true,
	"api_key":  true,
	"apikey":   true,
	"house_id": true,
	"house":    true,
	"metadata": true,
}

// NormalizeEventType maps a house-specific event name onto the canonical enum.
func NormalizeEventType(raw string) (models.EventType, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	t, ok := eventSynonyms[key]
	return t, ok
}

// ParseEvent extracts a postback event from query parameters and body.
// Body fields win over query fields. The path event, when present, wins over both.
func ParseEvent(in RawInput) (*Event, error) {
	fields, meta, err := collectFields(in)
	if err != nil {
		return nil, err
	}

	rawType := first(fields, typeKeys)
	if p := strings.TrimSpace(in.PathEvent); p != "" {
		rawType = p
	}

	ev := &Event{
		RawType:    rawType,
		SubID:      first(fields, subIDKeys),
		CustomerID: first(fields, customerKeys),
		EventRef:   first(fields, eventRefKeys),
		Metadata:   meta,
	}

	var missing []string
	if rawType == "" {
		missing = append(missing, "event_type")
	}
	if ev.SubID == "" {
		missing = append(missing, "subid")
	}
	if ev.CustomerID == "" {
		missing = append(missing, "customer_id")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformedEvent, strings.Join(missing, ", "))
	}

	t, ok := NormalizeEventType(rawType)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported event_type %q", ErrMalformedEvent, rawType)
	}
	ev.Type = t

	if raw := first(fields, amountKeys); raw != "" {
		amt, err := models.FlexibleString(raw).Decimal()
		if err != nil {
			return nil, fmt.Errorf("%w: invalid amount %q", ErrMalformedEvent, raw)
		}
		if amt.IsNegative() && t != models.EventRevenue {
			return nil, fmt.Errorf("%w: negative amount on %s event", ErrMalformedEvent, t)
		}
		ev.Amount = decimal.NewNullDecimal(amt)
	}

	if raw := first(fields, commissionKeys); raw != "" {
		c, err := models.FlexibleString(raw).Decimal()
		if err != nil || c.IsNegative() {
			return nil, fmt.Errorf("%w: invalid commission %q", ErrMalformedEvent, raw)
		}
		ev.Commission = decimal.NewNullDecimal(c)
	}

	return ev, nil
}

func collectFields(in RawInput) (map[string]string, map[string]any, error) {
	fields := make(map[string]string, len(in.Query))
	meta := make(map[string]any)

	for k, v := range in.Query {
		fields[k] = strings.TrimSpace(v)
	}
	if v, ok := in.Query["metadata"]; ok && strings.TrimSpace(v) != "" {
		var m map[string]any
		if err := json.Unmarshal([]byte(v), &m); err != nil {
			return nil, nil, fmt.Errorf("%w: metadata must be a JSON object", ErrMalformedEvent)
		}
		for mk, mv := range m {
			meta[mk] = mv
		}
	}

	if len(strings.TrimSpace(string(in.Body))) > 0 {
		ct := strings.ToLower(in.ContentType)
		switch {
		case strings.Contains(ct, "application/x-www-form-urlencoded"):
			values, err := url.ParseQuery(string(in.Body))
			if err != nil {
				return nil, nil, fmt.Errorf("%w: invalid form body", ErrMalformedEvent)
			}
			for k := range values {
				fields[k] = strings.TrimSpace(values.Get(k))
			}
		default:
			if err := mergeJSONBody(in.Body, fields, meta); err != nil {
				return nil, nil, err
			}
		}
	}

	known := map[string]bool{}
	for _, keys := range [][]string{typeKeys, subIDKeys, customerKeys, eventRefKeys, amountKeys, commissionKeys} {
		for _, k := range keys {
			known[k] = true
		}
	}
	for k, v := range fields {
		if known[k] || reservedKeys[k] {
			continue
		}
		if _, set := meta[k]; !set {
			meta[k] = v
		}
	}

	return fields, meta, nil
}

func mergeJSONBody(body []byte, fields map[string]string, meta map[string]any) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return fmt.Errorf("%w: body must be a JSON object", ErrMalformedEvent)
	}

	for k, v := range raw {
		if k == "metadata" {
			var m map[string]any
			if err := json.Unmarshal(v, &m); err != nil {
				return fmt.Errorf("%w: metadata must be a JSON object", ErrMalformedEvent)
			}
			for mk, mv := range m {
				meta[mk] = mv
			}
			continue
		}

		var fs models.FlexibleString
		if err := json.Unmarshal(v, &fs); err != nil {
			// nested values are kept as metadata only
			var nested any
			if json.Unmarshal(v, &nested) == nil {
				meta[k] = nested
			}
			continue
		}
		if fs != "" {
			fields[k] = fs.String()
		}
	}
	return nil
}

func first(fields map[string]string, keys []string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(fields[k]); v != "" {
			return v
		}
	}
	return ""
}

// MetadataKeys returns the sorted metadata keys, used for log lines.
func (e *Event) MetadataKeys() []string {
	keys := make([]string, 0, len(e.Metadata))
	for k := range e.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
