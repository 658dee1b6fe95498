package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// FlexibleString accepts a JSON string or number. Numbers keep their literal
// text so amounts never pass through float64.
type FlexibleString string

func (fs *FlexibleString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*fs = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*fs = FlexibleString(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*fs = FlexibleString(n.String())
		return nil
	}

	return fmt.Errorf("unable to parse %s as FlexibleString", string(data))
}

func (fs FlexibleString) String() string {
	return string(fs)
}

var (
	ErrInvalidAmount = errors.New("invalid amount")

	// numeric(18,2) holds at most 16 integer digits
	plainDecimal = regexp.MustCompile(`^-?\d{1,16}(\.\d{1,8})?$`)
	commaDecimal = regexp.MustCompile(`^-?\d{1,16},\d{1,2}$`)
	maxAmount    = decimal.New(1, 16)
)

// Decimal parses the value as a plain decimal. A comma is accepted as the
// decimal separator only before one or two digits ("99,90"); thousands
// separators and exponents are rejected.
func (fs FlexibleString) Decimal() (decimal.Decimal, error) {
	s := strings.TrimSpace(string(fs))
	if commaDecimal.MatchString(s) {
		s = strings.Replace(s, ",", ".", 1)
	}
	if !plainDecimal.MatchString(s) {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidAmount, string(fs))
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidAmount, string(fs))
	}
	if d.Abs().GreaterThanOrEqual(maxAmount) {
		return decimal.Decimal{}, fmt.Errorf("%w: %q out of range", ErrInvalidAmount, string(fs))
	}
	return d, nil
}
