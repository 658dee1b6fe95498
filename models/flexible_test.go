package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexibleString_UnmarshalJSON(t *testing.T) {
	var v struct {
		A FlexibleString `json:"a"`
		B FlexibleString `json:"b"`
		C FlexibleString `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": " 12.50 ", "b": 1000.10, "c": null}`), &v))
	assert.Equal(t, "12.50", v.A.String())
	assert.Equal(t, "1000.10", v.B.String())
	assert.Equal(t, "", v.C.String())
}

func TestFlexibleString_Decimal(t *testing.T) {
	valid := map[string]string{
		"1000":             "1000",
		"99,90":            "99.90",
		"5,5":              "5.5",
		"-120.00":          "-120",
		" 0.12345678 ":     "0.12345678",
		"9999999999999999": "9999999999999999",
	}
	for in, want := range valid {
		t.Run(in, func(t *testing.T) {
			got, err := FlexibleString(in).Decimal()
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(want)), got.String())
		})
	}

	invalid := []string{
		"1,000",
		"1.000,50",
		"1,000.50",
		"12,345",
		"1e5000000",
		"1E3",
		"10000000000000000",
		"0.123456789",
		"abc",
		"",
		"+5",
		".5",
	}
	for _, in := range invalid {
		t.Run("invalid "+in, func(t *testing.T) {
			_, err := FlexibleString(in).Decimal()
			assert.ErrorIs(t, err, ErrInvalidAmount)
		})
	}
}
