package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTicker(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"aapl", "AAPL"},
		{"  msft ", "MSFT"},
		{"$tsla", "TSLA"},
		{"spx", "^GSPC"},
		{"SP500", "^GSPC"},
		{"dow", "^DJI"},
		{"nasdaq", "^IXIC"},
		{"russell2000", "^RUT"},
		{"vix", "^VIX"},
		{"^gspc", "^GSPC"},
		{"brk.b", "BRK-B"},
		{"VOD.L", "VOD.L"},
		{"SHOP.TO", "SHOP.TO"},
		{"EURUSD=X", "EURUSD=X"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeTicker(tt.input), "NormalizeTicker(%q)", tt.input)
	}
}

func TestIndexName(t *testing.T) {
	assert.Equal(t, "S&P 500", IndexName("^GSPC"))
	assert.Equal(t, "Dow Jones", IndexName("dow"))
	assert.Equal(t, "AAPL", IndexName("aapl"))
}

func TestRounding(t *testing.T) {
	assert.Equal(t, 1.23, Round2(1.2349))
	assert.Equal(t, 1.24, Round2(1.235000001))
	assert.Equal(t, 0.123, Round(0.12345, 3))
	assert.Equal(t, 1.01, Round2(1.005))
	assert.Equal(t, -2.5, Round(-2.45, 1))
	assert.Equal(t, 1.23, Pct(0.0123))
	assert.Nil(t, PctPtr(nil))
	assert.Equal(t, 25.0, *PctPtr(Ptr(0.25)))
	assert.Nil(t, Round2Ptr(nil))
}

func TestFormatCompact(t *testing.T) {
	tests := []struct {
		amount   float64
		currency string
		want     string
	}{
		{2.35e12, "USD", "$2.35T"},
		{512e9, "", "$512B"},
		{1.5e6, "EUR", "€1.5M"},
		{999.5, "USD", "$999.5"},
		{-3e9, "USD", "-$3B"},
		{4e6, "XYZ", "XYZ 4M"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCompact(tt.amount, tt.currency))
	}
}

func TestFormatVolume(t *testing.T) {
	assert.Equal(t, "1,234,567", FormatVolume(1234567))
	assert.Equal(t, "0", FormatVolume(0))
}

func TestDateOf(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	// 2024-03-04 21:00 EST is already 03-05 in UTC.
	ts := time.Date(2024, 3, 4, 21, 0, 0, 0, est)
	got := DateOf(ts)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), got)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("2024/02/29")
	assert.Error(t, err)
	_, err = ParseDate("2023-02-29")
	assert.Error(t, err)
}
