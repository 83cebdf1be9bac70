package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPricing_PriceFor(t *testing.T) {
	p := NewPricingService()

	tests := []struct {
		name    string
		hours   int
		want    string
		wantErr bool
	}{
		{"single block", 48, "50", false},
		{"two blocks", 96, "100", false},
		{"three blocks", 144, "150", false},
		{"week bundle", 168, "150", false},
		{"four blocks", 192, "200", false},
		{"zero", 0, "", true},
		{"negative", -48, "", true},
		{"off-grid", 50, "", true},
		{"under a block", 24, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.PriceFor(tt.hours)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"want %s got %s", tt.want, got)
		})
	}
}

func TestPricing_WeekBundleBeatsBlocks(t *testing.T) {
	p := NewPricingService()

	week, err := p.PriceFor(168)
	require.NoError(t, err)
	threeBlocks, err := p.PriceFor(144)
	require.NoError(t, err)

	// 168h costs the same as 144h: the extra day is the bundle discount.
	assert.True(t, week.Equal(threeBlocks))
}

func TestPricing_Breakdown(t *testing.T) {
	p := NewPricingService()

	assert.Equal(t, "2 x 48h = $100", p.Breakdown(96))
	assert.Equal(t, "1 week = $150 (bundle)", p.Breakdown(168))
	assert.Empty(t, p.Breakdown(7))
}
