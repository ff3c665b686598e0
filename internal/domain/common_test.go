package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrengthFromConfluence(t *testing.T) {
	tests := []struct {
		count int
		want  Strength
	}{
		{0, StrengthWeak},
		{1, StrengthWeak},
		{2, StrengthModerate},
		{3, StrengthModerate},
		{4, StrengthStrong},
		{5, StrengthStrong},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StrengthFromConfluence(tt.count), "count=%d", tt.count)
	}
}

func TestPolarity_Direction(t *testing.T) {
	assert.Equal(t, Buy, Bullish.Direction())
	assert.Equal(t, Sell, Bearish.Direction())
	assert.Equal(t, Hold, Polarity("").Direction())
}

func TestEvidence_Confluence(t *testing.T) {
	assert.Equal(t, 0, Evidence{}.Confluence())
	assert.Equal(t, 2, Evidence{TrendCross: true, LiquiditySweep: true}.Confluence())
	assert.Equal(t, 5, Evidence{TrendCross: true, Momentum: true, OrderBlock: true, FairValueGap: true, LiquiditySweep: true}.Confluence())

	sig := &Signal{Evidence: Evidence{Momentum: true}}
	assert.Equal(t, 1, sig.Confluence())
}
