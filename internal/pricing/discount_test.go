package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestDefaultBundlePolicy(t *testing.T) {
	policy := DefaultBundlePolicy()
	tests := []struct {
		services int
		rate     string
	}{
		{0, "0"},
		{1, "0.05"},
		{2, "0.05"},
		{3, "0.10"},
		{4, "0.10"},
		{12, "0.10"},
	}
	for _, tc := range tests {
		requireAmount(t, tc.rate, policy.Rate(tc.services))
	}
}

func TestParseTiers(t *testing.T) {
	tiers, err := ParseTiers("3:0.10, 1:0.05")
	require.NoError(t, err)
	policy, err := NewBundlePolicy(tiers)
	require.NoError(t, err)
	require.Equal(t, 1, policy.Tiers()[0].MinServices)
	requireAmount(t, "0.05", policy.Rate(2))
	requireAmount(t, "0.10", policy.Rate(3))

	for _, bad := range []string{"", "x", "1-0.05", "a:0.05", "1:abc", " , "} {
		_, err := ParseTiers(bad)
		require.Truef(t, errors.Is(err, ErrInvalidTiers), "expected ErrInvalidTiers for %q, got %v", bad, err)
	}
}

func TestNewBundlePolicyRejectsInvalidTiers(t *testing.T) {
	cases := [][]Tier{
		{{MinServices: 0, Rate: decimal.RequireFromString("0.05")}},
		{{MinServices: 1, Rate: decimal.RequireFromString("-0.05")}},
		{{MinServices: 1, Rate: decimal.RequireFromString("1.5")}},
		{{MinServices: 2, Rate: decimal.RequireFromString("0.05")}, {MinServices: 2, Rate: decimal.RequireFromString("0.1")}},
	}
	for _, tiers := range cases {
		_, err := NewBundlePolicy(tiers)
		require.ErrorIs(t, err, ErrInvalidTiers)
	}
}
