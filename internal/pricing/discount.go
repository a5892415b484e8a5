package pricing

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidTiers is returned when a bundle tier list cannot be parsed.
var ErrInvalidTiers = errors.New("invalid bundle discount tiers")

// Tier grants Rate once at least MinServices services are bundled.
type Tier struct {
	MinServices int
	Rate        Money
}

// BundlePolicy maps the number of bundled services to a discount rate.
// Tiers are flat steps; there is no interpolation between them.
type BundlePolicy struct {
	tiers []Tier
}

// DefaultTiers is 5% for one or two services and 10% from three services.
func DefaultTiers() []Tier {
	return []Tier{
		{MinServices: 1, Rate: decimal.New(5, -2)},
		{MinServices: 3, Rate: decimal.New(10, -2)},
	}
}

// NewBundlePolicy builds a policy from tiers in any order.
func NewBundlePolicy(tiers []Tier) (BundlePolicy, error) {
	sorted := make([]Tier, 0, len(tiers))
	for _, t := range tiers {
		if t.MinServices < 1 {
			return BundlePolicy{}, fmt.Errorf("%w: minimum service count must be at least 1, got %d", ErrInvalidTiers, t.MinServices)
		}
		if t.Rate.IsNegative() || t.Rate.GreaterThan(decimal.NewFromInt(1)) {
			return BundlePolicy{}, fmt.Errorf("%w: rate %s out of range [0,1]", ErrInvalidTiers, t.Rate)
		}
		sorted = append(sorted, t)
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].MinServices < sorted[j].MinServices })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].MinServices == sorted[i-1].MinServices {
			return BundlePolicy{}, fmt.Errorf("%w: duplicate tier for %d services", ErrInvalidTiers, sorted[i].MinServices)
		}
	}
	return BundlePolicy{tiers: sorted}, nil
}

// DefaultBundlePolicy returns the policy built from DefaultTiers.
func DefaultBundlePolicy() BundlePolicy {
	return BundlePolicy{tiers: DefaultTiers()}
}

// ParseTiers reads a comma separated "minServices:rate" list, e.g. "1:0.05,3:0.10".
func ParseTiers(raw string) ([]Tier, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: empty tier list", ErrInvalidTiers)
	}
	var tiers []Tier
	for _, part := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		minRaw, rateRaw, ok := strings.Cut(trimmed, ":")
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTiers, trimmed)
		}
		min, err := strconv.Atoi(strings.TrimSpace(minRaw))
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidTiers, trimmed, err)
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(rateRaw))
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidTiers, trimmed, err)
		}
		tiers = append(tiers, Tier{MinServices: min, Rate: rate})
	}
	if len(tiers) == 0 {
		return nil, fmt.Errorf("%w: no tiers in %q", ErrInvalidTiers, raw)
	}
	return tiers, nil
}

// Tiers returns a copy of the configured tiers in ascending order.
func (p BundlePolicy) Tiers() []Tier {
	out := make([]Tier, len(p.tiers))
	copy(out, p.tiers)
	return out
}

// Rate returns the discount rate for the given number of bundled services.
func (p BundlePolicy) Rate(services int) Money {
	rate := Zero
	for _, t := range p.tiers {
		if services < t.MinServices {
			break
		}
		rate = t.Rate
	}
	return rate
}
