package pricing

// Line is the resolved cost of one selected service.
type Line struct {
	ID   string `json:"id"`
	Mode Mode   `json:"mode,omitempty"`
	Cost Money  `json:"cost"`
}

// Breakdown aggregates computed booking price components.
type Breakdown struct {
	Nights           int    `json:"nights"`
	LodgingSubtotal  Money  `json:"lodgingSubtotal"`
	ServicesSubtotal Money  `json:"servicesSubtotal"`
	DiscountRate     Money  `json:"discountRate"`
	DiscountAmount   Money  `json:"discountAmount"`
	Total            Money  `json:"total"`
	Lines            []Line `json:"lines"`
}

// Calculator is the single place booking totals are derived. Quote previews
// and booking submission both go through it.
type Calculator struct {
	policy BundlePolicy
}

// NewCalculator creates a Calculator using the provided bundle policy.
func NewCalculator(policy BundlePolicy) *Calculator {
	return &Calculator{policy: policy}
}

var defaultCalculator = NewCalculator(DefaultBundlePolicy())

// Compute calculates the booking breakdown with the default bundle policy.
func Compute(stay Stay, selections []Selection) Breakdown {
	return defaultCalculator.Compute(stay, selections)
}

// Policy returns the bundle policy used by the calculator.
func (c *Calculator) Policy() BundlePolicy {
	if c == nil {
		return defaultCalculator.policy
	}
	return c.policy
}

// Compute calculates the booking breakdown. It has no side effects and never
// fails: incomplete input produces zero-valued components.
func (c *Calculator) Compute(stay Stay, selections []Selection) Breakdown {
	nights, lodging := StayCost(stay)

	services := Zero
	lines := make([]Line, 0, len(selections))
	for _, s := range selections {
		cost := LineCost(s)
		services = services.Add(cost)
		line := Line{ID: s.ID, Cost: cost}
		if s.Rate != nil {
			line.Mode = s.Rate.Mode()
		}
		lines = append(lines, line)
	}

	rate := c.Policy().Rate(len(selections))
	gross := lodging.Add(services)
	discount := gross.Mul(rate)

	return Breakdown{
		Nights:           nights,
		LodgingSubtotal:  lodging,
		ServicesSubtotal: services,
		DiscountRate:     rate,
		DiscountAmount:   discount,
		Total:            gross.Sub(discount),
		Lines:            lines,
	}
}
