package arr

import (
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
)

// Band is a segment bucket: every ARR amount up to Upper included, and above
// the previous band Upper, belongs to Label. Upper is thus the largest amount
// of the band. A zero Upper marks the last, unbounded band.
type Band struct {
	Upper decimal.Decimal `json:"upper"`
	Label string          `json:"label"`
}

// Unbounded reports whether the band has no upper limit.
func (b Band) Unbounded() bool { return b.Upper.IsZero() }

// Bands is an ascending list of segment buckets.
type Bands []Band

// DefaultBands are the annualized buckets used when none are configured.
var DefaultBands = Bands{
	{Upper: decimal.NewFromInt(600), Label: "SMB"},
	{Upper: decimal.NewFromInt(2400), Label: "Mid-Market"},
	{Upper: decimal.NewFromInt(6000), Label: "Enterprise"},
	{Label: "Strategic"},
}

// Validate checks that bands are strictly ascending, uniquely labelled and
// that only the last one is unbounded.
func (bs Bands) Validate() error {
	if len(bs) == 0 {
		return eris.New("segments: at least one band is required")
	}
	labels := make(map[string]bool, len(bs))
	for i, b := range bs {
		if b.Label == "" {
			return eris.Errorf("segments: band %d has no label", i)
		}
		if labels[b.Label] {
			return eris.Errorf("segments: label %q is used twice", b.Label)
		}
		labels[b.Label] = true
		last := i == len(bs)-1
		switch {
		case last && !b.Unbounded():
			return eris.Errorf("segments: last band %q must be unbounded", b.Label)
		case !last && b.Unbounded():
			return eris.Errorf("segments: only the last band can be unbounded, not %q", b.Label)
		case !last && !b.Upper.IsPositive():
			return eris.Errorf("segments: band %q upper bound must be positive", b.Label)
		case i > 0 && !last && !b.Upper.GreaterThan(bs[i-1].Upper):
			return eris.Errorf("segments: band %q upper bound %s is not above %s", b.Label, b.Upper, bs[i-1].Upper)
		}
	}
	return nil
}

// Has reports whether a band is labelled 'label'.
func (bs Bands) Has(label string) bool {
	for _, b := range bs {
		if b.Label == label {
			return true
		}
	}
	return false
}

// Assign returns the label of the band containing 'arr'. Amounts of zero or
// less belong to the first band.
func (bs Bands) Assign(arr Money) string {
	for _, b := range bs {
		if b.Unbounded() || arr.Decimal().LessThanOrEqual(b.Upper) {
			return b.Label
		}
	}
	// unreachable with valid bands.
	return ""
}

// SegmentAggregate is the share of active ARR held by a segment.
type SegmentAggregate struct {
	Segment       string  `json:"segment"`
	ARR           Money   `json:"arr"`
	Customers     int     `json:"customers"`
	Subscriptions int     `json:"subscriptions"`
	Share         Percent `json:"percentage_of_total"`
}

// SegmentBreakdown buckets active subscriptions by ARR amount.
//
// Every band is reported, in band order, even when empty. Shares use the total
// ARR as denominator and are all zero when that total is zero.
func SegmentBreakdown(active []Subscription, bands Bands, currency string) []SegmentAggregate {
	out := make([]SegmentAggregate, len(bands))
	index := make(map[string]int, len(bands))
	customers := make([]map[string]struct{}, len(bands))
	for i, b := range bands {
		out[i] = SegmentAggregate{Segment: b.Label, ARR: M(0, currency)}
		index[b.Label] = i
		customers[i] = make(map[string]struct{})
	}

	total := M(0, currency)
	for _, s := range active {
		i, ok := index[bands.Assign(s.ARR)]
		if !ok {
			continue
		}
		out[i].ARR = out[i].ARR.Add(s.ARR)
		out[i].Subscriptions++
		customers[i][customerKey(s)] = struct{}{}
		total = total.Add(s.ARR)
	}

	for i := range out {
		out[i].Customers = len(customers[i])
		if share, ok := out[i].ARR.Ratio(total); ok {
			out[i].Share = share
		}
	}
	return out
}

// SegmentTotal returns the ARR summed over all segments.
func SegmentTotal(segments []SegmentAggregate, currency string) Money {
	total := M(0, currency)
	for _, s := range segments {
		total = total.Add(s.ARR)
	}
	return total
}
