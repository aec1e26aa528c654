package arr

import (
	"encoding/json"

	"github.com/etnz/arr/date"
	"github.com/rotisserie/eris"
)

// Growth is a month-over-month growth rate.
//
// A rate is only Defined when the month had a positive starting ARR. An
// undefined growth carries a zero Rate and must not be mistaken for a flat
// month.
type Growth struct {
	Rate    Percent
	Defined bool
}

// NewGrowth computes the growth from 'starting' to 'ending'.
func NewGrowth(starting, ending Money) Growth {
	if !starting.IsPositive() {
		return Growth{}
	}
	rate, _ := ending.Sub(starting).Ratio(starting)
	return Growth{Rate: rate, Defined: true}
}

// String returns the signed rate, or "n/a" without a baseline.
func (g Growth) String() string {
	if !g.Defined {
		return "n/a"
	}
	return g.Rate.SignedString()
}

// MarshalJSON writes a defined rate as a number and an undefined one as null.
func (g Growth) MarshalJSON() ([]byte, error) {
	if !g.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(float64(g.Rate))
}

func (g *Growth) UnmarshalJSON(b []byte) error {
	var rate *float64
	if err := json.Unmarshal(b, &rate); err != nil {
		return err
	}
	if rate == nil {
		*g = Growth{}
		return nil
	}
	*g = Growth{Rate: Percent(*rate), Defined: true}
	return nil
}

// Bridge is one month of the ARR rollforward.
//
// Starting is the previous month Ending (zero for the first month), Ending is
// the independently computed point-in-time ARR of the month. Contraction and
// Churn are never positive so that the components always add up.
type Bridge struct {
	Month       date.Date `json:"month"`
	Starting    Money     `json:"starting_arr"`
	New         Money     `json:"new_arr"`
	Expansion   Money     `json:"expansion_arr"`
	Contraction Money     `json:"contraction_arr"`
	Churn       Money     `json:"churned_arr"`
	Ending      Money     `json:"ending_arr"`
	NetChange   Money     `json:"net_change"`
	Growth      Growth    `json:"growth_rate_pct"`
	Customers   int       `json:"active_customers"`
}

// Computed returns the ending ARR implied by the bridge arithmetic.
func (b Bridge) Computed() Money {
	return b.Starting.Add(b.NetNew())
}

// NetNew returns the sum of the four bridge components.
func (b Bridge) NetNew() Money {
	return b.New.Add(b.Expansion).Add(b.Contraction).Add(b.Churn)
}

// Drift returns how far the snapshot Ending is from the bridge arithmetic.
func (b Bridge) Drift() Money { return b.Ending.Sub(b.Computed()) }

// ARRPerCustomer returns the ending ARR per active customer, zero without customers.
func (b Bridge) ARRPerCustomer() Money { return b.Ending.Div(b.Customers) }

// BuildChain links monthly sums and snapshots into the rollforward.
//
// Both inputs must cover the same months, in the same ascending order.
func BuildChain(sums []MonthlySums, snapshots []Snapshot) ([]Bridge, error) {
	if len(sums) != len(snapshots) {
		return nil, eris.Errorf("cannot chain %d monthly sums with %d snapshots", len(sums), len(snapshots))
	}
	chain := make([]Bridge, 0, len(sums))
	var previous Money
	for i, s := range sums {
		snap := snapshots[i]
		if s.Month != snap.Month {
			return nil, eris.Errorf("month %d: sums for %s do not match snapshot for %s", i, s.Month.MonthKey(), snap.Month.MonthKey())
		}
		if i > 0 && s.Month != sums[i-1].Month.AddMonths(1) {
			return nil, eris.Errorf("month %d: %s does not follow %s", i, s.Month.MonthKey(), sums[i-1].Month.MonthKey())
		}
		starting := M(0, snap.ARR.Currency())
		if i > 0 {
			starting = previous
		}
		b := Bridge{
			Month:       s.Month,
			Starting:    starting,
			New:         s.New,
			Expansion:   s.Expansion,
			Contraction: s.Contraction,
			Churn:       s.Churn,
			Ending:      snap.ARR,
			NetChange:   snap.ARR.Sub(starting),
			Growth:      NewGrowth(starting, snap.ARR),
			Customers:   snap.Customers,
		}
		chain = append(chain, b)
		previous = b.Ending
	}
	return chain, nil
}

// Rollup merges consecutive monthly bridges into one bridge per period.
//
// The merged bridge starts where its first month starts, ends where its last
// month ends and sums the components in between, so it reconciles whenever
// its months do.
func Rollup(chain []Bridge, period date.Period) []Bridge {
	var out []Bridge
	for _, b := range chain {
		end := b.Month.EndOf(period)
		if n := len(out); n > 0 && out[n-1].Month.EndOf(period) == end {
			last := &out[n-1]
			last.Month = b.Month
			last.New = last.New.Add(b.New)
			last.Expansion = last.Expansion.Add(b.Expansion)
			last.Contraction = last.Contraction.Add(b.Contraction)
			last.Churn = last.Churn.Add(b.Churn)
			last.Ending = b.Ending
			last.Customers = b.Customers
			last.NetChange = last.Ending.Sub(last.Starting)
			last.Growth = NewGrowth(last.Starting, last.Ending)
			continue
		}
		out = append(out, b)
	}
	return out
}
