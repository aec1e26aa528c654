package arr

import "github.com/etnz/arr/date"

// Trend summarizes the latest monthly growth.
type Trend string

const (
	TrendStrong    Trend = "strong"    // growth above 5%
	TrendSteady    Trend = "steady"    // positive growth
	TrendDeclining Trend = "declining" // flat or negative growth
	TrendUndefined Trend = "undefined" // no baseline
)

// NewTrend classifies a monthly growth.
func NewTrend(g Growth) Trend {
	switch {
	case !g.Defined:
		return TrendUndefined
	case g.Rate > 5:
		return TrendStrong
	case g.Rate > 0:
		return TrendSteady
	default:
		return TrendDeclining
	}
}

// Momentum compares recent growth with the longer trailing average.
type Momentum string

const (
	Accelerating Momentum = "accelerating"
	Decelerating Momentum = "decelerating"
	Stable       Momentum = "stable"
	Unknown      Momentum = "unknown"
)

// Mix describes where the ARR is concentrated.
type Mix string

const (
	EnterpriseHeavy Mix = "enterprise-heavy" // more than 70% of ARR in the enterprise segment
	VolumeFocused   Mix = "volume-focused"   // less than 30%
	Balanced        Mix = "balanced"
)

// KPIs are the headline metrics of the latest month of a chain.
type KPIs struct {
	Month           date.Date `json:"month"`
	CurrentARR      Money     `json:"current_arr"`
	ARRChange       Money     `json:"arr_change"`
	ActiveCustomers int       `json:"active_customers"`
	CustomerChange  int       `json:"customer_change"`
	ARRPerCustomer  Money     `json:"arr_per_customer"`
	Growth          Growth    `json:"monthly_growth"`
	AverageGrowth   Growth    `json:"average_growth"` // trailing window, Defined when any month had a baseline
	RecentGrowth    Growth    `json:"recent_growth"`
	Trend           Trend     `json:"trend"`
	Momentum        Momentum  `json:"momentum"`
	Mix             Mix       `json:"mix"`
}

// NewKPIs computes the headline metrics of a non-empty chain.
//
// 'trailing' and 'recent' are the windows, in months, of the average and
// recent growth. 'enterprise' is the segment label used to classify the mix.
func NewKPIs(chain []Bridge, segments []SegmentAggregate, trailing, recent int, enterprise string) KPIs {
	if len(chain) == 0 {
		return KPIs{Trend: TrendUndefined, Momentum: Unknown}
	}
	latest := chain[len(chain)-1]
	k := KPIs{
		Month:           latest.Month,
		CurrentARR:      latest.Ending,
		ARRChange:       latest.NetChange,
		ActiveCustomers: latest.Customers,
		ARRPerCustomer:  latest.ARRPerCustomer(),
		Growth:          latest.Growth,
		Trend:           NewTrend(latest.Growth),
		Momentum:        Unknown,
	}
	if len(chain) > 1 {
		k.CustomerChange = latest.Customers - chain[len(chain)-2].Customers
	} else {
		k.CustomerChange = latest.Customers
	}

	avg, okAvg := TrailingGrowth(chain, trailing)
	rec, okRec := TrailingGrowth(chain, recent)
	k.AverageGrowth = Growth{Rate: avg, Defined: okAvg}
	k.RecentGrowth = Growth{Rate: rec, Defined: okRec}
	if okAvg && okRec {
		switch {
		case rec.Equal(avg):
			k.Momentum = Stable
		case rec > avg:
			k.Momentum = Accelerating
		default:
			k.Momentum = Decelerating
		}
	}

	k.Mix = VolumeFocused
	for _, s := range segments {
		if s.Segment != enterprise {
			continue
		}
		switch {
		case s.Share > 70:
			k.Mix = EnterpriseHeavy
		case s.Share >= 30:
			k.Mix = Balanced
		}
	}
	return k
}
