package arr

import "github.com/etnz/arr/date"

// MonthlySummary is the flat, per month view of the chain used by reports and
// exports.
type MonthlySummary struct {
	Month          date.Date `json:"month"`
	ARR            Money     `json:"current_arr"`
	Customers      int       `json:"active_customers"`
	ARRPerCustomer Money     `json:"arr_per_customer"`
	New            Money     `json:"new_arr"`
	Expansion      Money     `json:"expansion_arr"`
	Contraction    Money     `json:"contraction_arr"`
	Churn          Money     `json:"churned_arr"`
	NetNew         Money     `json:"net_new_arr"`
	PreviousARR    Money     `json:"previous_arr"`
	GrowthAmount   Money     `json:"arr_growth_amount"`
	Growth         Growth    `json:"arr_growth_rate"`
}

// Summarize flattens a chain into monthly summaries.
func Summarize(chain []Bridge) []MonthlySummary {
	out := make([]MonthlySummary, len(chain))
	for i, b := range chain {
		out[i] = MonthlySummary{
			Month:          b.Month,
			ARR:            b.Ending,
			Customers:      b.Customers,
			ARRPerCustomer: b.ARRPerCustomer(),
			New:            b.New,
			Expansion:      b.Expansion,
			Contraction:    b.Contraction,
			Churn:          b.Churn,
			NetNew:         b.NetNew(),
			PreviousARR:    b.Starting,
			GrowthAmount:   b.NetChange,
			Growth:         b.Growth,
		}
	}
	return out
}
