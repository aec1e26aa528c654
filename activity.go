package arr

import (
	"strings"

	"github.com/etnz/arr/date"
)

// Active returns the subscriptions active on day 'on', in their input order.
func Active(subs []Subscription, on date.Date) []Subscription {
	active := make([]Subscription, 0, len(subs))
	for _, s := range subs {
		if s.ActiveOn(on) {
			active = append(active, s)
		}
	}
	return active
}

// Snapshot is the point-in-time ARR of a month, computed directly from the
// subscriptions active on the last day of that month.
type Snapshot struct {
	Month         date.Date `json:"month"` // last calendar day of the month
	ARR           Money     `json:"arr"`
	Customers     int       `json:"customers"`     // distinct active customers
	Subscriptions int       `json:"subscriptions"` // active subscriptions
}

// NewSnapshot computes the snapshot of the month containing 'month'.
func NewSnapshot(subs []Subscription, month date.Date, currency string) Snapshot {
	on := month.EndOf(date.Monthly)
	s := Snapshot{Month: on, ARR: M(0, currency)}
	customers := make(map[string]struct{})
	for _, sub := range subs {
		if !sub.ActiveOn(on) {
			continue
		}
		s.ARR = s.ARR.Add(sub.ARR)
		s.Subscriptions++
		customers[customerKey(sub)] = struct{}{}
	}
	s.Customers = len(customers)
	return s
}

// ARRPerCustomer returns the average ARR of an active customer, zero when
// there is none.
func (s Snapshot) ARRPerCustomer() Money { return s.ARR.Div(s.Customers) }

// customerKey falls back on the subscription id for anonymous subscriptions,
// so that each of them counts as its own customer.
func customerKey(s Subscription) string {
	if c := strings.TrimSpace(s.Customer); c != "" {
		return "c:" + c
	}
	return "s:" + s.ID
}

// CheckSubscriptions splits subscriptions into valid ones and a finding for
// every excluded record.
func CheckSubscriptions(subs []Subscription) (valid []Subscription, findings Findings) {
	valid = make([]Subscription, 0, len(subs))
	seen := make(map[string]bool, len(subs))
	for _, s := range subs {
		faults := s.Check()
		if s.ID != "" && seen[s.ID] {
			faults = append(faults, "duplicate subscription id")
		}
		if len(faults) > 0 {
			findings = append(findings, Finding{
				Kind:     DataIntegrity,
				Severity: SeverityError,
				Record:   "subscription " + s.ID,
				Message:  strings.Join(faults, "; "),
			})
			continue
		}
		seen[s.ID] = true
		valid = append(valid, s)
	}
	return valid, findings
}

// CheckTransactions splits transactions into valid ones and a finding for
// every excluded record.
func CheckTransactions(txs []Transaction) (valid []Transaction, findings Findings) {
	valid = make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if faults := tx.Check(); len(faults) > 0 {
			findings = append(findings, Finding{
				Kind:     DataIntegrity,
				Severity: SeverityError,
				Record:   "transaction " + tx.ID,
				Message:  strings.Join(faults, "; "),
			})
			continue
		}
		valid = append(valid, tx)
	}
	return valid, findings
}
