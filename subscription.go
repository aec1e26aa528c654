package arr

import (
	"fmt"

	"github.com/etnz/arr/date"
)

// Subscription is a recurring contract contributing ARR while it is active.
//
// Start is inclusive, End is exclusive. A zero End means the subscription is
// still running.
type Subscription struct {
	ID       string    `json:"id"`
	Customer string    `json:"customer"`
	Start    date.Date `json:"start"`
	End      date.Date `json:"end,omitzero"`
	ARR      Money     `json:"arr"`
	// Faults describes source values that could not be read. A subscription
	// with faults is a data integrity finding.
	Faults []string `json:"faults,omitempty"`
}

// IsOpen reports whether the subscription has no end date.
func (s Subscription) IsOpen() bool { return s.End.IsZero() }

// ActiveOn reports whether the subscription contributes ARR on day 'on'.
//
// The interval is half-open: a subscription ending exactly on 'on' is no
// longer active that day.
func (s Subscription) ActiveOn(on date.Date) bool {
	if s.Start.After(on) {
		return false
	}
	return s.IsOpen() || s.End.After(on)
}

// Check returns a description of every data integrity fault of s, or nil.
func (s Subscription) Check() []string {
	faults := append([]string(nil), s.Faults...)
	if s.ID == "" {
		faults = append(faults, "missing subscription id")
	}
	if s.Start.IsZero() {
		faults = append(faults, "missing start date")
	}
	if !s.IsOpen() && !s.End.After(s.Start) {
		faults = append(faults, fmt.Sprintf("end date %s is not after start date %s", s.End, s.Start))
	}
	if s.ARR.IsNegative() {
		faults = append(faults, fmt.Sprintf("negative arr amount %s", s.ARR.Decimal()))
	}
	return faults
}
