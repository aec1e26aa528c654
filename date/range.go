package date

import "iter"

// Range is an inclusive span of days.
type Range struct{ From, To Date }

// Contains reports whether 'date' is within the range, boundaries included.
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }

// Months iterates over the month-ends covered by the range.
func (r Range) Months() iter.Seq[Date] { return Months(r.From, r.To) }

// Len returns the number of calendar months touched by the range.
func (r Range) Len() int {
	if r.To.Before(r.From) {
		return 0
	}
	return (r.To.Year()-r.From.Year())*12 + int(r.To.Month()-r.From.Month()) + 1
}
