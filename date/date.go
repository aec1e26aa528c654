// Package date provides a day-granularity calendar date and the month
// arithmetic the rollforward engine is built on.
package date

import (
	"encoding/json"
	"iter"
	"time"

	"github.com/rotisserie/eris"
)

const readDateFormat = "2006-1-2" // Permissive read date format (allows single-digit month/day).

// DateFormat is the format used to represent dates as strings in ISO-8601 format.
const DateFormat = "2006-01-02" // write date format

// MonthFormat is the format of a calendar month key.
const MonthFormat = "2006-01"

// Date represents a date with day-level granularity.
type Date struct {
	y int
	m time.Month
	d int
}

// time returns a time.Time that is a canonical representation of that day (at midnight UTC).
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// New returns a normalized Date for the given year, month, and day.
func New(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// Year returns current year.
func (d Date) Year() int { return d.y }

// Month returns the month of the date.
func (d Date) Month() time.Month { return d.m }

// Day returns current day of the month.
func (d Date) Day() int { return d.d }

// IsZero returns true if the date is the zero value.
func (d Date) IsZero() bool { return d.y == 0 && d.m == 0 && d.d == 0 }

// Before reports whether the day d is before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether the day d is after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// Compare returns -1, 0 or +1 depending on d being before, equal or after x.
func (d Date) Compare(x Date) int { return d.time().Compare(x.time()) }

// Add returns a new Date with the given number of days added.
func (d Date) Add(i int) Date { return New(d.y, d.m, d.d+i) }

// AddMonths returns the end of the month that is i months away from d's month.
//
// It always lands on a month-end, so that adding one month to January 31st
// gives February 28th (or 29th) instead of overflowing into March.
func (d Date) AddMonths(i int) Date { return New(d.y, d.m+time.Month(i)+1, 0) }

// Today returns the current date.
func Today() Date { return New(time.Now().Date()) }

// String format the date in its standard format. The zero Date is "".
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.time().Format(DateFormat)
}

// Format formats the date using a time layout.
func (d Date) Format(layout string) string { return d.time().Format(layout) }

// MonthKey returns the calendar month of d as "YYYY-MM".
func (d Date) MonthKey() string { return d.time().Format(MonthFormat) }

// Parse parses a Date from a string. It is lenient and accepts formats like "2025-7-1".
func Parse(str string) (Date, error) {
	on, err := time.Parse(readDateFormat, str)
	// We use a slightly more permisive format for read, to support 2025-7-1 instead of 2025-07-01
	if err != nil {
		return Date{}, eris.Wrapf(err, "invalid date %q want format %q", str, readDateFormat)
	}
	return New(on.Date()), nil
}

// ParseMonth parses a "YYYY-MM" month key and returns the last day of that month.
func ParseMonth(str string) (Date, error) {
	on, err := time.Parse(MonthFormat, str)
	if err != nil {
		return Date{}, eris.Wrapf(err, "invalid month %q want format %q", str, MonthFormat)
	}
	return New(on.Year(), on.Month(), 1).EndOf(Monthly), nil
}

// MustParse is like Parse but panics on error.
func MustParse(str string) Date {
	d, err := Parse(str)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// UnmarshalJSON implements the json specific way to unmarshall a date from a json string.
//
// An empty string decodes into the zero Date.
func (d *Date) UnmarshalJSON(bytes []byte) error {
	var str string
	if err := json.Unmarshal(bytes, &str); err != nil {
		return err
	}
	if str == "" {
		*d = Date{}
		return nil
	}
	v, err := Parse(str)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(d.String())
}

// MarshalCSV and UnmarshalCSV let csv codecs treat a Date as a single text field.
func (d Date) MarshalCSV() ([]byte, error) {
	if d.IsZero() {
		return nil, nil
	}
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalCSV(data []byte) error {
	if len(data) == 0 {
		*d = Date{}
		return nil
	}
	v, err := Parse(string(data))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// check that a Date pointer is a valid json marshall/unmarshaller type.
var _ json.Marshaler = (*Date)(nil)
var _ json.Unmarshaler = (*Date)(nil)

// Months returns an iterator over every month-end from the month of 'from' to
// the month of 'to', both included, in ascending order.
func Months(from, to Date) iter.Seq[Date] {
	return func(yield func(Date) bool) {
		last := to.EndOf(Monthly)
		for on := from.EndOf(Monthly); !on.After(last); on = on.AddMonths(1) {
			if !yield(on) {
				return
			}
		}
	}
}
