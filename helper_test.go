package arr

import "github.com/etnz/arr/date"

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// NO is a helper for test to create money from const with no currency set
func NO(v float64) Money { return M(v, "") }

// day parses a "2006-01-02" date, panicking on error.
func day(s string) date.Date { return date.MustParse(s) }

// sub is a helper for test to create a subscription. An empty 'end' means
// the subscription is still running.
func sub(id, customer, start, end string, arr float64) Subscription {
	s := Subscription{ID: id, Customer: customer, Start: day(start), ARR: USD(arr)}
	if end != "" {
		s.End = day(end)
	}
	return s
}

// tx is a helper for test to create a transaction.
func tx(id, on string, kind Kind, amount float64) Transaction {
	return Transaction{ID: id, On: day(on), Kind: kind, Amount: USD(amount)}
}
