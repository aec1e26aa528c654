package arr

import (
	"github.com/etnz/arr/date"
	"github.com/rotisserie/eris"
)

// MonthlySums holds the annualized transaction totals of a calendar month,
// one field per Kind.
//
// Contraction and Churn are never positive.
type MonthlySums struct {
	Month        date.Date `json:"month"` // last calendar day of the month
	New          Money     `json:"new"`
	Expansion    Money     `json:"expansion"`
	Contraction  Money     `json:"contraction"`
	Churn        Money     `json:"churn"`
	Transactions int       `json:"transactions"`
}

// Net returns the sum of all components.
func (m MonthlySums) Net() Money {
	return m.New.Add(m.Expansion).Add(m.Contraction).Add(m.Churn)
}

// Of returns the component of a given kind.
func (m MonthlySums) Of(k Kind) Money {
	switch k {
	case KindNew:
		return m.New
	case KindExpansion:
		return m.Expansion
	case KindContraction:
		return m.Contraction
	case KindChurn:
		return m.Churn
	}
	return Money{}
}

func (m *MonthlySums) add(k Kind, v Money) {
	switch k {
	case KindNew:
		m.New = m.New.Add(v)
	case KindExpansion:
		m.Expansion = m.Expansion.Add(v)
	case KindContraction:
		m.Contraction = m.Contraction.Add(v)
	case KindChurn:
		m.Churn = m.Churn.Add(v)
	}
}

// AggregateMonthly groups transactions by the calendar month of their own date
// and sums them per kind, annualized according to 'unit'.
//
// The result has exactly one entry per calendar month from the first to the
// last month of 'span' widened to every transaction, in ascending order. Months
// without transactions hold zero sums. A zero span is derived from the
// transactions alone. Transactions must have a known kind, see CheckTransactions.
func AggregateMonthly(txs []Transaction, unit Unit, span date.Range, currency string) ([]MonthlySums, error) {
	factor, err := unit.Factor()
	if err != nil {
		return nil, err
	}
	for _, tx := range txs {
		if !tx.Kind.Valid() {
			return nil, eris.Errorf("transaction %q has unknown type %q", tx.ID, tx.Kind)
		}
		if span.From.IsZero() || tx.On.Before(span.From) {
			span.From = tx.On
		}
		if span.To.IsZero() || tx.On.After(span.To) {
			span.To = tx.On
		}
	}
	if span.From.IsZero() {
		return nil, nil
	}

	zero := M(0, currency)
	sums := make([]MonthlySums, 0, span.Len())
	index := make(map[date.Date]int, span.Len())
	for on := range span.Months() {
		index[on] = len(sums)
		sums = append(sums, MonthlySums{Month: on, New: zero, Expansion: zero, Contraction: zero, Churn: zero})
	}

	for _, tx := range txs {
		i := index[tx.On.EndOf(date.Monthly)]
		sums[i].add(tx.Kind, tx.signed().Mul(factor))
		sums[i].Transactions++
	}
	return sums, nil
}
