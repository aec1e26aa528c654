package arr

import (
	"context"
	"slices"

	"github.com/etnz/arr/date"
)

// Ledger is the closed dataset a run is computed from: the subscriptions and
// the transactions that changed them.
//
// A Ledger is built once by a LedgerSource and then only read by the engine.
type Ledger struct {
	currency      string
	unit          Unit
	subscriptions []Subscription // sorted by start date
	transactions  []Transaction  // sorted by date
}

// LedgerSource supplies already-parsed ledgers.
type LedgerSource interface {
	Load(ctx context.Context) (*Ledger, error)
}

// NewLedger creates an empty ledger whose amounts are in 'currency' and whose
// transaction amounts are expressed in 'unit'.
func NewLedger(currency string, unit Unit) *Ledger {
	return &Ledger{currency: currency, unit: unit}
}

// Currency returns the ledger reporting currency.
func (l *Ledger) Currency() string { return l.currency }

// Unit returns the declared unit of transaction amounts.
func (l *Ledger) Unit() Unit { return l.unit }

// AddSubscription appends subscriptions, keeping them in start date order.
func (l *Ledger) AddSubscription(subs ...Subscription) {
	for _, s := range subs {
		s.ARR = s.ARR.WithCurrency(l.currency)
		l.subscriptions = append(l.subscriptions, s)
	}
	// Stable keeps the relative order of same-day records.
	slices.SortStableFunc(l.subscriptions, func(a, b Subscription) int { return a.Start.Compare(b.Start) })
}

// AddTransaction appends transactions, keeping them in chronological order.
func (l *Ledger) AddTransaction(txs ...Transaction) {
	for _, tx := range txs {
		tx.Amount = tx.Amount.WithCurrency(l.currency)
		l.transactions = append(l.transactions, tx)
	}
	slices.SortStableFunc(l.transactions, func(a, b Transaction) int { return a.On.Compare(b.On) })
}

// Subscriptions returns a copy of the subscriptions in start date order.
func (l *Ledger) Subscriptions() []Subscription { return slices.Clone(l.subscriptions) }

// Transactions returns a copy of the transactions in chronological order.
func (l *Ledger) Transactions() []Transaction { return slices.Clone(l.transactions) }

// Len returns the number of records in the ledger.
func (l *Ledger) Len() int { return len(l.subscriptions) + len(l.transactions) }

// Span returns the smallest range covering every dated event of the ledger:
// transaction dates, subscription starts and subscription ends.
//
// ok is false for a ledger without any dated record.
func (l *Ledger) Span() (r date.Range, ok bool) {
	extend := func(on date.Date) {
		if on.IsZero() {
			return
		}
		if !ok {
			r, ok = date.Range{From: on, To: on}, true
			return
		}
		if on.Before(r.From) {
			r.From = on
		}
		if on.After(r.To) {
			r.To = on
		}
	}
	for _, s := range l.subscriptions {
		extend(s.Start)
		extend(s.End)
	}
	for _, tx := range l.transactions {
		extend(tx.On)
	}
	return r, ok
}
