// Package ingest imports subscriptions and transactions from CSV exports.
//
// Subscriptions files have the columns subscription_id, customer_id,
// start_date, end_date, mrr_amount and arr_amount. Transactions files have
// transaction_id, subscription_id, customer_id, transaction_date,
// transaction_type and amount. Unknown columns are ignored.
//
// Rows are converted leniently. A missing amount counts as zero. A value that
// is present but cannot be parsed is recorded in the record Faults, so that the
// engine excludes the record and reports it as a data integrity finding.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/arr"
	"github.com/etnz/arr/date"
	"github.com/google/uuid"
	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// namespace seeds the ids generated for rows without one.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/etnz/arr/ingest"))

type subscriptionRow struct {
	ID       string `csv:"subscription_id"`
	Customer string `csv:"customer_id"`
	Start    string `csv:"start_date"`
	End      string `csv:"end_date"`
	MRR      string `csv:"mrr_amount"`
	ARR      string `csv:"arr_amount"`
}

type transactionRow struct {
	ID           string `csv:"transaction_id"`
	Subscription string `csv:"subscription_id"`
	Customer     string `csv:"customer_id"`
	On           string `csv:"transaction_date"`
	Kind         string `csv:"transaction_type"`
	Amount       string `csv:"amount"`
}

// rowID returns a stable id derived from the row content and position.
func rowID(kind string, line int, record []string) string {
	return uuid.NewSHA1(namespace, fmt.Appendf(nil, "%s:%d:%s", kind, line, strings.Join(record, ","))).String()
}

// parseDate accepts "2024-01-15" and timestamps such as "2024-01-15 00:00:00".
// An empty cell is a zero date and no error.
func parseDate(s string) (date.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return date.Date{}, nil
	}
	if i := strings.IndexAny(s, " T"); i > 0 {
		s = s[:i]
	}
	return date.Parse(s)
}

// parseAmount reads "1,000.50" or "$12". present is false for an empty cell.
func parseAmount(s string) (v decimal.Decimal, present bool, err error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Zero, false, nil
	}
	v, err = decimal.NewFromString(strings.TrimPrefix(s, "$"))
	return v, true, err
}

// faults collects the values of a row that could not be read.
type faults struct {
	list []string
	log  *zap.Logger
	line int
}

func (f *faults) add(field, value string) {
	f.log.Warn("invalid value", zap.Int("line", f.line), zap.String("field", field), zap.String("value", value))
	f.list = append(f.list, fmt.Sprintf("invalid %s %q", field, value))
}

// readDate parses a date cell, recording a fault when it is present but invalid.
func (f *faults) readDate(field, value string) date.Date {
	d, err := parseDate(value)
	if err != nil {
		f.add(field, value)
	}
	return d
}

// decodeAll decodes every row of r, calling fn with the row, its line number
// and its raw record.
func decodeAll[T any](r io.Reader, fn func(row T, line int, record []string)) error {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil // empty file
		}
		return eris.Wrap(err, "cannot read csv header")
	}
	for line := 2; ; line++ {
		var row T
		if err := dec.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return eris.Wrapf(err, "line %d", line)
		}
		fn(row, line, dec.Record())
	}
}

// ReadSubscriptions decodes a subscriptions CSV file.
//
// arr_amount is used when present, otherwise mrr_amount is annualized.
func ReadSubscriptions(r io.Reader, log *zap.Logger) ([]arr.Subscription, error) {
	var subs []arr.Subscription
	err := decodeAll(r, func(row subscriptionRow, line int, record []string) {
		s := arr.Subscription{
			ID:       strings.TrimSpace(row.ID),
			Customer: strings.TrimSpace(row.Customer),
		}
		if s.ID == "" {
			s.ID = rowID("subscription", line, record)
		}
		f := faults{log: log, line: line}
		s.Start = f.readDate("start_date", row.Start)
		s.End = f.readDate("end_date", row.End)

		s.ARR = arr.M(0, "")
		if v, present, err := parseAmount(row.ARR); err != nil {
			f.add("arr_amount", row.ARR)
		} else if present {
			s.ARR = arr.M(v, "")
		} else if v, present, err := parseAmount(row.MRR); err != nil {
			f.add("mrr_amount", row.MRR)
		} else if present {
			s.ARR = arr.M(v.Mul(decimal.NewFromInt(12)), "")
		} else {
			// counted as zero, like a missing amount in a sum.
			log.Warn("missing subscription amount", zap.Int("line", line), zap.String("id", s.ID))
		}
		s.Faults = f.list
		subs = append(subs, s)
	})
	if err != nil {
		return nil, eris.Wrap(err, "subscriptions")
	}
	return subs, nil
}

// ReadTransactions decodes a transactions CSV file.
func ReadTransactions(r io.Reader, log *zap.Logger) ([]arr.Transaction, error) {
	var txs []arr.Transaction
	err := decodeAll(r, func(row transactionRow, line int, record []string) {
		tx := arr.Transaction{
			ID:           strings.TrimSpace(row.ID),
			Subscription: strings.TrimSpace(row.Subscription),
			Customer:     strings.TrimSpace(row.Customer),
			Kind:         arr.Kind(strings.ToLower(strings.TrimSpace(row.Kind))),
		}
		if tx.ID == "" {
			tx.ID = rowID("transaction", line, record)
		}
		f := faults{log: log, line: line}
		tx.On = f.readDate("transaction_date", row.On)

		tx.Amount = arr.M(0, "")
		switch v, present, err := parseAmount(row.Amount); {
		case err != nil:
			f.add("amount", row.Amount)
		case present:
			tx.Amount = arr.M(v, "")
		default:
			log.Warn("missing transaction amount", zap.Int("line", line), zap.String("id", tx.ID))
		}
		tx.Faults = f.list
		txs = append(txs, tx)
	})
	if err != nil {
		return nil, eris.Wrap(err, "transactions")
	}
	return txs, nil
}

// Source loads a ledger from a pair of CSV files.
type Source struct {
	Subscriptions string // path to the subscriptions file
	Transactions  string // path to the transactions file, optional
	Currency      string
	Unit          arr.Unit
	Logger        *zap.Logger
}

// Load implements arr.LedgerSource.
func (s Source) Load(ctx context.Context) (*arr.Ledger, error) {
	log := s.Logger
	if log == nil {
		log = zap.NewNop()
	}
	cur := s.Currency
	if cur == "" {
		cur = arr.DefaultCurrency
	}
	ledger := arr.NewLedger(cur, s.Unit)

	subs, err := readFile(ctx, s.Subscriptions, func(r io.Reader) ([]arr.Subscription, error) {
		return ReadSubscriptions(r, log.With(zap.String("file", s.Subscriptions)))
	})
	if err != nil {
		return nil, err
	}
	ledger.AddSubscription(subs...)

	if s.Transactions != "" {
		txs, err := readFile(ctx, s.Transactions, func(r io.Reader) ([]arr.Transaction, error) {
			return ReadTransactions(r, log.With(zap.String("file", s.Transactions)))
		})
		if err != nil {
			return nil, err
		}
		ledger.AddTransaction(txs...)
	}
	log.Info("csv ledger imported",
		zap.Int("subscriptions", len(ledger.Subscriptions())),
		zap.Int("transactions", len(ledger.Transactions())),
	)
	return ledger, nil
}

func readFile[T any](ctx context.Context, path string, read func(io.Reader) ([]T, error)) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "cannot open %q", path)
	}
	defer f.Close()
	return read(f)
}

var _ arr.LedgerSource = Source{}
