package arr

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
)

// RecordType identifies the kind of a line in a JSONL ledger.
type RecordType string

const (
	RecordLedger       RecordType = "ledger"
	RecordSubscription RecordType = "subscription"
	RecordTransaction  RecordType = "transaction"
)

// DefaultCurrency is the ledger currency when the ledger header does not declare one.
const DefaultCurrency = "USD"

// jledger is the optional first line of a ledger file.
type jledger struct {
	Currency string `json:"currency"`
	Unit     string `json:"unit"`
}

// DecodeLedger decodes a JSONL ledger from r.
//
// Each line is a JSON object whose "record" property tells whether it is the
// ledger header, a subscription or a transaction. Records are validated later
// by the engine, decoding only fails on malformed lines.
func DecodeLedger(r io.Reader) (*Ledger, error) {
	ledger := NewLedger(DefaultCurrency, UnknownUnit)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var subs []Subscription
	var txs []Transaction
	n := 0
	for scanner.Scan() {
		n++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue // Skip empty lines
		}

		var identifier struct {
			Record RecordType `json:"record"`
		}
		if err := json.Unmarshal(line, &identifier); err != nil {
			return nil, eris.Wrapf(err, "line %d: could not identify record %q", n, string(line))
		}

		switch identifier.Record {
		case RecordLedger:
			var h jledger
			if err := json.Unmarshal(line, &h); err != nil {
				return nil, eris.Wrapf(err, "line %d: invalid ledger header", n)
			}
			if h.Currency != "" {
				ledger.currency = h.Currency
			}
			if h.Unit != "" {
				unit, err := ParseUnit(h.Unit)
				if err != nil {
					return nil, eris.Wrapf(err, "line %d", n)
				}
				ledger.unit = unit
			}
		case RecordSubscription:
			var s Subscription
			if err := json.Unmarshal(line, &s); err != nil {
				return nil, eris.Wrapf(err, "line %d: invalid subscription", n)
			}
			subs = append(subs, s)
		case RecordTransaction:
			var tx Transaction
			if err := json.Unmarshal(line, &tx); err != nil {
				return nil, eris.Wrapf(err, "line %d: invalid transaction", n)
			}
			txs = append(txs, tx)
		default:
			return nil, eris.Errorf("line %d: unknown record type %q", n, identifier.Record)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrap(err, "error reading from input")
	}

	// currency is only known once the header has been read.
	ledger.AddSubscription(subs...)
	ledger.AddTransaction(txs...)
	return ledger, nil
}

// EncodeSubscription writes a subscription as a single JSONL line with a
// canonical key order.
func EncodeSubscription(w io.Writer, s Subscription) error {
	var o jsonObjectWriter
	o.Append("record", RecordSubscription)
	o.Append("id", s.ID)
	o.Optional("customer", s.Customer)
	o.Append("start", s.Start)
	o.Optional("end", s.End)
	o.Append("arr", s.ARR)
	o.Optional("faults", s.Faults)
	return writeLine(w, &o)
}

// EncodeTransaction writes a transaction as a single JSONL line with a
// canonical key order.
func EncodeTransaction(w io.Writer, tx Transaction) error {
	var o jsonObjectWriter
	o.Append("record", RecordTransaction)
	o.Append("id", tx.ID)
	o.Optional("subscription", tx.Subscription)
	o.Optional("customer", tx.Customer)
	o.Append("date", tx.On)
	o.Append("type", tx.Kind)
	o.Append("amount", tx.Amount)
	o.Optional("faults", tx.Faults)
	return writeLine(w, &o)
}

// EncodeLedger writes the ledger header, then subscriptions in start date
// order, then transactions in chronological order. Same-day records keep
// their relative order so that encoding is canonical.
func EncodeLedger(w io.Writer, ledger *Ledger) error {
	var o jsonObjectWriter
	o.Append("record", RecordLedger)
	o.Append("currency", ledger.currency)
	if ledger.unit != UnknownUnit {
		o.Append("unit", ledger.unit)
	}
	if err := writeLine(w, &o); err != nil {
		return err
	}
	for _, s := range ledger.subscriptions {
		if err := EncodeSubscription(w, s); err != nil {
			return err
		}
	}
	for _, tx := range ledger.transactions {
		if err := EncodeTransaction(w, tx); err != nil {
			return err
		}
	}
	return nil
}

func writeLine(w io.Writer, o *jsonObjectWriter) error {
	data, err := o.MarshalJSON()
	if err != nil {
		return eris.Wrap(err, "failed to marshal record")
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return eris.Wrap(err, "failed to write record")
	}
	return nil
}

// FileSource loads a JSONL ledger from a file.
type FileSource struct {
	Path string
}

// Load implements LedgerSource.
func (f FileSource) Load(ctx context.Context) (*Ledger, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, err := os.Open(f.Path)
	if err != nil {
		return nil, eris.Wrapf(err, "cannot open ledger %q", f.Path)
	}
	defer r.Close()
	l, err := DecodeLedger(r)
	if err != nil {
		return nil, eris.Wrapf(err, "cannot decode ledger %q", f.Path)
	}
	return l, nil
}

// SaveLedger writes the ledger to a file in canonical form.
func SaveLedger(path string, ledger *Ledger) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "cannot create ledger %q", path)
	}
	if err := EncodeLedger(f, ledger); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

var _ LedgerSource = FileSource{}
