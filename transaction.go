package arr

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/etnz/arr/date"
	"github.com/rotisserie/eris"
)

// Kind classifies a ledger event by its effect on ARR.
type Kind string

const (
	KindNew         Kind = "new"
	KindExpansion   Kind = "expansion"
	KindContraction Kind = "contraction"
	KindChurn       Kind = "churn"
)

// Kinds lists every known Kind in bridge order.
var Kinds = []Kind{KindNew, KindExpansion, KindContraction, KindChurn}

// IsReduction reports whether events of this kind reduce ARR.
func (k Kind) IsReduction() bool { return k == KindContraction || k == KindChurn }

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindNew, KindExpansion, KindContraction, KindChurn:
		return true
	}
	return false
}

// ParseKind parses a kind, ignoring case and surrounding spaces.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return k, eris.Errorf("unknown transaction type %q", s)
	}
	return k, nil
}

// Unit declares how transaction amounts are expressed in the ledger.
//
// There is no default: a ledger whose unit is not declared cannot be
// aggregated, so that amounts are never silently scaled twice.
type Unit int

const (
	UnknownUnit Unit = iota
	MonthlyUnit      // monthly recurring amounts, annualized by 12
	AnnualUnit       // already annualized amounts
)

func (u Unit) String() string {
	switch u {
	case MonthlyUnit:
		return "monthly"
	case AnnualUnit:
		return "annual"
	default:
		return "unknown"
	}
}

// Factor returns the multiplier turning an amount in unit u into ARR.
func (u Unit) Factor() (int64, error) {
	switch u {
	case MonthlyUnit:
		return 12, nil
	case AnnualUnit:
		return 1, nil
	default:
		return 0, eris.New("transaction amount unit is not declared, want monthly or annual")
	}
}

// ParseUnit parses "monthly" (or "mrr") and "annual" (or "arr", "yearly").
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "monthly", "month", "mrr":
		return MonthlyUnit, nil
	case "annual", "yearly", "arr":
		return AnnualUnit, nil
	default:
		return UnknownUnit, eris.Errorf("unknown amount unit %q", s)
	}
}

func (u Unit) MarshalJSON() ([]byte, error) { return json.Marshal(u.String()) }

func (u *Unit) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseUnit(s)
	if err != nil {
		return err
	}
	*u = v
	return nil
}

// Transaction is an immutable ledger event changing the recurring revenue of
// a subscription.
//
// Reduction amounts may be recorded either positive or negative: only their
// magnitude is used.
type Transaction struct {
	ID           string    `json:"id"`
	Subscription string    `json:"subscription,omitempty"`
	Customer     string    `json:"customer,omitempty"`
	On           date.Date `json:"date"`
	Kind         Kind      `json:"type"`
	Amount       Money     `json:"amount"`
	// Faults describes source values that could not be read.
	Faults []string `json:"faults,omitempty"`
}

// Check returns a description of every data integrity fault of tx, or nil.
func (tx Transaction) Check() []string {
	faults := append([]string(nil), tx.Faults...)
	if tx.On.IsZero() {
		faults = append(faults, "missing transaction date")
	}
	if !tx.Kind.Valid() {
		faults = append(faults, fmt.Sprintf("unknown transaction type %q", tx.Kind))
	}
	if !tx.Kind.IsReduction() && tx.Amount.IsNegative() {
		faults = append(faults, fmt.Sprintf("negative %s amount %s", tx.Kind, tx.Amount.Decimal()))
	}
	return faults
}

// signed returns the transaction amount with the engine's sign convention:
// reductions are non-positive, everything else is kept as recorded.
func (tx Transaction) signed() Money {
	if tx.Kind.IsReduction() {
		return tx.Amount.Abs().Neg()
	}
	return tx.Amount
}
