package arr

import (
	"encoding/json"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Money represents a monetary value in a single reporting currency.
//
// The engine does not convert currencies: every Money in a run shares the
// ledger currency, and an empty currency is compatible with any other.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

func newDecimal[T float32 | float64 | int | int32 | int64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float32:
		return decimal.NewFromFloat32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	default:
		panic("unsupported type")
	}
}

// M creates a Money from a numeric value and a currency code.
func M[T float32 | float64 | int | int32 | int64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// currency returns the money's currency
func (m Money) currency() money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, m.cur).Currency()
}

// String returns the amount formatted with the currency symbol, rounded to
// the currency's minor unit.
func (m Money) String() string {
	if m.cur == "" {
		return m.value.StringFixed(2)
	}
	cur := m.currency()
	dec := m.value.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.Round(0).IntPart())
}

// SignedString returns the string representation of the money value with a sign.
// 0 is represented as a "-"
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

func (m Money) Currency() string                { return m.cur }
func (m Money) Decimal() decimal.Decimal        { return m.value }
func (m Money) Equal(n Money) bool              { return m.value.Equal(n.value) }
func (m Money) IsZero() bool                    { return m.value.IsZero() }
func (m Money) IsPositive() bool                { return m.value.IsPositive() }
func (m Money) IsNegative() bool                { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool           { return m.value.LessThan(n.value) }
func (m Money) GreaterThan(n Money) bool        { return m.value.GreaterThan(n.value) }
func (m Money) GreaterThanOrEqual(n Money) bool { return m.value.GreaterThanOrEqual(n.value) }
func (m Money) Neg() Money                      { return Money{value: m.value.Neg(), cur: m.cur} }
func (m Money) Abs() Money                      { return Money{value: m.value.Abs(), cur: m.cur} }
func (m Money) Mul(n int64) Money               { return Money{value: m.value.Mul(decimal.NewFromInt(n)), cur: m.cur} }
func (m Money) Float64() float64                { return m.value.InexactFloat64() }

// WithCurrency returns a copy of m labelled with currency cur.
func (m Money) WithCurrency(cur string) Money { return Money{value: m.value, cur: cur} }

// Div returns m divided by n, or zero when n is zero.
func (m Money) Div(n int) Money {
	if n == 0 {
		return Money{cur: m.cur}
	}
	return Money{value: m.value.Div(decimal.NewFromInt(int64(n))), cur: m.cur}
}

// Ratio returns m/n as a percentage, ok is false when n is zero.
func (m Money) Ratio(n Money) (p Percent, ok bool) {
	if n.value.IsZero() {
		return 0, false
	}
	return Percent(m.value.Div(n.value).Mul(decimal.NewFromInt(100)).InexactFloat64()), true
}

// binary operators.
func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: cur(m, n)} }

// makes the "" currency totally weak.
func cur(A, B Money) string {
	if A.cur == "" {
		return B.cur
	}
	if B.cur == "" {
		return A.cur
	}
	if A.cur != B.cur {
		panic("currency mismatch " + A.cur + "!=" + B.cur)
	}
	return A.cur
}

// MarshalJSON writes the exact amount as a JSON number. The currency lives on
// the enclosing document.
func (m Money) MarshalJSON() ([]byte, error) { return m.value.MarshalJSON() }

// UnmarshalJSON reads a JSON number (or a quoted number) into the amount.
func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := json.Unmarshal(b, &d); err != nil {
		return err
	}
	m.value = d
	return nil
}

// UnmarshalCSV parses a plain decimal amount.
func (m *Money) UnmarshalCSV(b []byte) error {
	if len(b) == 0 {
		m.value = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(string(b))
	if err != nil {
		return err
	}
	m.value = d
	return nil
}

// MarshalCSV writes the exact amount.
func (m Money) MarshalCSV() ([]byte, error) { return []byte(m.value.String()), nil }
