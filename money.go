package wellets

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is an amount paired with the acronym of its currency, for display.
//
// Computations are made on float64 by the engines; Money only takes care of
// rounding and formatting.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

// M returns an amount of money in the currency with the given acronym.
func M(value float64, acronym string) Money {
	return Money{value: decimal.NewFromFloat(value), cur: acronym}
}

// FormatBalance formats a balance divided by a dollar rate, the way balances
// are displayed next to a currency code.
func FormatBalance(balance, dollarRate float64, acronym string) string {
	return M(balance/dollarRate, acronym).String()
}

func (m Money) Currency() string       { return m.cur }
func (m Money) Float() float64         { return m.value.InexactFloat64() }
func (m Money) IsZero() bool           { return m.value.IsZero() }
func (m Money) IsNegative() bool       { return m.value.IsNegative() }
func (m Money) Neg() Money             { return Money{value: m.value.Neg(), cur: m.cur} }
func (m Money) Equal(n Money) bool     { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) Add(n Money) Money      { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }
func (m Money) Sub(n Money) Money      { return Money{value: m.value.Sub(n.value), cur: cur(m, n)} }
func (m Money) Mul(f float64) Money    { return Money{value: m.value.Mul(decimal.NewFromFloat(f)), cur: m.cur} }
func (m Money) Round(places int) Money { return Money{value: m.value.Round(int32(places)), cur: m.cur} }

// makes the "" currency totally weak.
func cur(a, b Money) string {
	if a.cur == "" {
		return b.cur
	}
	if b.cur == "" {
		return a.cur
	}
	if a.cur != b.cur {
		panic("currency mismatch " + a.cur + " != " + b.cur)
	}
	return a.cur
}

// String returns the amount prefixed by the currency code, e.g. "USD 1,234.56".
//
// The fraction digits follow ISO 4217, separators are always "." and ",".
// Currencies unknown to ISO 4217 (crypto currencies for instance) are printed
// with two fraction digits.
func (m Money) String() string {
	c := money.GetCurrency(m.cur)
	if c == nil {
		if m.cur == "" {
			return m.value.StringFixed(2)
		}
		return fmt.Sprintf("%s %s", m.cur, m.value.StringFixed(2))
	}
	f := money.NewFormatter(c.Fraction, ".", ",", c.Code, "$ 1")
	minor := m.value.Shift(int32(c.Fraction)).Round(0)
	return f.Format(minor.IntPart())
}

// SignedString is like String with an explicit sign, 0 is represented as "-".
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

func (m Money) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("currency", m.cur)
	w.Append("amount", m.value.Round(2))
	return w.MarshalJSON()
}
