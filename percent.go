package wellets

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Percent is a ratio expressed in percent: 25 means 25%.
type Percent float64

// Ratio converts a fraction (0.25) into a Percent (25).
func Ratio(r float64) Percent { return Percent(r * 100) }

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

// Format returns the percentage rounded to 'decimals' fraction digits.
func (p Percent) Format(decimals int) string {
	return decimal.NewFromFloat(float64(p)).StringFixed(int32(decimals)) + "%"
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", p)
}

func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", p)
	if res == "+0.00%" {
		return "-"
	}
	return res
}
