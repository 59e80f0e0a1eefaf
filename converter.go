package wellets

import "math"

// The converter works on dollar rates: the amount of a currency worth one
// reference unit. A currency with a dollar rate of 0.8 means 0.8 units of it
// are worth 1 reference unit.
//
// The plain functions below do not validate their rates, a zero rate yields
// an infinite result. Use Convert to get an error instead.

// RateRatio returns how many units of the 'from' currency one unit of the 'to'
// currency is worth.
func RateRatio(fromRate, toRate float64) float64 {
	return fromRate / toRate
}

// ConvertAmount converts an amount denominated using fromRate into an amount
// denominated using toRate.
func ConvertAmount(fromRate, toRate, amount float64) float64 {
	return amount * (1 / RateRatio(fromRate, toRate))
}

// ToReferenceUnit converts an amount denominated using rate into reference units.
func ToReferenceUnit(rate, amount float64) float64 {
	return amount * (1 / rate)
}

// Convert converts 'amount' from currency 'from' into currency 'to'.
//
// It returns an *InvalidCurrencyRateError if any of the two rates is unusable.
func Convert(from, to Currency, amount float64) (float64, error) {
	if err := from.Validate(); err != nil {
		return 0, err
	}
	if err := to.Validate(); err != nil {
		return 0, err
	}
	if from.ID == to.ID {
		return amount, nil
	}
	return ConvertAmount(from.DollarRate, to.DollarRate, amount), nil
}

// QuoteRate returns the dollar rate of a currency whose one unit is quoted
// 'quoted' units of the 'quote' currency.
//
// For instance, if 1 BTC is quoted 50000 USD, and USD's dollar rate is 1, the
// BTC dollar rate is 1/50000.
func QuoteRate(quote Currency, quoted float64) float64 {
	return quote.DollarRate / quoted
}

// validRate tells whether a dollar rate can be used in a division.
func validRate(rate float64) bool {
	return rate > 0 && !math.IsInf(rate, 0) && !math.IsNaN(rate)
}
