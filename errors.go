package wellets

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidCurrencyRate is returned when a dollar rate is not a finite positive number.
	ErrInvalidCurrencyRate = errors.New("invalid currency rate")
	// ErrUnknownCurrency is returned when a currency id is not part of the catalog.
	ErrUnknownCurrency = errors.New("unknown currency")
	// ErrUnknownPortfolio is returned when a portfolio id is not part of the tree.
	ErrUnknownPortfolio = errors.New("unknown portfolio")
	// ErrUnknownWallet is returned when a wallet id is not part of the tree.
	ErrUnknownWallet = errors.New("unknown wallet")
	// ErrDuplicateID is returned when an id is registered twice.
	ErrDuplicateID = errors.New("duplicate id")
	// ErrCycle is returned when a portfolio would become its own ancestor.
	ErrCycle = errors.New("portfolio cycle")
	// ErrWeightSumMismatch is returned when sibling weights do not sum to 1.
	ErrWeightSumMismatch = errors.New("weights do not sum to 1")
)

// InvalidCurrencyRateError reports the currency holding an unusable dollar rate.
type InvalidCurrencyRateError struct {
	CurrencyID string
	Acronym    string
	Rate       float64
}

func (e *InvalidCurrencyRateError) Error() string {
	name := e.Acronym
	if name == "" {
		name = e.CurrencyID
	}
	return fmt.Sprintf("invalid currency rate for %q: %v must be a positive number", name, e.Rate)
}

// Is makes errors.Is(err, ErrInvalidCurrencyRate) true.
func (e *InvalidCurrencyRateError) Is(target error) bool { return target == ErrInvalidCurrencyRate }

// WeightSumMismatchError reports a set of siblings whose weights do not sum to 1.
type WeightSumMismatchError struct {
	ParentID string // empty for root portfolios
	Sum      float64
}

func (e *WeightSumMismatchError) Error() string {
	if e.ParentID == "" {
		return fmt.Sprintf("root portfolio weights sum to %v, want 1", e.Sum)
	}
	return fmt.Sprintf("weights of the children of %q sum to %v, want 1", e.ParentID, e.Sum)
}

func (e *WeightSumMismatchError) Is(target error) bool { return target == ErrWeightSumMismatch }
