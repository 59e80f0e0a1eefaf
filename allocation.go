package wellets

import (
	"encoding/json"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// ActionType is the direction of a rebalance action.
type ActionType int

const (
	Buy ActionType = iota
	Sell
)

func (a ActionType) String() string {
	if a == Sell {
		return "sell"
	}
	return "buy"
}

func (a ActionType) MarshalJSON() ([]byte, error) { return json.Marshal(a.String()) }

func (a *ActionType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "buy":
		*a = Buy
	case "sell":
		*a = Sell
	default:
		return errors.Errorf("invalid action type %q, want \"buy\" or \"sell\"", s)
	}
	return nil
}

// Action is what to do with a portfolio to bring it back to its target:
// buy or sell 'Amount' expressed in the allocation's base currency.
type Action struct {
	Type   ActionType `json:"type"`
	Amount float64    `json:"amount"`
}

func (a Action) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("type", a.Type)
	w.Append("amount", a.Amount)
	return w.MarshalJSON()
}

// Change is the rebalance result for a single portfolio.
//
// Portfolio and Wallets point into the Tree the allocation was computed from.
type Change struct {
	Portfolio *Portfolio
	Wallets   []*Wallet // every wallet counted in Actual
	Target    float64   // value the portfolio should hold
	Actual    float64   // value the portfolio currently holds
	OffBy     float64   // relative deviation, positive when overweight
	Action    Action
}

func (c Change) MarshalJSON() ([]byte, error) {
	wallets := c.Wallets
	if wallets == nil {
		wallets = []*Wallet{}
	}
	var w jsonObjectWriter
	w.Append("portfolio", c.Portfolio)
	w.Append("wallets", wallets)
	w.Append("target", c.Target)
	w.Append("actual", c.Actual)
	w.Append("off_by", c.OffBy)
	w.Append("action", c.Action)
	return w.MarshalJSON()
}

// Allocation is the rebalance result for a set of sibling portfolios. All
// values are expressed in BaseCurrency.
type Allocation struct {
	BaseCurrency Currency
	Changes      []Change
}

func (a *Allocation) MarshalJSON() ([]byte, error) {
	changes := a.Changes
	if changes == nil {
		changes = []Change{}
	}
	var w jsonObjectWriter
	w.Append("base_currency", a.BaseCurrency)
	w.Append("changes", changes)
	return w.MarshalJSON()
}

// TotalActual returns the sum of the actual values.
func (a *Allocation) TotalActual() float64 {
	values := make([]float64, len(a.Changes))
	for i, c := range a.Changes {
		values[i] = c.Actual
	}
	return floats.Sum(values)
}

// TotalTarget returns the sum of the target values. It equals TotalActual
// when the weights sum to 1.
func (a *Allocation) TotalTarget() float64 {
	values := make([]float64, len(a.Changes))
	for i, c := range a.Changes {
		values[i] = c.Target
	}
	return floats.Sum(values)
}

// Rebalance computes the actions needed to bring the 'siblings' portfolios
// back to their target weights.
//
// The actual value of a portfolio is the sum of every wallet attached to it or
// to one of its descendants, converted to 'base'. The target value of a
// portfolio is its weight times the sum of all actual values.
//
// Rebalance does not check that the weights sum to 1, see CheckWeights.
// It never modifies its inputs, and returns an error only for unknown
// portfolios, unknown wallet currencies, or an invalid base rate.
func Rebalance(tree *Tree, siblings []string, base Currency, catalog *Catalog) (*Allocation, error) {
	if err := base.Validate(); err != nil {
		return nil, errors.Wrap(err, "base currency")
	}

	changes := make([]Change, len(siblings))
	actuals := make([]float64, len(siblings))
	for i, id := range siblings {
		p, ok := tree.Get(id)
		if !ok {
			return nil, errors.Wrapf(ErrUnknownPortfolio, "%q", id)
		}
		wallets := tree.Wallets(id)
		actual, err := valueOf(wallets, base, catalog)
		if err != nil {
			return nil, errors.Wrapf(err, "portfolio %q", p.Alias)
		}
		changes[i] = Change{Portfolio: p, Wallets: wallets, Actual: actual}
		actuals[i] = actual
	}

	total := floats.Sum(actuals)
	for i := range changes {
		c := &changes[i]
		c.Target = c.Portfolio.Weight * total
		c.OffBy = offBy(c.Actual, c.Target)
		c.Action = actionFor(c.Actual, c.Target)
	}
	return &Allocation{BaseCurrency: base, Changes: changes}, nil
}

// RebalanceChildren rebalances the direct children of portfolio 'parentID'.
func RebalanceChildren(tree *Tree, parentID string, base Currency, catalog *Catalog) (*Allocation, error) {
	if _, ok := tree.Get(parentID); !ok {
		return nil, errors.Wrapf(ErrUnknownPortfolio, "%q", parentID)
	}
	return Rebalance(tree, ids(tree.Children(parentID)), base, catalog)
}

// RebalanceRoots rebalances the portfolios without a parent.
func RebalanceRoots(tree *Tree, base Currency, catalog *Catalog) (*Allocation, error) {
	return Rebalance(tree, ids(tree.Roots()), base, catalog)
}

func ids(list []*Portfolio) []string {
	res := make([]string, len(list))
	for i, p := range list {
		res[i] = p.ID
	}
	return res
}

// valueOf returns the sum of the wallets' balances converted to 'base'.
func valueOf(wallets []*Wallet, base Currency, catalog *Catalog) (float64, error) {
	values := make([]float64, len(wallets))
	for i, w := range wallets {
		cur, ok := catalog.Get(w.CurrencyID)
		if !ok {
			return 0, errors.Wrapf(ErrUnknownCurrency, "wallet %q currency %q", w.Alias, w.CurrencyID)
		}
		values[i] = ConvertAmount(cur.DollarRate, base.DollarRate, w.Balance)
	}
	return floats.Sum(values), nil
}

// offBy returns the deviation of 'actual' relative to 'target', that is
// (actual - target) / target.
//
// The denominator is |target| so that the sign always tells overweight (+)
// from underweight (-), even for a negative target.
// A zero target has no relative deviation: it is reported as 0 when actual
// is zero too, as 1 when actual is positive, and as -1 when actual is
// negative (an overdrawn wallet is underweight, never overweight).
func offBy(actual, target float64) float64 {
	if target == 0 {
		if actual == 0 {
			return 0
		}
		return math.Copysign(1, actual)
	}
	return (actual - target) / math.Abs(target)
}

func actionFor(actual, target float64) Action {
	if actual > target {
		return Action{Type: Sell, Amount: actual - target}
	}
	return Action{Type: Buy, Amount: target - actual}
}
