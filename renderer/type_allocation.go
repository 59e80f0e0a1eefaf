package renderer

import (
	"fmt"

	"github.com/etnz/wellets"
)

// Allocation is a rebalance result ready to be rendered.
// Amounts are Money in the base currency so that they carry their own formatting.
type Allocation struct {
	BaseCurrency string          `json:"baseCurrency"`
	Rows         []AllocationRow `json:"rows"`
	TotalWeight  wellets.Percent `json:"totalWeight"`
	TotalTarget  wellets.Money   `json:"totalTarget"`
	TotalActual  wellets.Money   `json:"totalActual"`
}

// AllocationRow is a single portfolio of an allocation.
type AllocationRow struct {
	Portfolio string          `json:"portfolio"`
	Weight    wellets.Percent `json:"weight"`
	Target    wellets.Money   `json:"target"`
	Actual    wellets.Money   `json:"actual"`
	OffBy     wellets.Percent `json:"offBy"`
	Action    string          `json:"action"`
	Amount    wellets.Money   `json:"amount"`
}

// NewAllocation converts an allocation into its rendering model.
func NewAllocation(a *wellets.Allocation) *Allocation {
	acronym := a.BaseCurrency.Acronym
	res := &Allocation{
		BaseCurrency: a.BaseCurrency.String(),
		TotalTarget:  wellets.M(a.TotalTarget(), acronym),
		TotalActual:  wellets.M(a.TotalActual(), acronym),
	}
	var weight float64
	for _, c := range a.Changes {
		weight += c.Portfolio.Weight
		res.Rows = append(res.Rows, AllocationRow{
			Portfolio: name(c.Portfolio),
			Weight:    wellets.Ratio(c.Portfolio.Weight),
			Target:    wellets.M(c.Target, acronym),
			Actual:    wellets.M(c.Actual, acronym),
			OffBy:     wellets.Ratio(c.OffBy),
			Action:    c.Action.Type.String(),
			Amount:    wellets.M(c.Action.Amount, acronym).Round(2),
		})
	}
	res.TotalWeight = wellets.Ratio(weight)
	return res
}

// Rebalance describes the action, or "-" if there is nothing to do.
func (r AllocationRow) Rebalance() string {
	if r.Amount.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%s %s", r.Action, r.Amount)
}

// OffByString is the off by percentage with an explicit sign.
func (r AllocationRow) OffByString() string {
	s := r.OffBy.Format(0)
	if s == "0%" || s == "-0%" {
		return "0%"
	}
	if r.OffBy > 0 {
		return "+" + s
	}
	return s
}

func name(p *wellets.Portfolio) string {
	if p.Alias == "" {
		return p.ID
	}
	return p.Alias
}
