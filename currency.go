package wellets

import (
	"iter"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// Currency is a currency as known by the catalog.
type Currency struct {
	ID         string  `json:"id"`
	Acronym    string  `json:"acronym"` // display code, e.g. "USD"
	Alias      string  `json:"alias,omitempty"`
	DollarRate float64 `json:"dollar_rate"` // units of this currency per reference unit
	Favorite   bool    `json:"favorite,omitempty"`
}

// Validate returns an *InvalidCurrencyRateError if the currency's dollar rate cannot be used.
func (c Currency) Validate() error {
	if !validRate(c.DollarRate) {
		return &InvalidCurrencyRateError{CurrencyID: c.ID, Acronym: c.Acronym, Rate: c.DollarRate}
	}
	return nil
}

// String returns the acronym, or the id for currencies without one.
func (c Currency) String() string {
	if c.Acronym == "" {
		return c.ID
	}
	return c.Acronym
}

// Catalog is an immutable snapshot of currencies indexed by id.
//
// A catalog is loaded once per request and passed around explicitly; methods
// that change rates return a new Catalog.
type Catalog struct {
	currencies []Currency
	index      map[string]int
}

// NewCatalog returns a catalog containing 'currencies' in that order.
func NewCatalog(currencies ...Currency) (*Catalog, error) {
	c := &Catalog{
		currencies: make([]Currency, 0, len(currencies)),
		index:      make(map[string]int, len(currencies)),
	}
	for _, cur := range currencies {
		if cur.ID == "" {
			return nil, errors.Errorf("currency %q has no id", cur.Acronym)
		}
		if _, exists := c.index[cur.ID]; exists {
			return nil, errors.Wrapf(ErrDuplicateID, "currency %q", cur.ID)
		}
		if err := cur.Validate(); err != nil {
			return nil, err
		}
		c.index[cur.ID] = len(c.currencies)
		c.currencies = append(c.currencies, cur)
	}
	return c, nil
}

// Len returns the number of currencies.
func (c *Catalog) Len() int { return len(c.currencies) }

// Get returns the currency by id.
func (c *Catalog) Get(id string) (Currency, bool) {
	i, ok := c.index[id]
	if !ok {
		return Currency{}, false
	}
	return c.currencies[i], true
}

// ByAcronym returns the first currency with that acronym, ignoring case.
func (c *Catalog) ByAcronym(acronym string) (Currency, bool) {
	for _, cur := range c.currencies {
		if strings.EqualFold(cur.Acronym, acronym) {
			return cur, true
		}
	}
	return Currency{}, false
}

// Lookup returns a currency by id or by acronym.
func (c *Catalog) Lookup(key string) (Currency, error) {
	if cur, ok := c.Get(key); ok {
		return cur, nil
	}
	if cur, ok := c.ByAcronym(key); ok {
		return cur, nil
	}
	return Currency{}, errors.Wrapf(ErrUnknownCurrency, "%q", key)
}

// Name returns the acronym of the currency, or the id itself if it is unknown.
func (c *Catalog) Name(id string) string {
	cur, ok := c.Get(id)
	if !ok {
		return id
	}
	return cur.Acronym
}

// DollarRate returns the dollar rate of the currency, or 1 if it is unknown.
//
// This is meant for display purposes only, the allocation engine rejects
// unknown currencies.
func (c *Catalog) DollarRate(id string) float64 {
	cur, ok := c.Get(id)
	if !ok {
		return 1
	}
	return cur.DollarRate
}

// All iterates over the currencies in catalog order.
func (c *Catalog) All() iter.Seq[Currency] {
	return func(yield func(Currency) bool) {
		for _, cur := range c.currencies {
			if !yield(cur) {
				return
			}
		}
	}
}

// Favorites returns all currencies, favorites first, then sorted by acronym.
func (c *Catalog) Favorites() []Currency {
	list := slices.Clone(c.currencies)
	slices.SortStableFunc(list, func(a, b Currency) int {
		if a.Favorite != b.Favorite {
			if a.Favorite {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Acronym, b.Acronym)
	})
	return list
}

// WithRates returns a copy of the catalog where each currency whose acronym is
// a key of 'rates' gets the new dollar rate.
//
// The receiver is left untouched.
func (c *Catalog) WithRates(rates map[string]float64) (*Catalog, error) {
	updated := slices.Clone(c.currencies)
	for i, cur := range updated {
		rate, ok := rates[cur.Acronym]
		if !ok {
			continue
		}
		cur.DollarRate = rate
		if err := cur.Validate(); err != nil {
			return nil, err
		}
		updated[i] = cur
	}
	return NewCatalog(updated...)
}
