package renderer

import (
	"strings"

	"github.com/etnz/wellets"
	"github.com/shopspring/decimal"
)

// Currencies is a currency catalog ready to be rendered.
type Currencies struct {
	BaseCurrency string        `json:"baseCurrency"`
	Rows         []CurrencyRow `json:"rows"`
}

// CurrencyRow is a single currency.
type CurrencyRow struct {
	Acronym    string        `json:"acronym"`
	Alias      string        `json:"alias,omitempty"`
	DollarRate string        `json:"dollarRate"` // exact decimal representation
	Value      wellets.Money `json:"value"`      // one unit in the base currency
	Favorite   bool          `json:"favorite,omitempty"`
}

// NewCurrencies converts a catalog into its rendering model, favorites first.
func NewCurrencies(c *wellets.Catalog, base wellets.Currency) *Currencies {
	res := &Currencies{BaseCurrency: base.String()}
	for _, cur := range c.Favorites() {
		res.Rows = append(res.Rows, CurrencyRow{
			Acronym:    cur.String(),
			Alias:      cur.Alias,
			DollarRate: decimal.NewFromFloat(cur.DollarRate).String(),
			Value:      wellets.M(wellets.ConvertAmount(cur.DollarRate, base.DollarRate, 1), base.Acronym),
			Favorite:   cur.Favorite,
		})
	}
	return res
}

// Wallets is the list of wallets ready to be rendered.
type Wallets struct {
	BaseCurrency string        `json:"baseCurrency"`
	Rows         []WalletRow   `json:"rows"`
	Total        wellets.Money `json:"total"`
}

// WalletRow is a single wallet.
type WalletRow struct {
	Alias    string        `json:"alias"`
	Currency string        `json:"currency"`
	Balance  wellets.Money `json:"balance"` // in the wallet currency
	Value    wellets.Money `json:"value"`   // in the base currency
}

// NewWallets converts the wallets of a tree into their rendering model, largest first.
//
// Wallets in a currency unknown to the catalog count at a dollar rate of 1.
func NewWallets(tree *wellets.Tree, c *wellets.Catalog, base wellets.Currency) *Wallets {
	wallets := tree.AllWallets()
	wellets.SortByValue(wallets, c)

	res := &Wallets{
		BaseCurrency: base.String(),
		Total:        wellets.M(wellets.TotalBalance(wallets, c, base), base.Acronym),
	}
	for _, w := range wallets {
		acronym := c.Name(w.CurrencyID)
		res.Rows = append(res.Rows, WalletRow{
			Alias:    w.Alias,
			Currency: acronym,
			Balance:  wellets.M(w.Balance, acronym),
			Value:    wellets.M(wellets.ConvertAmount(c.DollarRate(w.CurrencyID), base.DollarRate, w.Balance), base.Acronym),
		})
	}
	return res
}

// Tree is the portfolio tree ready to be rendered as an outline.
type Tree struct {
	Rows []TreeRow `json:"rows"`
}

// TreeRow is a single portfolio of the outline.
type TreeRow struct {
	Indent  string          `json:"indent"`
	Alias   string          `json:"alias"`
	Weight  wellets.Percent `json:"weight"`
	Wallets string          `json:"wallets,omitempty"` // direct wallets, comma separated
}

// NewTree flattens the portfolio tree depth-first.
func NewTree(tree *wellets.Tree) *Tree {
	res := &Tree{}
	var walk func(p *wellets.Portfolio, depth int)
	walk = func(p *wellets.Portfolio, depth int) {
		var aliases []string
		for _, w := range tree.DirectWallets(p.ID) {
			aliases = append(aliases, w.Alias)
		}
		res.Rows = append(res.Rows, TreeRow{
			Indent:  strings.Repeat("  ", depth),
			Alias:   name(p),
			Weight:  wellets.Ratio(p.Weight),
			Wallets: strings.Join(aliases, ", "),
		})
		for _, c := range tree.Children(p.ID) {
			walk(c, depth+1)
		}
	}
	for _, root := range tree.Roots() {
		walk(root, 0)
	}
	return res
}

// Conversion is a conversion result ready to be rendered.
type Conversion struct {
	Amount wellets.Money `json:"amount"`
	Result wellets.Money `json:"result"`
	Rate   string        `json:"rate"` // units of 'to' for one unit of 'from'
}

// NewConversion returns the rendering model of a conversion.
func NewConversion(from, to wellets.Currency, amount, result float64) *Conversion {
	rate := wellets.ConvertAmount(from.DollarRate, to.DollarRate, 1)
	return &Conversion{
		Amount: wellets.M(amount, from.Acronym),
		Result: wellets.M(result, to.Acronym),
		Rate:   "1 " + from.String() + " = " + decimal.NewFromFloat(rate).Round(8).String() + " " + to.String(),
	}
}
