package advisor

import (
	"context"
	"fmt"

	"github.com/etnz/wellets"
	"github.com/etnz/wellets/renderer"
	"google.golang.org/genai"
)

// Tools returns the functions giving a model access to the dataset, values are
// expressed in 'base'.
func Tools(d *wellets.Dataset, base wellets.Currency) []Function {
	return []Function{
		convertAmount(d.Catalog),
		rebalance(d, base),
		listPortfolios(d),
		listWallets(d, base),
	}
}

func convertAmount(catalog *wellets.Catalog) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        "convert_amount",
			Description: "Converts an amount of money from one currency to another using the current dollar rates.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"from":   {Type: genai.TypeString, Description: "Currency of the amount, id or acronym, e.g. EUR."},
					"to":     {Type: genai.TypeString, Description: "Currency to convert to, id or acronym, e.g. USD."},
					"amount": {Type: genai.TypeNumber, Description: "Amount to convert."},
				},
				Required: []string{"from", "to", "amount"},
			},
			Response: &genai.Schema{Type: genai.TypeString, Description: "The converted amount, in markdown."},
		},
		Func: func(ctx context.Context, args map[string]any) (string, error) {
			from, err := currencyArg(catalog, args, "from")
			if err != nil {
				return "", err
			}
			to, err := currencyArg(catalog, args, "to")
			if err != nil {
				return "", err
			}
			amount, ok := args["amount"].(float64)
			if !ok {
				return "", fmt.Errorf("argument 'amount' is not a number as expected but %T", args["amount"])
			}
			result, err := wellets.Convert(from, to, amount)
			if err != nil {
				return "", err
			}
			return renderer.ConversionMarkdown(from, to, amount, result), nil
		},
	}
}

func rebalance(d *wellets.Dataset, base wellets.Currency) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "rebalance",
			Description: `Computes, for a set of sibling portfolios, their actual and target values and what to buy or sell
to get back to their target weights. Without a portfolio, the root portfolios are rebalanced, otherwise the
children of the given portfolio.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"portfolio": {Type: genai.TypeString, Description: "Id or alias of the parent portfolio, empty for the roots."},
				},
			},
			Response: &genai.Schema{Type: genai.TypeString, Description: "A markdown table of the rebalance actions."},
		},
		Func: func(ctx context.Context, args map[string]any) (string, error) {
			key, _ := args["portfolio"].(string)
			var alloc *wellets.Allocation
			var err error
			if key == "" {
				alloc, err = wellets.RebalanceRoots(d.Tree, base, d.Catalog)
			} else {
				var p *wellets.Portfolio
				if p, err = d.Tree.Find(key); err != nil {
					return "", err
				}
				alloc, err = wellets.RebalanceChildren(d.Tree, p.ID, base, d.Catalog)
			}
			if err != nil {
				return "", err
			}
			return renderer.AllocationMarkdown(alloc), nil
		},
	}
}

func listPortfolios(d *wellets.Dataset) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        "list_portfolios",
			Description: "Lists the portfolio tree with the target weight of each portfolio and its wallets.",
			Response:    &genai.Schema{Type: genai.TypeString, Description: "A markdown outline of the portfolios."},
		},
		Func: func(ctx context.Context, args map[string]any) (string, error) {
			return renderer.TreeMarkdown(d.Tree), nil
		},
	}
}

func listWallets(d *wellets.Dataset, base wellets.Currency) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        "list_wallets",
			Description: "Lists the wallets with their balance and their value in the base currency.",
			Response:    &genai.Schema{Type: genai.TypeString, Description: "A markdown table of the wallets."},
		},
		Func: func(ctx context.Context, args map[string]any) (string, error) {
			return renderer.WalletsMarkdown(d.Tree, d.Catalog, base), nil
		},
	}
}

func currencyArg(catalog *wellets.Catalog, args map[string]any, name string) (wellets.Currency, error) {
	v, ok := args[name].(string)
	if !ok {
		return wellets.Currency{}, fmt.Errorf("argument '%s' is not a string as expected but %T", name, args[name])
	}
	return catalog.Lookup(v)
}
