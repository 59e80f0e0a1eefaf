package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/wellets"
	"github.com/etnz/wellets/renderer"
	"github.com/google/subcommands"
)

type walletsCmd struct {
	wallet string
}

func (*walletsCmd) Name() string     { return "wallets" }
func (*walletsCmd) Synopsis() string { return "list the wallets and their value" }
func (*walletsCmd) Usage() string {
	return `wellets wallets [-w <wallet>]

  Lists the wallets, largest first, with their value in the base currency.
  With -w, shows a single wallet and its average load price.
`
}

func (c *walletsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.wallet, "w", "", "Wallet id or alias to detail.")
}

func (c *walletsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openSession()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.wallet == "" {
		printMarkdown(renderer.WalletsMarkdown(s.data.Tree, s.data.Catalog, s.base))
		return subcommands.ExitSuccess
	}

	w, err := s.data.Tree.FindWallet(c.wallet)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	cur, ok := s.data.Catalog.Get(w.CurrencyID)
	if !ok {
		fmt.Fprintf(stderr, "Error: wallet %q: %v %q\n", w.Alias, wellets.ErrUnknownCurrency, w.CurrencyID)
		return subcommands.ExitFailure
	}
	txs := s.data.WalletTransactions(w.ID)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", w.Alias)
	fmt.Fprintf(&b, "* Balance: **%s**\n", wellets.M(w.Balance, cur.Acronym))
	fmt.Fprintf(&b, "* Value: %s\n", wellets.M(wellets.ConvertAmount(cur.DollarRate, s.base.DollarRate, w.Balance), s.base.Acronym))
	fmt.Fprintf(&b, "* Transactions: %d\n", len(txs))
	if price, ok := wellets.AverageLoadPrice(txs, cur, s.base); ok {
		fmt.Fprintf(&b, "* Average load price: %s per %s\n", wellets.M(price, s.base.Acronym), cur)
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
