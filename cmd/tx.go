package cmd

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/etnz/wellets"
	"github.com/google/subcommands"
)

type txCmd struct {
	wallet string
	value  float64
	rate   float64
	memo   string
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "record a transaction on a wallet" }
func (*txCmd) Usage() string {
	return `wellets tx -w <wallet> -v <value> [-rate <dollar rate>] [-m <description>]

  Appends a transaction to transactions.jsonl. The value is positive for incoming
  value and negative for outgoing value, in the wallet currency.
`
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.wallet, "w", "", "Wallet id or alias.")
	f.Float64Var(&c.value, "v", 0, "Signed value of the transaction.")
	f.Float64Var(&c.rate, "rate", 0, "Dollar rate paid. Defaults to the current rate of the wallet currency.")
	f.StringVar(&c.memo, "m", "", "Description.")
}

func (c *txCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.wallet == "" {
		fmt.Fprintln(stderr, "Error: -w flag is required.")
		return subcommands.ExitUsageError
	}
	if c.value == 0 {
		fmt.Fprintln(stderr, "Error: -v flag is required and must not be 0.")
		return subcommands.ExitUsageError
	}
	if c.rate < 0 {
		fmt.Fprintf(stderr, "Error: -rate %v must be positive.\n", c.rate)
		return subcommands.ExitUsageError
	}

	s, err := openSession()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	w, err := s.data.Tree.FindWallet(c.wallet)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	tx := wellets.Transaction{
		ID:          wellets.NewID(),
		WalletID:    w.ID,
		Value:       c.value,
		DollarRate:  c.rate,
		Description: c.memo,
		CreatedAt:   time.Now().UTC(),
	}
	if err := wellets.AppendTransactions(s.cfg.DataDir, tx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	s.log.Info().Str("wallet", w.Alias).Float64("value", tx.Value).Str("id", tx.ID).Msg("transaction recorded")
	return subcommands.ExitSuccess
}

type transferCmd struct {
	from    string
	to      string
	value   float64
	static  float64
	percent float64
}

func (*transferCmd) Name() string     { return "transfer" }
func (*transferCmd) Synopsis() string { return "transfer value between two wallets" }
func (*transferCmd) Usage() string {
	return `wellets transfer -from <wallet> -to <wallet> -v <value> [-static <fee>] [-percent <fraction>]

  Debits the source wallet and credits the destination wallet with the value
  left after fees, converted to its currency. Fees are in the source currency.
`
}

func (c *transferCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "Source wallet id or alias.")
	f.StringVar(&c.to, "to", "", "Destination wallet id or alias.")
	f.Float64Var(&c.value, "v", 0, "Value debited from the source wallet.")
	f.Float64Var(&c.static, "static", 0, "Static fee.")
	f.Float64Var(&c.percent, "percent", 0, "Percentual fee, as a fraction of the value (0.01 for 1%).")
}

func (c *transferCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.from == "" || c.to == "" {
		fmt.Fprintln(stderr, "Error: -from and -to flags are required.")
		return subcommands.ExitUsageError
	}

	s, err := openSession()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	from, err := s.data.Tree.FindWallet(c.from)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	to, err := s.data.Tree.FindWallet(c.to)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	t := wellets.Transfer{
		ID:            wellets.NewID(),
		FromWalletID:  from.ID,
		ToWalletID:    to.ID,
		Value:         c.value,
		StaticFee:     c.static,
		PercentualFee: c.percent,
		CreatedAt:     time.Now().UTC(),
	}
	debit, credit, err := t.Transactions(from, to, s.data.Catalog)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if err := wellets.AppendTransactions(s.cfg.DataDir, debit, credit); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	s.log.Info().
		Str("from", from.Alias).
		Str("to", to.Alias).
		Float64("debit", debit.Value).
		Float64("credit", credit.Value).
		Msg("transfer recorded")
	return subcommands.ExitSuccess
}
