package cmd

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/etnz/wellets"
	"github.com/etnz/wellets/renderer"
	"github.com/google/subcommands"
)

type convertCmd struct {
	from string
	to   string
}

func (*convertCmd) Name() string     { return "convert" }
func (*convertCmd) Synopsis() string { return "convert an amount between two currencies" }
func (*convertCmd) Usage() string {
	return `wellets convert [-from <currency>] [-to <currency>] <amount>

  Converts an amount using the dollar rates of the currency catalog.
  Currencies are designated by id or acronym, both default to the base currency.
`
}

func (c *convertCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "Currency of the amount.")
	f.StringVar(&c.to, "to", "", "Currency to convert to.")
}

func (c *convertCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(stderr, "Error: convert expects exactly one amount")
		return subcommands.ExitUsageError
	}
	amount, err := strconv.ParseFloat(f.Arg(0), 64)
	if err != nil {
		fmt.Fprintf(stderr, "Error parsing amount %q: %v\n", f.Arg(0), err)
		return subcommands.ExitUsageError
	}

	s, err := openSession()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	from, to := s.base, s.base
	if c.from != "" {
		if from, err = s.data.Catalog.Lookup(c.from); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	if c.to != "" {
		if to, err = s.data.Catalog.Lookup(c.to); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	result, err := wellets.Convert(from, to, amount)
	if err != nil {
		fmt.Fprintf(stderr, "Error converting %v %s to %s: %v\n", amount, from, to, err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.ConversionMarkdown(from, to, amount, result))
	return subcommands.ExitSuccess
}
