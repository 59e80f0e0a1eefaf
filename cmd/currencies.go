package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/wellets"
	"github.com/etnz/wellets/rates"
	"github.com/etnz/wellets/renderer"
	"github.com/google/subcommands"
)

type currenciesCmd struct{}

func (*currenciesCmd) Name() string     { return "currencies" }
func (*currenciesCmd) Synopsis() string { return "list the currency catalog" }
func (*currenciesCmd) Usage() string {
	return `wellets currencies

  Lists the currencies, favorites first, with the value of one unit in the base currency.
`
}

func (*currenciesCmd) SetFlags(f *flag.FlagSet) {}

func (*currenciesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openSession()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.CurrenciesMarkdown(s.data.Catalog, s.base))
	return subcommands.ExitSuccess
}

type syncCmd struct {
	url  string
	path string
	dry  bool
}

func (*syncCmd) Name() string     { return "sync" }
func (*syncCmd) Synopsis() string { return "download the latest dollar rates" }
func (*syncCmd) Usage() string {
	return `wellets sync [-url <url>] [-path <jsonpath>] [-n]

  Downloads the latest dollar rates and rewrites currencies.jsonl.
  Currencies unknown to the provider keep their rate.
`
}

func (c *syncCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.url, "url", "", "Rates provider URL. Defaults to the configuration.")
	f.StringVar(&c.path, "path", "", "JSONPath of the rates object in the response. Defaults to the configuration.")
	f.BoolVar(&c.dry, "n", false, "Dry run: print the new rates without writing them.")
}

func (c *syncCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openSession()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	url, path := s.cfg.Rates.URL, s.cfg.Rates.Path
	if c.url != "" {
		url = c.url
	}
	if c.path != "" {
		path = c.path
	}

	client := rates.New(url, path, s.cfg.Rates.Cache, s.log)
	catalog, err := client.Sync(ctx, s.data.Catalog)
	if err != nil {
		fmt.Fprintf(stderr, "Error synchronising rates: %v\n", err)
		return subcommands.ExitFailure
	}
	if !c.dry {
		if err := wellets.EncodeCurrencies(s.cfg.DataDir, catalog); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		s.log.Info().Int("currencies", catalog.Len()).Msg("rates updated")
	}
	base, _ := catalog.Get(s.base.ID)
	printMarkdown(renderer.CurrenciesMarkdown(catalog, base))
	return subcommands.ExitSuccess
}
