// Package cmd implements the CLI application to convert currencies and rebalance portfolios.
package cmd

import (
	"flag"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/wellets"
	"github.com/etnz/wellets/config"
	"github.com/google/subcommands"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&convertCmd{}, "currencies")
	c.Register(&currenciesCmd{}, "currencies")
	c.Register(&syncCmd{}, "currencies")

	c.Register(&walletsCmd{}, "wallets")
	c.Register(&txCmd{}, "wallets")
	c.Register(&transferCmd{}, "wallets")

	c.Register(&portfoliosCmd{}, "portfolios")
	c.Register(&rebalanceCmd{}, "portfolios")

	c.Register(&adviseCmd{}, "help")
	c.Register(&topicCmd{}, "help")
}

// Commands lists every subcommand, in registration order.
var Commands = []subcommands.Command{
	&convertCmd{}, &currenciesCmd{}, &syncCmd{},
	&walletsCmd{}, &txCmd{}, &transferCmd{},
	&portfoliosCmd{}, &rebalanceCmd{},
	&adviseCmd{}, &topicCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "wellets.yaml", "Path to the configuration file")
var baseFlag = flag.String("c", "", "Base currency, id or acronym. Overrides the configuration and settings.json")

// stdout receives the command results, stderr the errors and logs.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// session is what most commands need: the configuration, a logger and the dataset.
type session struct {
	cfg  *config.Config
	log  zerolog.Logger
	data *wellets.Dataset
	base wellets.Currency
}

// newLogger returns the console logger of the commands.
func newLogger(level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.TimeOnly}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// openSession loads the configuration and the dataset, and resolves the base currency.
func openSession() (*session, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	log := newLogger(cfg.Level())

	data, err := wellets.DecodeDataset(cfg.DataDir)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot load dataset %q", cfg.DataDir)
	}
	key := *baseFlag
	if key == "" {
		key = cfg.BaseCurrency
	}
	base, err := baseCurrency(data, key, log)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("dir", cfg.DataDir).Str("base", base.String()).Int("currencies", data.Catalog.Len()).Msg("dataset loaded")
	return &session{cfg: cfg, log: log, data: data, base: base}, nil
}

// baseCurrency resolves the base currency: 'key' when set, then the dataset
// settings, then the reference currency of the catalog.
func baseCurrency(d *wellets.Dataset, key string, log zerolog.Logger) (wellets.Currency, error) {
	if key != "" {
		return d.Catalog.Lookup(key)
	}
	if d.Settings.CurrencyID != "" {
		return d.BaseCurrency()
	}
	for cur := range d.Catalog.All() {
		if cur.DollarRate == 1 {
			log.Debug().Str("currency", cur.String()).Msg("no base currency set, using the reference currency")
			return cur, nil
		}
	}
	return wellets.Currency{}, errors.Wrap(wellets.ErrUnknownCurrency, "no base currency: use -c, base_currency or settings.json")
}

// printMarkdown renders markdown for the terminal, or prints it as is when the
// output is not a terminal.
func printMarkdown(md string) {
	if f, ok := stdout.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		io.WriteString(stdout, md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		io.WriteString(stdout, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		io.WriteString(stdout, md)
		return
	}
	io.WriteString(stdout, out)
}
