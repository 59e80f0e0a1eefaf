package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/wellets/advisor"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

// adviseCmd is the subcommand for the AI advisor.
type adviseCmd struct {
	model string
}

func (*adviseCmd) Name() string     { return "advise" }
func (*adviseCmd) Synopsis() string { return "ask the AI advisor about your wallets and portfolios" }
func (*adviseCmd) Usage() string {
	return `wellets advise [-model <model>] [<question>]

  Answers a single question, or starts an interactive session when no question
  is given. Type 'bye' to exit. Requires GEMINI_API_KEY.
`
}

func (c *adviseCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.model, "model", "", "Gemini model. Defaults to the configuration.")
}

func (c *adviseCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openSession()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if s.cfg.Advisor.APIKey == "" {
		fmt.Fprintln(stderr, "Error: GEMINI_API_KEY is not set")
		return subcommands.ExitFailure
	}
	model := s.cfg.Advisor.Model
	if c.model != "" {
		model = c.model
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  s.cfg.Advisor.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		fmt.Fprintln(stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	expert := advisor.New(s.data, s.base, model, s.log)
	if err := expert.Start(ctx, client); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	if f.NArg() > 0 {
		content, err := expert.Ask(ctx, &genai.Part{Text: strings.Join(f.Args(), " ")})
		if err != nil {
			fmt.Fprintln(stderr, "Advisor failed:", err)
			return subcommands.ExitFailure
		}
		printMarkdown(advisor.Text(content))
		return subcommands.ExitSuccess
	}

	if err := advisor.Run(ctx, expert, stdout, os.Stdin, printMarkdown); err != nil {
		fmt.Fprintln(stderr, "Advisor failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
