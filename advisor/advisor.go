// Package advisor is a Gemini assistant answering questions about the wallets
// and portfolios of a dataset.
package advisor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/etnz/wellets"
	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

const instruction = `
You are a personal finance advisor. The user holds wallets in several currencies,
grouped into portfolios that have a target weight relative to their siblings.

Use the tools to convert amounts and to compute what to buy or sell to rebalance
the portfolios. Never compute conversions or rebalance actions yourself.

Amounts are expressed in %s unless the user asks for another currency.
Answer in short markdown.
`

// New returns the advisor expert for a dataset.
func New(d *wellets.Dataset, base wellets.Currency, model string, log zerolog.Logger) *Expert {
	tools := Tools(d, base)
	return &Expert{
		Name:        "Advisor",
		Description: "Advises on currency conversions and portfolio rebalancing.",
		ModelName:   model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclarations(tools)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: fmt.Sprintf(instruction, base)}}},
		},
		Library: NewLibrary(tools),
		log:     log.With().Str("client", "advisor").Logger(),
	}
}

const prompt = "advise> "

// Run is an interactive session with the expert, until 'bye' or the end of 'r'.
//
// 'prompts' are sent first, as if typed by the user. Answers are passed to 'show'.
func Run(ctx context.Context, e *Expert, w io.Writer, r io.Reader, show func(string), prompts ...string) error {
	reader := bufio.NewReader(r)
	fmt.Fprintln(w, "Welcome to wellets advisor. Type 'bye' to exit.")
	for {
		fmt.Fprint(w, prompt)
		var input string
		if len(prompts) > 0 {
			input, prompts = strings.TrimSpace(prompts[0]), prompts[1:]
			if input == "" {
				continue
			}
			fmt.Fprintln(w, input)
		} else {
			var err error
			input, err = reader.ReadString('\n')
			if err == io.EOF && strings.TrimSpace(input) == "" {
				fmt.Fprintln(w)
				return nil
			}
			if err != nil && err != io.EOF {
				return err
			}
		}

		input = strings.TrimSpace(input)
		if input == "bye" {
			return nil
		}
		if input == "" {
			continue
		}
		content, err := e.Ask(ctx, &genai.Part{Text: input})
		if err != nil {
			return err
		}
		show(Text(content))
	}
}
