package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"

	"github.com/etnz/wellets"
	"github.com/etnz/wellets/renderer"
	"github.com/google/subcommands"
)

type portfoliosCmd struct {
	jsonl bool
}

func (*portfoliosCmd) Name() string     { return "portfolios" }
func (*portfoliosCmd) Synopsis() string { return "show the portfolio tree" }
func (*portfoliosCmd) Usage() string {
	return `wellets portfolios [-jsonl]

  Shows the portfolio tree with the weight and the wallets of each portfolio.
  Sibling weights that do not sum to 1 are reported.
`
}

func (c *portfoliosCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.jsonl, "jsonl", false, "Print the portfolios as JSONL, parents first.")
}

func (c *portfoliosCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openSession()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	tree := s.data.Tree
	s.checkWeights(tree.Roots())
	for _, p := range tree.All() {
		if children := tree.Children(p.ID); len(children) > 0 {
			s.checkWeights(children)
		}
	}

	if c.jsonl {
		if err := wellets.EncodePortfolios(stdout, tree); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.TreeMarkdown(tree))
	return subcommands.ExitSuccess
}

// checkWeights logs a warning when the weights of 'siblings' do not sum to 1.
func (s *session) checkWeights(siblings []*wellets.Portfolio) {
	if err := wellets.CheckWeights(siblings, s.cfg.WeightTolerance); err != nil {
		s.log.Warn().Err(err).Msg("skewed weights")
	}
}

type rebalanceCmd struct {
	portfolio string
	json      bool
}

func (*rebalanceCmd) Name() string     { return "rebalance" }
func (*rebalanceCmd) Synopsis() string { return "compute what to buy or sell to reach the target weights" }
func (*rebalanceCmd) Usage() string {
	return `wellets rebalance [-p <portfolio>] [-json]

  Compares the actual value of sibling portfolios with their target value.
  Without -p the root portfolios are rebalanced, otherwise the children of the
  given portfolio.
`
}

func (c *rebalanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "", "Id or alias of the parent portfolio.")
	f.BoolVar(&c.json, "json", false, "Print the result as JSON.")
}

func (c *rebalanceCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openSession()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	tree := s.data.Tree

	var alloc *wellets.Allocation
	if c.portfolio == "" {
		s.checkWeights(tree.Roots())
		alloc, err = wellets.RebalanceRoots(tree, s.base, s.data.Catalog)
	} else {
		var p *wellets.Portfolio
		if p, err = tree.Find(c.portfolio); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		s.checkWeights(tree.Children(p.ID))
		alloc, err = wellets.RebalanceChildren(tree, p.ID, s.base, s.data.Catalog)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error computing rebalance: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.json {
		enc := json.NewEncoder(stdout)
		if err := enc.Encode(alloc); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.AllocationMarkdown(alloc))
	return subcommands.ExitSuccess
}
