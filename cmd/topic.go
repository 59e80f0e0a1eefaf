package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/wellets/docs"
	"github.com/google/subcommands"
)

type topicCmd struct {
	list bool
}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "read the wellets manual" }
func (*topicCmd) Usage() string {
	return `wellets topic [-l] [<topic>...]

  Prints manual pages: the readme by default, '*' for every page.
  With -l, lists the page names instead.
`
}

func (c *topicCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.list, "l", false, "List the available topics.")
}

func (c *topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.list {
		names, err := docs.GetAllTopics()
		if err != nil {
			fmt.Fprintf(stderr, "Error listing topics: %v\n", err)
			return subcommands.ExitFailure
		}
		printMarkdown("* " + strings.Join(names, "\n* ") + "\n")
		return subcommands.ExitSuccess
	}

	names := f.Args()
	if len(names) == 0 {
		names = []string{"readme"}
	}
	page, err := docs.GetTopics(names...)
	if err != nil {
		fmt.Fprintf(stderr, "Error reading topic %s: %v\n", strings.Join(names, ", "), err)
		return subcommands.ExitFailure
	}
	printMarkdown(page)
	return subcommands.ExitSuccess
}
