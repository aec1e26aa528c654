package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/arr/docs"
	"github.com/google/subcommands"
)

// topicCmd prints the embedded documentation.
type topicCmd struct{}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "read the documentation on a topic" }
func (*topicCmd) Usage() string {
	return `arr topic [<topic>...]

  Prints the documentation of the given topics, or the list of topics.
  The topic '*' prints them all.
`
}

func (*topicCmd) SetFlags(*flag.FlagSet) {}

func (*topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	topics := f.Args()
	if len(topics) == 0 {
		topics = []string{"readme"}
	}
	md, err := docs.GetTopics(topics...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}
