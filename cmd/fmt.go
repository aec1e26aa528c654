package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/arr"
	"github.com/google/subcommands"
)

type fmtCmd struct {
	output string
}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and formats the ledger file into a canonical form"
}
func (*fmtCmd) Usage() string {
	return `arr fmt [-o <file>]

  Reads the ledger, sorts subscriptions by start date and transactions by
  date, and writes them back in a canonical JSONL form. By default the ledger
  is formatted in-place.
`
}

func (c *fmtCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "write the formatted ledger to this file instead")
}

func (c *fmtCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, err := arr.FileSource{Path: *ledgerFile}.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	out := c.output
	if out == "" {
		out = *ledgerFile
	}
	if err := arr.SaveLedger(out, ledger); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "Ledger file '%s' has been formatted.\n", out)
	return subcommands.ExitSuccess
}
