package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/arr"
	"github.com/etnz/arr/date"
	"github.com/etnz/arr/renderer"
	"github.com/google/subcommands"
)

// rollforwardCmd holds the flags for the 'rollforward' subcommand.
type rollforwardCmd struct {
	period string
	json   bool
}

func (*rollforwardCmd) Name() string     { return "rollforward" }
func (*rollforwardCmd) Synopsis() string { return "display the ARR rollforward" }
func (*rollforwardCmd) Usage() string {
	return `arr rollforward [-period <period>] [-json]

  Displays the ARR bridge of every month of the ledger: starting ARR, new,
  expansion, contraction, churn and ending ARR. Months can be merged into
  quarters or years.
`
}

func (c *rollforwardCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "period", date.Monthly.String(), "granularity of the rollforward (monthly, quarterly, yearly)")
	f.BoolVar(&c.json, "json", false, "print the rollforward as JSON")
}

func (c *rollforwardCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	period, err := date.ParsePeriod(c.period)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing period: %v\n", err)
		return subcommands.ExitUsageError
	}
	res, status := computeOrFail(ctx)
	if res == nil {
		return status
	}

	if c.json {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(arr.Rollup(res.Chain, period)); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding rollforward: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.RollforwardMarkdown(res, period))
	return subcommands.ExitSuccess
}
