package cmd

import (
	"context"
	"flag"

	"github.com/etnz/arr/renderer"
	"github.com/google/subcommands"
)

// kpisCmd holds the flags for the 'kpis' subcommand.
type kpisCmd struct {
	months int
}

func (*kpisCmd) Name() string     { return "kpis" }
func (*kpisCmd) Synopsis() string { return "display the headline ARR metrics" }
func (*kpisCmd) Usage() string {
	return `arr kpis [-months <n>]

  Displays the key metrics of the last month, its ARR waterfall, and the ARR
  trend over the last months.
`
}

func (c *kpisCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.months, "months", 12, "number of months in the trend")
}

func (c *kpisCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	res, status := computeOrFail(ctx)
	if res == nil {
		return status
	}
	printMarkdown(renderer.KPIsMarkdown(res) + "\n" + renderer.TrendMarkdown(res.Chain, c.months))
	return subcommands.ExitSuccess
}
