package cmd

import (
	"context"
	"flag"

	"github.com/etnz/arr/renderer"
	"github.com/google/subcommands"
)

type segmentsCmd struct{}

func (*segmentsCmd) Name() string     { return "segments" }
func (*segmentsCmd) Synopsis() string { return "display the ARR breakdown by customer segment" }
func (*segmentsCmd) Usage() string {
	return `arr segments

  Displays how the ARR of the last month is distributed over the configured
  segments. Segments are assigned per subscription ARR amount.
`
}

func (c *segmentsCmd) SetFlags(f *flag.FlagSet) {}

func (c *segmentsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	res, status := computeOrFail(ctx)
	if res == nil {
		return status
	}
	printMarkdown(renderer.SegmentsMarkdown(res))
	return subcommands.ExitSuccess
}
