package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/arr/renderer"
	"github.com/google/subcommands"
)

type validateCmd struct{}

func (*validateCmd) Name() string     { return "validate" }
func (*validateCmd) Synopsis() string { return "check that the ARR rollforward reconciles" }
func (*validateCmd) Usage() string {
	return `arr validate

  Computes the rollforward and lists the data quality findings. Exits with
  status 1 when a month does not reconcile with its point-in-time snapshot,
  that is when the result is not authoritative.
`
}

func (c *validateCmd) SetFlags(f *flag.FlagSet) {}

func (c *validateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	res, status := computeOrFail(ctx)
	if res == nil {
		return status
	}
	errs, warns := res.Findings.Count()
	if len(res.Findings) > 0 {
		printMarkdown(renderer.FindingsMarkdown(res.Findings))
	}
	if !res.Authoritative {
		fmt.Fprintf(stdout, "❌ %s to %s is not authoritative (%d error(s), %d warning(s)).\n", res.From.MonthKey(), res.Through.MonthKey(), errs, warns)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "✅ %s to %s reconciles (%d error(s), %d warning(s)).\n", res.From.MonthKey(), res.Through.MonthKey(), errs, warns)
	return subcommands.ExitSuccess
}
