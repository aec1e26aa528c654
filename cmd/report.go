package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/arr/date"
	"github.com/etnz/arr/renderer"
	"github.com/google/subcommands"
)

// reportCmd holds the flags for the 'report' subcommand.
type reportCmd struct {
	period       string
	html         bool
	output       string
	skipFindings bool
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "generate the full ARR report" }
func (*reportCmd) Usage() string {
	return `arr report [-period <period>] [-html] [-o <file>] [-skip-findings]

  Generates the full report: key metrics, waterfall of the last month,
  rollforward, segments and data quality findings. The report is printed as
  markdown, or written as a standalone html page with -html.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "period", date.Monthly.String(), "granularity of the rollforward (monthly, quarterly, yearly)")
	f.BoolVar(&c.html, "html", false, "render the report as html")
	f.StringVar(&c.output, "o", "", "write the report to this file instead of the standard output")
	f.BoolVar(&c.skipFindings, "skip-findings", false, "do not list data quality findings")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	period, err := date.ParsePeriod(c.period)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing period: %v\n", err)
		return subcommands.ExitUsageError
	}
	res, status := computeOrFail(ctx)
	if res == nil {
		return status
	}

	md := renderer.ReportMarkdown(res, renderer.ReportOptions{Period: period, SkipFindings: c.skipFindings})
	out := md
	if c.html {
		if out, err = renderer.HTML(md); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	switch {
	case c.output != "":
		if err := os.WriteFile(c.output, []byte(out), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(os.Stderr, "Report written to %s\n", c.output)
	case c.html:
		fmt.Fprint(stdout, out)
	default:
		printMarkdown(out)
	}
	return subcommands.ExitSuccess
}
