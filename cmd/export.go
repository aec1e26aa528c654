package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/arr/export"
	"github.com/google/subcommands"
)

// exportCmd holds the flags for the 'export' subcommand.
type exportCmd struct {
	xlsx   string
	csvDir string
	json   string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the ARR result to xlsx, csv or json files" }
func (*exportCmd) Usage() string {
	return `arr export [-xlsx <file>] [-csv-dir <dir>] [-json <file>]

  Writes the monthly summary, the rollforward, the segments and the findings
  to a spreadsheet, to a directory of CSV files, or to a single JSON document.
  At least one destination is required.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.xlsx, "xlsx", "", "spreadsheet file to write")
	f.StringVar(&c.csvDir, "csv-dir", "", "directory to write CSV files into")
	f.StringVar(&c.json, "json", "", "JSON file to write")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.xlsx == "" && c.csvDir == "" && c.json == "" {
		fmt.Fprintln(os.Stderr, "Error: one of -xlsx, -csv-dir or -json is required")
		return subcommands.ExitUsageError
	}
	res, status := computeOrFail(ctx)
	if res == nil {
		return status
	}

	if c.xlsx != "" {
		if err := export.WriteXLSX(c.xlsx, res); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(os.Stderr, "Wrote %s\n", c.xlsx)
	}
	if c.csvDir != "" {
		if err := os.MkdirAll(c.csvDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		files, err := export.WriteCSV(c.csvDir, res)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		for _, file := range files {
			fmt.Fprintf(os.Stderr, "Wrote %s\n", file)
		}
	}
	if c.json != "" {
		out, err := os.Create(c.json)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		defer out.Close()
		if err := export.WriteJSON(out, res); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(os.Stderr, "Wrote %s\n", c.json)
	}
	return subcommands.ExitSuccess
}
