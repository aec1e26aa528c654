package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/arr"
	"github.com/google/subcommands"
	"github.com/rotisserie/eris"
)

type queryCmd struct{}

func (*queryCmd) Name() string     { return "query" }
func (*queryCmd) Synopsis() string { return "evaluate a JSONPath expression over the ARR result" }
func (*queryCmd) Usage() string {
	return `arr query <jsonpath>

  Computes the ARR result and prints the values selected by a JSONPath
  expression, as JSON.

Usage Examples:
$ arr query '$.kpis.current_arr'
$ arr query '$.rollforward[-3:].ending_arr'
$ arr query '$.findings[?(@.kind=="reconciliation")].month'
`
}

func (c *queryCmd) SetFlags(f *flag.FlagSet) {}

func (c *queryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: query expects exactly one JSONPath expression")
		return subcommands.ExitUsageError
	}
	res, status := computeOrFail(ctx)
	if res == nil {
		return status
	}
	val, err := query(res, f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(val); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// query evaluates 'path' over the JSON form of the result.
func query(res *arr.Result, path string) (any, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return nil, eris.Wrap(err, "failed to encode result")
	}
	var jobj any
	if err := json.Unmarshal(data, &jobj); err != nil {
		return nil, eris.Wrap(err, "failed to decode result")
	}
	val, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, eris.Wrapf(err, "error evaluating %q", path)
	}
	return val, nil
}
