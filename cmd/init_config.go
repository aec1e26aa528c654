package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/arr/config"
	"github.com/google/subcommands"
)

// initConfigCmd holds the flags for the 'init-config' subcommand.
type initConfigCmd struct {
	output string
}

func (*initConfigCmd) Name() string     { return "init-config" }
func (*initConfigCmd) Synopsis() string { return "write the default configuration file" }
func (*initConfigCmd) Usage() string {
	return `arr init-config [-o <file>]

  Writes the default configuration as YAML, to be edited. An existing file
  is never overwritten.
`
}

func (c *initConfigCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", config.DefaultFile, "configuration file to write")
}

func (c *initConfigCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := config.Default().Write(c.output); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "Configuration written to %s\n", c.output)
	return subcommands.ExitSuccess
}
