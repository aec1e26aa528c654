// Command arr computes the ARR rollforward of a subscription ledger.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/arr/cmd"
	"github.com/google/subcommands"
)

func main() {
	name := path.Base(os.Args[0])
	// Answers shell completion requests and exits, when invoked by the shell.
	cmd.Completion().Complete(name)

	commander := subcommands.NewCommander(flag.CommandLine, name)
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
