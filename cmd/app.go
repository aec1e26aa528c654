// Package cmd implements the arr command line application.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/arr"
	"github.com/etnz/arr/config"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	ledgerFile = flag.String("ledger-file", "ledger.jsonl", "Path to the ledger file (JSONL format)")
	configFile = flag.String("config", "", "Path to the configuration file. Defaults to arr.yaml in the working directory if any.")
	Verbose    = flag.Bool("v", false, "Log at debug level")
	plain      = flag.Bool("plain", false, "Print markdown as is, without terminal rendering")

	// stdout is where commands print their output.
	stdout io.Writer = os.Stdout
)

// Commands lists the subcommands by group.
var Commands = map[string][]subcommands.Command{
	"reports": {
		&rollforwardCmd{},
		&segmentsCmd{},
		&kpisCmd{},
		&reportCmd{},
		&validateCmd{},
		&queryCmd{},
	},
	"ledger": {
		&fmtCmd{},
		&importCmd{},
		&exportCmd{},
	},
	"service": {
		&serveCmd{},
		&initConfigCmd{},
	},
	"documentation": {
		&topicCmd{},
	},
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for group, cmds := range Commands {
		for _, cmd := range cmds {
			c.Register(cmd, group)
		}
	}
}

// loadConfig loads the configuration and installs the global logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	if *Verbose {
		cfg.Log.Level = "debug"
	}
	if _, err := config.InitLogger(cfg.Log); err != nil {
		return nil, err
	}
	return cfg, nil
}

// compute loads the configuration and the ledger file and runs the engine.
func compute(ctx context.Context) (*arr.Result, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	log := zap.L().With(zap.String("ledger", *ledgerFile))
	opts, err := cfg.EngineOptions(log)
	if err != nil {
		return nil, nil, err
	}
	ledger, err := arr.FileSource{Path: *ledgerFile}.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	res, err := arr.Compute(ctx, ledger, opts)
	if err != nil {
		return nil, nil, err
	}
	return res, cfg, nil
}

// computeOrFail is compute for commands: errors are printed and turned into an exit status.
func computeOrFail(ctx context.Context) (*arr.Result, subcommands.ExitStatus) {
	res, _, err := compute(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, subcommands.ExitFailure
	}
	return res, subcommands.ExitSuccess
}

// printMarkdown renders markdown for the terminal.
func printMarkdown(md string) {
	if *plain {
		fmt.Fprint(stdout, md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	fmt.Fprint(stdout, out)
}
