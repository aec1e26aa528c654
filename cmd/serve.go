package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/etnz/arr"
	"github.com/etnz/arr/server"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

// serveCmd holds the flags for the 'serve' subcommand.
type serveCmd struct {
	port int
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the ARR result over HTTP" }
func (*serveCmd) Usage() string {
	return `arr serve [-port <port>]

  Computes the ARR result from the ledger file and serves it as JSON. The
  result is recomputed on POST /api/refresh; a result that does not
  reconcile never replaces a published one unless ?force=true is set.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.port, "port", 0, "port to listen on. Defaults to the configured server port.")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	log := zap.L().With(zap.String("ledger", *ledgerFile))
	opts, err := cfg.EngineOptions(log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	port := c.port
	if port == 0 {
		port = cfg.Server.Port
	}

	srv := server.New(arr.FileSource{Path: *ledgerFile}, opts, cfg.Server.AllowedOrigins, log)
	if _, _, err := srv.Refresh(ctx, false); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := srv.ListenAndServe(ctx, fmt.Sprintf(":%d", port)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
