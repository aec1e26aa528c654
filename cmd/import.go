package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/arr"
	"github.com/etnz/arr/ingest"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

// importCmd holds the flags for the 'import' subcommand.
type importCmd struct {
	subscriptions string
	transactions  string
	unit          string
	currency      string
	force         bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import subscriptions and transactions from CSV files" }
func (*importCmd) Usage() string {
	return `arr import -subscriptions <file> [-transactions <file>] [-unit monthly|annual] [-currency <code>] [-f]

  Converts a pair of CSV exports into the JSONL ledger file. Rows without an
  identifier get a stable generated one. The unit declares how transaction
  amounts are expressed and defaults to the configured engine unit.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.subscriptions, "subscriptions", "saas_subscriptions.csv", "subscriptions CSV file")
	f.StringVar(&c.transactions, "transactions", "saas_transactions.csv", "transactions CSV file, empty to skip")
	f.StringVar(&c.unit, "unit", "", "unit of transaction amounts (monthly, annual)")
	f.StringVar(&c.currency, "currency", "", "currency of the amounts")
	f.BoolVar(&c.force, "f", false, "overwrite an existing ledger file")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.unit == "" {
		c.unit = cfg.Engine.Unit
	}
	if c.currency == "" {
		c.currency = cfg.Engine.Currency
	}
	unit, err := arr.ParseUnit(c.unit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if !c.force {
		if _, err := os.Stat(*ledgerFile); err == nil {
			fmt.Fprintf(os.Stderr, "Error: ledger file %q already exists, use -f to overwrite it\n", *ledgerFile)
			return subcommands.ExitFailure
		}
	}

	src := ingest.Source{
		Subscriptions: c.subscriptions,
		Transactions:  c.transactions,
		Currency:      c.currency,
		Unit:          unit,
		Logger:        zap.L(),
	}
	ledger, err := src.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := arr.SaveLedger(*ledgerFile, ledger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "Imported %d subscriptions and %d transactions into %s\n",
		len(ledger.Subscriptions()), len(ledger.Transactions()), *ledgerFile)
	return subcommands.ExitSuccess
}
