package cmd

import (
	"flag"
	"strings"

	"github.com/etnz/arr/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

var periods = predict.Set{"monthly", "quarterly", "yearly"}

// Completion returns the shell completion tree of the application, built
// from the global flags and every registered subcommand.
func Completion() *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: flagPredictors(flag.CommandLine),
	}
	for _, cmds := range Commands {
		for _, c := range cmds {
			fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
			c.SetFlags(fs)
			root.Sub[c.Name()] = &complete.Command{Flags: flagPredictors(fs)}
		}
	}
	if topics, err := docs.GetAllTopics(); err == nil {
		root.Sub["topic"].Args = predict.Set(append(topics, "*"))
	}
	return root
}

// flagPredictors guesses a predictor for each flag from its name.
func flagPredictors(fs *flag.FlagSet) map[string]complete.Predictor {
	flags := map[string]complete.Predictor{}
	fs.VisitAll(func(f *flag.Flag) {
		switch {
		case f.Name == "period":
			flags[f.Name] = periods
		case f.Name == "unit":
			flags[f.Name] = predict.Set{"monthly", "annual"}
		case strings.HasSuffix(f.Name, "-dir"):
			flags[f.Name] = predict.Dirs("*")
		case f.Name == "config":
			flags[f.Name] = predict.Files("*.yaml")
		case strings.HasSuffix(f.Name, "-file"):
			flags[f.Name] = predict.Files("*.jsonl")
		case f.Name == "subscriptions", f.Name == "transactions":
			flags[f.Name] = predict.Files("*.csv")
		case f.Name == "xlsx":
			flags[f.Name] = predict.Files("*.xlsx")
		case f.Name == "o", f.Name == "json":
			flags[f.Name] = predict.Files("*")
		default:
			flags[f.Name] = predict.Nothing
		}
	})
	return flags
}
