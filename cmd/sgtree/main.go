package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/alexhholmes/sgtree"
)

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(-1)
	}
}

var treeFlags = []cli.Flag{
	&cli.Float64Flag{
		Name:    "alpha",
		Usage:   "balance factor in [0.5, 1)",
		Value:   sgtree.DefaultAlpha,
		EnvVars: []string{"SGTREE_ALPHA"},
	},
	&cli.IntFlag{
		Name:    "cache",
		Usage:   "search cache entries (0 disables)",
		EnvVars: []string{"SGTREE_CACHE"},
	},
	&cli.IntFlag{
		Name:    "history",
		Usage:   "maximum undo depth (0 is unlimited)",
		EnvVars: []string{"SGTREE_HISTORY"},
	},
	&cli.StringFlag{
		Name:    "logger",
		Usage:   "log backend: zap, logrus or none",
		Value:   "zap",
		EnvVars: []string{"SGTREE_LOGGER"},
	},
	&cli.BoolFlag{
		Name:  "verbose",
		Usage: "log rebuild events",
	},
}

func run(args []string) error {
	app := cli.App{
		Name:  "sgtree",
		Usage: "interactive scapegoat tree",
		Flags: treeFlags,
		// Without a subcommand, read commands from stdin
		Action: runRepl,
	}
	app.Commands = []*cli.Command{
		cmdRepl,
		cmdRun,
		cmdOps,
	}
	return app.Run(args)
}
