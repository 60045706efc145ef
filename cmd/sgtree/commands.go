package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/alexhholmes/sgtree"
	"github.com/alexhholmes/sgtree/logger"
)

var cmdRepl = &cli.Command{
	Name:   "repl",
	Usage:  "read commands from stdin until EXIT",
	Flags:  treeFlags,
	Action: runRepl,
}

var cmdRun = &cli.Command{
	Name:      "run",
	Usage:     "execute commands from a script file",
	ArgsUsage: "<file>",
	Flags:     treeFlags,
	Action: func(cctx *cli.Context) error {
		path := cctx.Args().First()
		if path == "" {
			return fmt.Errorf("need a script file")
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		sess, cleanup, err := sessionFromFlags(cctx)
		if err != nil {
			return err
		}
		defer cleanup()
		return sess.Run(f, false)
	},
}

var cmdOps = &cli.Command{
	Name:  "ops",
	Usage: "list supported commands",
	Action: func(cctx *cli.Context) error {
		fmt.Fprint(cctx.App.Writer, usageText)
		return nil
	},
}

func runRepl(cctx *cli.Context) error {
	sess, cleanup, err := sessionFromFlags(cctx)
	if err != nil {
		return err
	}
	defer cleanup()
	return sess.Run(os.Stdin, true)
}

func sessionFromFlags(cctx *cli.Context) (*Session, func(), error) {
	log, cleanup, err := configureLogger(cctx.String("logger"), cctx.Bool("verbose"))
	if err != nil {
		return nil, nil, err
	}

	opts := []sgtree.Option{
		sgtree.WithAlpha(cctx.Float64("alpha")),
		sgtree.WithSearchCache(cctx.Int("cache")),
		sgtree.WithHistoryLimit(cctx.Int("history")),
		sgtree.WithLogger(log),
	}

	sess, err := NewSession(cctx.App.Writer, opts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return sess, cleanup, nil
}

func configureLogger(backend string, verbose bool) (sgtree.Logger, func(), error) {
	switch strings.ToLower(backend) {
	case "zap":
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		}
		zl, err := cfg.Build()
		if err != nil {
			return nil, nil, err
		}
		return logger.NewZap(zl), func() { _ = zl.Sync() }, nil
	case "logrus":
		l := logrus.New()
		l.SetOutput(os.Stderr)
		l.SetLevel(logrus.WarnLevel)
		if verbose {
			l.SetLevel(logrus.InfoLevel)
		}
		return logger.NewLogrus(l), func() {}, nil
	case "none", "":
		return sgtree.DiscardLogger{}, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown logger %q", backend)
	}
}
