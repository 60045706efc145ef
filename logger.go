package sgtree

// Logger receives the tree's maintenance events. Rebuilds and explicit
// balancing, split and merge are logged at Info with the sizes involved;
// failed dispatches and history replays that find a diverged tree are logged
// at Warn. Arguments are alternating key-value pairs, as with slog, so a
// *slog.Logger can be passed as is:
//
//	tree, err := sgtree.New[int, string](sgtree.WithLogger(slog.Default()))
//
// Package logger adapts zap and logrus.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
}

// DiscardLogger is the default logger that compiles to a no-op
type DiscardLogger struct{}

func (d DiscardLogger) Error(string, ...any) {}

func (d DiscardLogger) Warn(string, ...any) {}

func (d DiscardLogger) Info(string, ...any) {}
