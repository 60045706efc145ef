package logger

import (
	"go.uber.org/zap"

	"github.com/alexhholmes/sgtree"
)

// Zap wraps a zap.Logger to implement sgtree.Logger.
type Zap struct {
	logger *zap.SugaredLogger
}

// NewZap creates a sgtree.Logger from a zap.Logger. Event arguments become
// sugared fields, so a rebuild logs "size", "depth" and "count" as
// structured context.
func NewZap(logger *zap.Logger) sgtree.Logger {
	return &Zap{logger: logger.Sugar()}
}

// Error logs an error message with key-value pairs.
func (z *Zap) Error(msg string, args ...any) {
	z.logger.Errorw(msg, args...)
}

// Warn logs a warning message with key-value pairs.
func (z *Zap) Warn(msg string, args ...any) {
	z.logger.Warnw(msg, args...)
}

// Info logs an info message with key-value pairs.
func (z *Zap) Info(msg string, args ...any) {
	z.logger.Infow(msg, args...)
}
