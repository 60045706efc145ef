// Package logger provides adapters for popular logger libraries to work with sgtree's Logger interface.
//
// The adapters allow you to use your existing logger with sgtree without writing boilerplate.
// Note that the standard library's slog.Logger already implements sgtree.Logger directly.
//
// Example with zap:
//
//	import (
//	    "github.com/alexhholmes/sgtree"
//	    "github.com/alexhholmes/sgtree/logger"
//	    "go.uber.org/zap"
//	)
//
//	func main() {
//	    zapLogger, _ := zap.NewProduction()
//
//	    tree, err := sgtree.New[int, string](
//	        sgtree.WithLogger(logger.NewZap(zapLogger)),
//	    )
//	    if err != nil {
//	        panic(err)
//	    }
//	    _ = tree.Insert(1, "one")
//	}
package logger
