// Package logger configures the process-wide zap logger.
package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// Init builds a production (JSON) logger for production-like environments and a
// development (console) logger otherwise, then installs it as zap.L().
func Init(env string) error {
	var (
		l   *zap.Logger
		err error
	)

	switch env {
	case "production", "prod":
		l, err = zap.NewProduction()
	default:
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return fmt.Errorf("zap.New -> %w", err)
	}

	zap.ReplaceGlobals(l)
	return nil
}

// Sync flushes buffered entries; call it on shutdown.
func Sync() {
	_ = zap.L().Sync()
}
