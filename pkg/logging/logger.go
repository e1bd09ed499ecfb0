package logging

import (
	"go.uber.org/zap"
)

// New builds the process-wide logger. Local and dev environments get the
// human-readable development encoder at debug level; everything else gets
// production JSON output.
func New(env string) (*zap.Logger, error) {
	switch env {
	case "local", "dev", "test":
		cfg := zap.NewDevelopmentConfig()
		return cfg.Build()
	default:
		cfg := zap.NewProductionConfig()
		return cfg.Build()
	}
}
