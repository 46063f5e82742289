package logger

import (
	"go.uber.org/zap"
)

// New builds the application logger. outputPath redirects all output,
// which the live terminal UI needs to keep the screen clean.
func New(env, outputPath string) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if env == "production" {
		cfg = zap.NewProductionConfig()
	}

	if outputPath != "" {
		cfg.OutputPaths = []string{outputPath}
		cfg.ErrorOutputPaths = []string{outputPath}
	}
	return cfg.Build()
}
