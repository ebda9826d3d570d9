package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds the process logger. Verbose mode uses the development config
// so debug output is readable on a terminal; otherwise logs are structured
// JSON at warn level to keep report output on stdout clean.
func New(verbose bool) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.Sugar(), nil
}
