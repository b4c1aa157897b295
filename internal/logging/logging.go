// Package logging builds the zap logger used across glcore.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cleared-dev/glcore/internal/config"
	"github.com/cleared-dev/glcore/internal/errcode"
)

// New builds a logger from the logging section of the configuration.
// Development mode logs human-readable lines to stderr; otherwise JSON.
func New(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}

	log, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return log.Named("glcore"), nil
}

// ParseLevel parses a level name; empty means info.
func ParseLevel(s string) (zapcore.Level, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	level, err := zapcore.ParseLevel(strings.ToLower(s))
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// CodeLevel is the level a rejection with code c is logged at: data-integrity
// violations warn, runtime failures are errors, everything else is info.
func CodeLevel(c errcode.Code) zapcore.Level {
	switch c.Category() {
	case errcode.CategoryDataIntegrity:
		return zapcore.WarnLevel
	case errcode.CategoryRuntime:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
