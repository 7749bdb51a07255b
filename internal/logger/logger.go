// Package logger configures the application-wide zap logger.
package logger

import (
	"strings"

	"go.uber.org/zap"
)

// New builds a sugared logger for the given mode. "prod" selects the JSON
// production encoder; anything else gets the human-readable dev config.
func New(mode string) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	zapLogger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return zapLogger.Sugar(), nil
}
