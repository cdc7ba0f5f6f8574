package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"reviewhub/internal/config"
)

// New builds the application logger from config.
// Text format gives the development console encoder, json the production one.
func New(cfg *config.Config) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.LogFormat == "text" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	return zc.Build()
}
