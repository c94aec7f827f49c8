package logger

import (
	"strings"

	"github.com/campushub/server/internal/shared/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewZap creates the *zap.Logger injected into domain services.
func NewZap(cfg *config.LogConfig) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()

	if cfg != nil {
		level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
		if err == nil {
			zapCfg.Level = zap.NewAtomicLevelAt(level)
		}
		if strings.EqualFold(cfg.Format, "text") {
			zapCfg.Encoding = "console"
		}
	}

	return zapCfg.Build()
}
