package configslog

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log and SLog are process-wide loggers. They stay no-op until InitLogger runs,
// which keeps packages usable from tests without any setup.
var (
	Log  = zap.NewNop()
	SLog = Log.Sugar()
)

// InitLogger replaces Log and SLog. Production mode emits JSON, development a
// colored console encoder.
func InitLogger(level string, production bool) error {
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return err
	}

	var cfg zap.Config
	if production {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build(zap.AddCaller())
	if err != nil {
		return err
	}
	Log = logger
	SLog = logger.Sugar()
	zap.ReplaceGlobals(logger)
	return nil
}

// SyncLogger flushes buffered entries. Errors from syncing stderr are ignored.
func SyncLogger() {
	_ = Log.Sync()
}
