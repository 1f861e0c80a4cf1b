// Package log builds the single *zap.SugaredLogger shared across
// subsystems, switching encoders the way the CLI switches report mode:
// console in rich/TTY mode, JSON under --porcelain.
package log

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a logger. porcelain selects JSON encoding so log lines stay
// machine-parseable alongside porcelain report records; verbose lowers the
// level to Debug.
func New(porcelain, verbose bool) *zap.SugaredLogger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if porcelain {
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stderr), level)
	return zap.New(core).Sugar()
}

// Nop returns a logger that discards everything, used in tests.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
