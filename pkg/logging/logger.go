package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Logger is the structured logger; a no-op until InitLogging runs.
	Logger = zap.NewNop()
	sugar  = Logger.Sugar()
)

// InitLogging initializes logging. GIN_MODE=release selects the JSON
// production encoder, anything else the console development encoder.
func InitLogging() {
	var cfg zap.Config
	if os.Getenv("GIN_MODE") == "release" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		var level zapcore.Level
		if err := level.UnmarshalText([]byte(lvl)); err == nil {
			cfg.Level.SetLevel(level)
		}
	}

	l, err := cfg.Build()
	if err != nil {
		return
	}
	SetLogger(l)
}

// SetLogger swaps the underlying logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	Logger = l
	sugar = l.Sugar()
}

// Sync flushes buffered entries.
func Sync() {
	_ = Logger.Sync()
}

// Infof logs info level messages
func Infof(format string, v ...interface{}) {
	sugar.Infof(format, v...)
}

// Warnf logs warn level messages
func Warnf(format string, v ...interface{}) {
	sugar.Warnf(format, v...)
}

// Errorf logs error level messages
func Errorf(format string, v ...interface{}) {
	sugar.Errorf(format, v...)
}
