package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var sugar *zap.SugaredLogger

// Init builds the process logger. Development gets console output at debug
// level; anything else gets JSON at info level.
func Init(environment string) {
	var cfg zap.Config
	if environment == "development" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		// no logger yet, nothing better to do
		os.Exit(1)
	}
	sugar = l.Sugar()
}

func get() *zap.SugaredLogger {
	if sugar == nil {
		Init("development")
	}
	return sugar
}

func Debug(msg string, keysAndValues ...any) { get().Debugw(msg, keysAndValues...) }
func Info(msg string, keysAndValues ...any)  { get().Infow(msg, keysAndValues...) }
func Warn(msg string, keysAndValues ...any)  { get().Warnw(msg, keysAndValues...) }
func Error(msg string, keysAndValues ...any) { get().Errorw(msg, keysAndValues...) }
func Fatal(msg string, keysAndValues ...any) { get().Fatalw(msg, keysAndValues...) }

// Sync flushes buffered entries; call on shutdown.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
