package logging

import (
	"go.uber.org/zap"
)

var logger = zap.Must(zap.NewProduction())

// Init replaces the default production logger. Pass development=true to
// get console-friendly output during local runs.
func Init(development bool) {
	if development {
		logger = zap.Must(zap.NewDevelopment())
		return
	}
	logger = zap.Must(zap.NewProduction())
}

func Info(msg string, fields ...zap.Field) {
	logger.Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	logger.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	logger.Error(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	logger.Fatal(msg, fields...)
}

func Sync() {
	_ = logger.Sync()
}
