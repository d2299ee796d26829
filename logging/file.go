package logging

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewFileAppender returns a size-rotated, compressed log file writer.
func NewFileAppender(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    64,
		MaxBackups: 3,
		Compress:   true,
	}
}

// WithFile returns a logger that logs everything logger does and also writes JSON lines to a
// rotated file at path. It follows logger's level. Close the returned closer when done.
func WithFile(logger Logger, path string) (Logger, io.Closer) {
	level := zap.NewAtomicLevelAt(logger.GetLevel().AsZap())
	name := ""
	if imp, ok := logger.(*impl); ok {
		level = imp.level
		name = imp.name
	}

	encoderCfg := NewLoggerConfig().EncoderConfig
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	appender := NewFileAppender(path)
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(appender), level)

	tee := logger.AsZap().Desugar().WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, fileCore)
	}))
	return &impl{SugaredLogger: tee.Sugar(), name: name, level: level}, appender
}
