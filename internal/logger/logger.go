package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the run logger: a JSON core bound to stdout plus, when filePath
// is non-empty, a rotating file core. The returned closer must be closed
// before process exit so buffered file output is flushed.
func New(level zapcore.Level, filePath string) (*zap.Logger, io.Closer) {
	cores := []zapcore.Core{
		zapcore.NewCore(defaultEncoder(), zapcore.Lock(zapcore.AddSync(os.Stdout)), level),
	}

	var closer io.Closer = io.NopCloser(nil)
	if filePath != "" {
		rotator := &lumberjack.Logger{
			Filename:  filePath,
			MaxSize:   100, // MB
			LocalTime: true,
			Compress:  true,
		}
		cores = append(cores, zapcore.NewCore(defaultEncoder(), zapcore.AddSync(rotator), level))
		closer = rotator
	}

	logger := zap.New(zapcore.NewTee(cores...), defaultOptions()...)
	return logger, closer
}

func defaultEncoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewJSONEncoder(cfg)
}

func defaultOptions() []zap.Option {
	var stackTraceLevel zap.LevelEnablerFunc = func(level zapcore.Level) bool {
		return level >= zapcore.DPanicLevel
	}
	return []zap.Option{
		zap.AddCaller(),
		zap.AddStacktrace(stackTraceLevel),
	}
}
