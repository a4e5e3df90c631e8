package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TimeLayout is the timestamp layout of every log line.
const TimeLayout = "2006/01/02 15:04:05"

// DebugEnabled returns true if debug mode is enabled via TL_DEBUG environment variable
func DebugEnabled() bool {
	return os.Getenv("TL_DEBUG") != ""
}

// Options controls logger construction.
type Options struct {
	// Verbose switches to the human readable development encoder at info level.
	Verbose bool
	// Output receives log lines. Defaults to stderr so command output stays clean.
	Output io.Writer
}

// New builds a zap logger. TL_DEBUG forces debug level with the development encoder.
func New(opts Options) *zap.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var (
		encoderConfig zapcore.EncoderConfig
		encoder       zapcore.Encoder
		level         zapcore.Level
	)

	switch {
	case DebugEnabled():
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		level = zapcore.DebugLevel
	case opts.Verbose:
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		level = zapcore.InfoLevel
	default:
		encoderConfig = zap.NewProductionEncoderConfig()
		level = zapcore.WarnLevel
	}
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(TimeLayout)

	if level <= zapcore.InfoLevel {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(out), zap.NewAtomicLevelAt(level))
	return zap.New(core)
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
