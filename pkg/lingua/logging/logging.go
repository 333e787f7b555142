package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Format selects the log encoding
type Format string

const (
	JSONFormat    Format = "json"
	ConsoleFormat Format = "console"
)

// Options configures New. Empty fields take the defaults: info level,
// console format, stderr output.
type Options struct {
	Level  string
	Format Format
	// OutputPaths are zap sink URLs or file paths.
	OutputPaths []string
}

// New builds a logger. Logs go to stderr by default so that annotation
// output on stdout stays machine-readable.
func New(opts Options) (*zap.Logger, error) {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if opts.Level != "" {
		lvl, err := zapcore.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, fmt.Errorf("bad log level: %s", opts.Level)
		}
		level.SetLevel(lvl)
	}

	format := opts.Format
	switch format {
	case "":
		format = ConsoleFormat
	case JSONFormat, ConsoleFormat:
	default:
		return nil, fmt.Errorf("bad log format: %s", opts.Format)
	}

	outputs := opts.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}

	cfg := zap.Config{
		Level:            level,
		Development:      false,
		Encoding:         string(format),
		OutputPaths:      outputs,
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey:     "msg",
			LevelKey:       "level",
			TimeKey:        "ts",
			NameKey:        "logger",
			StacktraceKey:  "stack",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
	}
	return cfg.Build()
}

// Must is New for program startup, where a bad configuration is fatal.
func Must(opts Options) *zap.Logger {
	l, err := New(opts)
	if err != nil {
		panic(err)
	}
	return l
}
