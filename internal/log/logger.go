package log

import (
	"os"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Field = zap.Field

//Logger is the logging facade used by every stage of the synchronizer.
//It is satisfied by *zap.Logger and by the generated mock in tests.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Sync() error
}

//New builds a zap logger writing to stderr.
//With logToStd on a terminal the output is a colored console format, otherwise JSON lines.
func New(lvl Level, logToStd bool) (Logger, error) {
	encoding := "json"
	encodeLevel := zapcore.CapitalLevelEncoder
	if logToStd {
		encoding = "console"
		if isatty.IsTerminal(os.Stderr.Fd()) {
			encodeLevel = zapcore.CapitalColorLevelEncoder
		}
	}

	return zap.Config{
		Level:    zap.NewAtomicLevelAt(lvl.zapLevel()),
		Encoding: encoding,
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey:     "msg",
			LevelKey:       "lvl",
			TimeKey:        "ts",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			StacktraceKey:  "stack",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    encodeLevel,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}.Build()
}

//Nop returns a logger that discards everything.
func Nop() Logger {
	return zap.NewNop()
}
