package logging

import (
	"context"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ZapLogger struct {
	l *zap.SugaredLogger
}

// NewZapLogger builds a JSON logger. The encoder layout follows the one used
// by our services so client and server logs can be shipped together.
func NewZapLogger(w io.Writer, level string) *ZapLogger {
	lvl := zapcore.InfoLevel
	if err := lvl.Set(strings.ToLower(level)); err != nil {
		lvl = zapcore.InfoLevel
	}

	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		MessageKey: "message",
		LevelKey:   "level",
		TimeKey:    "ts",
		EncodeLevel: func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(l.String())
		},
		EncodeTime: zapcore.ISO8601TimeEncoder,
	})

	core := zapcore.NewCore(enc, zapcore.AddSync(w), zap.NewAtomicLevelAt(lvl))
	return &ZapLogger{l: zap.New(core).Sugar()}
}

func (z *ZapLogger) Debug(_ context.Context, msg string, args ...any) {
	z.l.Debugw(msg, args...)
}

func (z *ZapLogger) Info(_ context.Context, msg string, args ...any) {
	z.l.Infow(msg, args...)
}

func (z *ZapLogger) Warn(_ context.Context, msg string, args ...any) {
	z.l.Warnw(msg, args...)
}

func (z *ZapLogger) Error(_ context.Context, msg string, args ...any) {
	z.l.Errorw(msg, args...)
}

func (z *ZapLogger) With(args ...any) Logger {
	return &ZapLogger{l: z.l.With(args...)}
}

// Sync flushes buffered entries.
func (z *ZapLogger) Sync() error {
	return z.l.Sync()
}
