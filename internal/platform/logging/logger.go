package logging

import (
	"context"
	"os"
	"sync/atomic"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level = zapcore.Level

const (
	LevelDebug = zapcore.DebugLevel
	LevelInfo  = zapcore.InfoLevel
	LevelWarn  = zapcore.WarnLevel
	LevelError = zapcore.ErrorLevel
)

// Logger wraps zap behind alternating key/value args. The *Context
// variants attach the active trace and span ids so log lines can be
// joined with traces.
type Logger struct {
	zap    *zap.Logger
	synced atomic.Bool
}

var processLogger atomic.Pointer[Logger]

func init() {
	processLogger.Store(NewNop())
}

// NewJSON builds a production logger writing one JSON object per line
// to stdout.
func NewJSON(level Level) *Logger {
	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	})

	z := zap.New(
		zapcore.NewCore(enc, zapcore.Lock(os.Stdout), level),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	return &Logger{zap: z}
}

// NewNop discards everything; used in tests and as the pre-bootstrap default.
func NewNop() *Logger {
	return &Logger{zap: zap.NewNop()}
}

func Default() *Logger {
	if l := processLogger.Load(); l != nil {
		return l
	}
	return NewNop()
}

func SetDefault(l *Logger) {
	if l == nil {
		l = NewNop()
	}
	processLogger.Store(l)
}

// Sync flushes buffered entries. Safe to call more than once.
func (l *Logger) Sync() error {
	if l == nil || l.zap == nil {
		return nil
	}
	if l.synced.CompareAndSwap(false, true) {
		return l.zap.Sync()
	}
	return nil
}

func (l *Logger) Debug(msg string, args ...any) { l.emit(LevelDebug, msg, kvFields(args)) }
func (l *Logger) Info(msg string, args ...any)  { l.emit(LevelInfo, msg, kvFields(args)) }
func (l *Logger) Warn(msg string, args ...any)  { l.emit(LevelWarn, msg, kvFields(args)) }
func (l *Logger) Error(msg string, args ...any) { l.emit(LevelError, msg, kvFields(args)) }

func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.emit(LevelDebug, msg, withTrace(ctx, kvFields(args)))
}

func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.emit(LevelInfo, msg, withTrace(ctx, kvFields(args)))
}

func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.emit(LevelWarn, msg, withTrace(ctx, kvFields(args)))
}

func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.emit(LevelError, msg, withTrace(ctx, kvFields(args)))
}

func (l *Logger) emit(level Level, msg string, fields []zap.Field) {
	if l == nil || l.zap == nil {
		l = Default()
	}
	if ce := l.zap.Check(level, msg); ce != nil {
		ce.Write(fields...)
	}
}

func withTrace(ctx context.Context, fields []zap.Field) []zap.Field {
	if ctx == nil {
		return fields
	}
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return fields
	}
	return append(fields,
		zap.String("trace_id", spanCtx.TraceID().String()),
		zap.String("span_id", spanCtx.SpanID().String()),
	)
}

// kvFields folds alternating key/value args into zap fields. A trailing
// key without a value logs as nil; non-string keys log under "arg".
func kvFields(args []any) []zap.Field {
	if len(args) == 0 {
		return nil
	}

	fields := make([]zap.Field, 0, (len(args)+1)/2)
	for len(args) > 0 {
		key, ok := args[0].(string)
		if !ok || key == "" {
			key = "arg"
		}
		if len(args) == 1 {
			fields = append(fields, zap.Any(key, nil))
			break
		}

		switch value := args[1].(type) {
		case error:
			fields = append(fields, zap.NamedError(key, value))
		default:
			fields = append(fields, zap.Any(key, value))
		}
		args = args[2:]
	}
	return fields
}
