package jsonlog

import (
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level int8

const (
	LevelInfo Level = iota
	LevelError
	LevelFatal
	LevelOff
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "INFO"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return ""
	}
}

func (l Level) zap() zapcore.Level {
	switch l {
	case LevelInfo:
		return zapcore.InfoLevel
	case LevelError:
		return zapcore.ErrorLevel
	case LevelFatal:
		return zapcore.FatalLevel
	default:
		return zapcore.FatalLevel + 1
	}
}

// ParseLevel maps a level name to a Level, defaulting to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	case "off":
		return LevelOff
	default:
		return LevelInfo
	}
}

// Logger writes one JSON object per entry to the underlying writer. Error and
// fatal entries carry a stack trace.
type Logger struct {
	zap *zap.Logger
}

func New(out io.Writer, minLevel Level) *Logger {
	encoderCfg := zapcore.EncoderConfig{
		MessageKey: "message",
		TimeKey:    "time",
		LevelKey:   "level",
		EncodeTime: zapcore.RFC3339TimeEncoder,
		EncodeLevel: func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(strings.ToUpper(level.String()))
		},
		StacktraceKey: "trace",
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(zapcore.AddSync(out)),
		zap.NewAtomicLevelAt(minLevel.zap()),
	)

	return &Logger{zap: zap.New(core, zap.AddStacktrace(zapcore.ErrorLevel))}
}

func (l *Logger) PrintInfo(message string, properties map[string]string) {
	l.zap.Info(message, fields(properties)...)
}

func (l *Logger) PrintError(err error, properties map[string]string) {
	l.zap.Error(err.Error(), fields(properties)...)
}

// PrintFatal logs the error and terminates the process.
func (l *Logger) PrintFatal(err error, properties map[string]string) {
	l.zap.Fatal(err.Error(), fields(properties)...)
}

// Write lets the logger back an http.Server ErrorLog. Every write is logged at
// the error level.
func (l *Logger) Write(message []byte) (n int, err error) {
	l.zap.Error(strings.TrimSpace(string(message)))
	return len(message), nil
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.zap.Sync()
}

func fields(properties map[string]string) []zap.Field {
	if len(properties) == 0 {
		return nil
	}

	return []zap.Field{zap.Any("properties", properties)}
}
