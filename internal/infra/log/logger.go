package log

// Structured logging for the chart pipeline
// Stdout carries the JSON document, so every sink here is stderr, a file or nothing
// File sink uses a compact "time level msg {fields}" line and is truncated past MaxLogFileSize

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// Logger is the process-wide logger. It discards everything until Init is called.
var Logger = zap.NewNop()

var mu sync.Mutex

const (
	OutputNone   = ""
	OutputStderr = "stderr"
)

// Init replaces Logger according to level ("debug", "info", "warn", "error") and
// output ("" discards, "stderr", anything else is a file path).
func Init(level, output string) error {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	logger, err := build(lvl, strings.TrimSpace(output))
	if err != nil {
		return err
	}

	mu.Lock()
	Logger = logger
	mu.Unlock()
	return nil
}

func build(lvl zapcore.Level, output string) (*zap.Logger, error) {
	switch output {
	case OutputNone:
		return zap.NewNop(), nil
	case OutputStderr:
		consoleConfig := zap.NewDevelopmentConfig()
		consoleConfig.EncoderConfig.EncodeLevel = customLevelEncoder
		consoleConfig.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		consoleConfig.EncoderConfig.EncodeCaller = nil
		consoleConfig.Development = false
		consoleConfig.DisableStacktrace = true
		consoleConfig.OutputPaths = []string{"stderr"}
		consoleConfig.ErrorOutputPaths = []string{"stderr"}
		consoleConfig.Level = zap.NewAtomicLevelAt(lvl)

		logger, err := consoleConfig.Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build console logger: %w", err)
		}
		return logger, nil
	default:
		if dir := filepath.Dir(output); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		writer, err := newLogFileWriter(output)
		if err != nil {
			return nil, err
		}
		fileConfig := zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "level",
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			FunctionKey:    zapcore.OmitKey,
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05"),
			EncodeDuration: zapcore.SecondsDurationEncoder,
		}
		core := zapcore.NewCore(
			&customFileEncoder{Encoder: zapcore.NewConsoleEncoder(fileConfig)},
			writer,
			lvl,
		)
		return zap.New(core), nil
	}
}

// Sync flushes buffered entries. Errors from syncing stderr are expected on some platforms.
func Sync() {
	mu.Lock()
	defer mu.Unlock()
	_ = Logger.Sync()
}

func current() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	return Logger
}

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorWhite  = "\033[37m"
)

func customLevelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch level {
	case zapcore.DebugLevel:
		enc.AppendString(colorCyan + "DEBUG" + colorReset)
	case zapcore.InfoLevel:
		enc.AppendString(colorGreen + "INFO" + colorReset)
	case zapcore.WarnLevel:
		enc.AppendString(colorYellow + "WARN" + colorReset)
	case zapcore.ErrorLevel, zapcore.FatalLevel, zapcore.PanicLevel:
		enc.AppendString(colorRed + level.CapitalString() + colorReset)
	default:
		enc.AppendString(colorWhite + level.String() + colorReset)
	}
}

func LogDebug(message string, fields ...zap.Field) {
	current().Debug(message, fields...)
}

func LogInfo(message string, fields ...zap.Field) {
	current().Info(message, fields...)
}

// LogSuccess logs at info level with a check mark and the duration if one was attached
func LogSuccess(message string, fields ...zap.Field) {
	if durationMs := extractDuration(fields); durationMs > 0 {
		message = fmt.Sprintf("✓ %s (%dms)", message, durationMs)
	} else {
		message = "✓ " + message
	}
	current().Info(message, fields...)
}

func LogWarn(message string, fields ...zap.Field) {
	current().Warn(message, fields...)
}

func LogError(message string, fields ...zap.Field) {
	current().Error("✗ "+message, fields...)
}

// extractDuration duration_ms from zap fields
func extractDuration(fields []zap.Field) int64 {
	for _, field := range fields {
		if field.Key == "duration_ms" && field.Type == zapcore.Int64Type {
			return field.Integer
		}
	}
	return 0
}

const (
	// MaxLogFileSize - the file is truncated once it grows past 10MB
	MaxLogFileSize = 10 * 1024 * 1024
)

type truncatingLogWriter struct {
	file *os.File
	path string
	mu   sync.Mutex
}

func (w *truncatingLogWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	info, err := w.file.Stat()
	if err == nil && info.Size() > MaxLogFileSize {
		w.file.Close()
		w.file, err = os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return 0, fmt.Errorf("failed to truncate log file: %w", err)
		}
	}

	return w.file.Write(p)
}

func (w *truncatingLogWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Sync()
}

func newLogFileWriter(path string) (zapcore.WriteSyncer, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return &truncatingLogWriter{file: file, path: path}, nil
}

// customFileEncoder writes "time     LEVEL msg\t{json fields}"
type customFileEncoder struct {
	zapcore.Encoder
}

func (e *customFileEncoder) Clone() zapcore.Encoder {
	return &customFileEncoder{Encoder: e.Encoder.Clone()}
}

func (e *customFileEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	buf := buffer.NewPool().Get()

	buf.AppendString(entry.Time.Format("2006-01-02 15:04:05"))
	buf.AppendString("     ")
	buf.AppendString(entry.Level.CapitalString())
	buf.AppendString(" ")
	buf.AppendString(entry.Message)

	if len(fields) > 0 {
		// MapObjectEncoder resolves every field type, including errors and durations
		enc := zapcore.NewMapObjectEncoder()
		for _, field := range fields {
			field.AddTo(enc)
		}
		if jsonData, err := json.Marshal(enc.Fields); err == nil {
			buf.AppendString("\t")
			buf.AppendString(string(jsonData))
		}
	}

	buf.AppendString("\n")
	return buf, nil
}
