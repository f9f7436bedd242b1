package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nerrad567/asset-desk/internal/infrastructure/config"
)

// Logger wraps a zap SugaredLogger with asset-desk default fields.
//
// Its Debug/Info/Warn/Error methods take a message followed by key-value
// pairs, which is the shape the domain packages' Logger interfaces expect.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Logger struct {
	sugar *zap.SugaredLogger
}

// New creates a new Logger with the specified configuration.
//
// It configures:
//   - Encoding (JSON for machines, console text for people)
//   - Log level filtering
//   - Default fields (service name, version)
//   - Output destination (stderr unless stdout is requested)
func New(cfg config.LoggingConfig, version string) *Logger {
	sink := zapcore.Lock(os.Stderr)
	if strings.ToLower(cfg.Output) == "stdout" {
		sink = zapcore.Lock(os.Stdout)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch strings.ToLower(cfg.Format) {
	case "text", "console":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	default:
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(encoder, sink, parseLevel(cfg.Level))
	return NewWithCore(core, version)
}

// NewWithCore builds a Logger on an existing zap core. Tests pass an
// observer core here to assert on emitted entries.
func NewWithCore(core zapcore.Core, version string) *Logger {
	base := zap.New(core).With(
		zap.String("service", "assetdesk"),
		zap.String("version", version),
	)
	return &Logger{sugar: base.Sugar()}
}

// parseLevel converts a string log level to a zap level.
//
// Supported levels: debug, info, warn, error
// Defaults to info if unrecognised.
func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Debug logs at debug level with key-value pairs.
func (l *Logger) Debug(msg string, args ...any) { l.sugar.Debugw(msg, args...) }

// Info logs at info level with key-value pairs.
func (l *Logger) Info(msg string, args ...any) { l.sugar.Infow(msg, args...) }

// Warn logs at warn level with key-value pairs.
func (l *Logger) Warn(msg string, args ...any) { l.sugar.Warnw(msg, args...) }

// Error logs at error level with key-value pairs.
func (l *Logger) Error(msg string, args ...any) { l.sugar.Errorw(msg, args...) }

// With returns a new Logger with additional default fields.
//
// Example:
//
//	cfgLogger := logger.With("component", "configuration")
//	cfgLogger.Info("device assigned") // Includes component=configuration
func (l *Logger) With(args ...any) *Logger {
	return &Logger{sugar: l.sugar.With(args...)}
}

// Sync flushes buffered entries. Call it before the process exits.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

// Default creates a default logger for use before configuration is loaded.
//
// It writes console text to stderr at info level so it never mixes with
// command output on stdout.
func Default() *Logger {
	return New(config.LoggingConfig{
		Level:  "info",
		Format: "text",
		Output: "stderr",
	}, "dev")
}
