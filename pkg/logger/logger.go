package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerInstance menyimpan logger yang sudah diinisialisasi.
var (
	ErrorLogger    = zap.NewNop()
	AuditLogger    = zap.NewNop()
	RequestLogger  = zap.NewNop()
	SecurityLogger = zap.NewNop()
	SystemLogger   = zap.NewNop()
)

// Options controls where the loggers write.
type Options struct {
	// Dir receives one file per logger. Empty means stdout.
	Dir   string
	Debug bool
}

func newLogger(opts Options, name string, level zapcore.Level) (*zap.Logger, error) {
	ws := zapcore.AddSync(os.Stdout)
	if opts.Dir != "" {
		file, err := os.OpenFile(filepath.Join(opts.Dir, name+".log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}
		ws = zapcore.AddSync(file)
	}
	if opts.Debug && level > zapcore.DebugLevel && level < zapcore.ErrorLevel {
		level = zapcore.DebugLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		ws,
		level,
	)
	return zap.New(core).Named(name), nil
}

// InitLoggers builds every named logger. It must run before the server starts.
func InitLoggers(opts Options) error {
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
	}

	targets := []struct {
		name  string
		level zapcore.Level
		dst   **zap.Logger
	}{
		{"errors", zapcore.ErrorLevel, &ErrorLogger},
		{"audit", zapcore.InfoLevel, &AuditLogger},
		{"request", zapcore.InfoLevel, &RequestLogger},
		{"security", zapcore.WarnLevel, &SecurityLogger},
		{"system", zapcore.InfoLevel, &SystemLogger},
	}
	for _, t := range targets {
		l, err := newLogger(opts, t.name, t.level)
		if err != nil {
			return fmt.Errorf("cannot create %s logger: %w", t.name, err)
		}
		*t.dst = l
	}
	return nil
}

// InitNop swaps every logger for a no-op one.
func InitNop() {
	ErrorLogger = zap.NewNop()
	AuditLogger = zap.NewNop()
	RequestLogger = zap.NewNop()
	SecurityLogger = zap.NewNop()
	SystemLogger = zap.NewNop()
}

func SyncLoggers() {
	_ = ErrorLogger.Sync()
	_ = AuditLogger.Sync()
	_ = RequestLogger.Sync()
	_ = SecurityLogger.Sync()
	_ = SystemLogger.Sync()
}
