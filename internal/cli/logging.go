package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pmtools/vcsbridge/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFileEnv overrides the log file location.
const LogFileEnv = "VCSCTL_LOG_FILE"

func logFilePath() string {
	if path := os.Getenv(LogFileEnv); path != "" {
		return path
	}
	return filepath.Join(config.Home(), "logs", "vcsctl.log")
}

// newFileLogger writes JSON logs to a rotating file so that command output
// stays clean. The returned function flushes the logger.
func newFileLogger(path string, debug bool) (*zap.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	sink := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		MaxAge:     30, // days
	}

	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(sink),
		level,
	)

	logger := zap.New(core, zap.AddCaller()).Named("vcsctl")

	return logger, func() {
		_ = logger.Sync()
		_ = sink.Close()
	}, nil
}
