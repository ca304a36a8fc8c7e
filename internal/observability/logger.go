package observability

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LoggerConfig selects the verbosity and optional rotating file sink of the root logger.
type LoggerConfig struct {
	Level   string
	File    string
	AppName string
	AppEnv  string
}

// NewLogger builds the process-wide zerolog logger. Output goes to stdout and,
// when File is set, to a size-rotated file.
func NewLogger(cfg LoggerConfig, stdout io.Writer) zerolog.Logger {
	if stdout == nil {
		stdout = os.Stdout
	}

	writers := []io.Writer{stdout}
	if strings.TrimSpace(cfg.File) != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		})
	}

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()

	if cfg.AppName != "" {
		logger = logger.With().Str("app", cfg.AppName).Logger()
	}
	if cfg.AppEnv != "" {
		logger = logger.With().Str("env", cfg.AppEnv).Logger()
	}

	return logger
}
