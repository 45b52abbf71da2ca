package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rshade/feedlist/internal/logging"
)

const logDirName = "logs"

// ErrInvalidLogFormat is returned for formats other than json, console or text.
var ErrInvalidLogFormat = errors.New("log format must be 'json', 'console' or 'text'")

// LoggingConfig configures the application logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// File, when set, sends logs to this path instead of stderr.
	File   string `yaml:"file,omitempty"`
	Caller bool   `yaml:"caller,omitempty"`
}

// DefaultLoggingConfig logs warnings and above to stderr in console format.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:  zerolog.WarnLevel.String(),
		Format: logging.FormatConsole,
	}
}

// Validate checks the level and format names.
func (lc *LoggingConfig) Validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(lc.Level)); err != nil {
		return fmt.Errorf("level %q: %w", lc.Level, err)
	}
	switch lc.Format {
	case "", logging.FormatJSON, logging.FormatConsole, logging.FormatText:
		return nil
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidLogFormat, lc.Format)
	}
}

// ToLoggingConfig converts LoggingConfig to logging.Config.
//
// If File is set, Output becomes "file"; otherwise it is "stderr".
func (lc *LoggingConfig) ToLoggingConfig() logging.Config {
	output := logging.OutputStderr
	if lc.File != "" {
		output = logging.OutputFile
	}

	return logging.Config{
		Level:  lc.Level,
		Format: lc.Format,
		Output: output,
		File:   lc.File,
		Caller: lc.Caller,
	}
}

// EnsureLogDir creates the log directory under the config directory and returns it.
func EnsureLogDir() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	logDir := filepath.Join(dir, logDirName)
	if err = os.MkdirAll(logDir, configDirMode); err != nil {
		return "", fmt.Errorf("creating log directory: %w", err)
	}
	return logDir, nil
}
