package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// LogPrefix is the fixed file-name prefix for this tool's log files.
const LogPrefix = "qbackend"

// Logger writes structured log lines to a PID-stamped file under the
// system temp directory. One file per process; stale files from dead
// processes are reaped by CleanupStaleLogs.
type Logger struct {
	file *os.File
	zl   zerolog.Logger
	path string
}

func NewLogger() (*Logger, error) {
	path := filepath.Join(os.TempDir(), fmt.Sprintf("%s-%d.log", LogPrefix, os.Getpid()))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) // #nosec G302 -- log readable by owner only
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	zl := zerolog.New(file).With().Timestamp().Int("pid", os.Getpid()).Logger()
	return &Logger{file: file, zl: zl, path: path}, nil
}

// Path returns the log file location.
func (l *Logger) Path() string { return l.path }

func (l *Logger) Debug(msg string) { l.zl.Debug().Msg(msg) }
func (l *Logger) Info(msg string)  { l.zl.Info().Msg(msg) }
func (l *Logger) Warn(msg string)  { l.zl.Warn().Msg(msg) }
func (l *Logger) Error(msg string) { l.zl.Error().Msg(msg) }

// Flush forces buffered lines to disk.
func (l *Logger) Flush() {
	_ = l.file.Sync()
}

func (l *Logger) Close() error {
	_ = l.file.Sync()
	return l.file.Close()
}
