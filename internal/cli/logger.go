package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/orchard9/sdlc/internal/constants"
	"github.com/orchard9/sdlc/internal/logging"
)

// logFileWriter holds the rotated log file writer for shutdown cleanup.
var logFileWriter io.WriteCloser //nolint:gochecknoglobals // Needed for cleanup

// InitLogger creates the CLI logger.
//
// Levels: verbose=Debug, quiet=Warn, default Info. Console output uses
// zerolog's console writer on a TTY without NO_COLOR and JSON
// otherwise. When the working directory is an initialized project, log
// entries are additionally written to .sdlc/logs/sdlc.log with rotation
// and oversized gate output clipped.
func InitLogger(verbose, quiet bool) zerolog.Logger {
	console := selectOutput()
	writer := console

	if fileWriter, err := createLogFileWriter(); err == nil {
		logFileWriter = fileWriter
		writer = zerolog.MultiLevelWriter(console, fileWriter)
	}

	logger := zerolog.New(writer).Level(selectLevel(verbose, quiet)).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

// CloseLogFile closes the rotated log file writer if one was opened.
func CloseLogFile() {
	if logFileWriter != nil {
		_ = logFileWriter.Close()
		logFileWriter = nil
	}
}

// selectLevel determines the log level from the verbosity flags.
func selectLevel(verbose, quiet bool) zerolog.Level {
	switch {
	case verbose:
		return zerolog.DebugLevel
	case quiet:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

// selectOutput picks the console writer for a TTY and plain JSON on
// stderr otherwise.
func selectOutput() io.Writer {
	if term.IsTerminal(int(os.Stderr.Fd())) && os.Getenv("NO_COLOR") == "" {
		return zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
		}
	}
	return os.Stderr
}

// truncatingWriteCloser pairs the truncating writer with the rotator's
// closer.
type truncatingWriteCloser struct {
	writer *logging.TruncatingWriter
	closer io.Closer
}

// Write implements io.Writer.
func (t *truncatingWriteCloser) Write(p []byte) (int, error) {
	return t.writer.Write(p)
}

// Close implements io.Closer.
func (t *truncatingWriteCloser) Close() error {
	return t.closer.Close()
}

// createLogFileWriter opens the rotated project log. Fails when the
// working directory is not an initialized project; callers fall back to
// console-only logging.
func createLogFileWriter() (io.WriteCloser, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	projectDir := filepath.Join(cwd, constants.ProjectDir)
	if _, err := os.Stat(projectDir); err != nil {
		return nil, fmt.Errorf("project not initialized: %w", err)
	}

	logDir := filepath.Join(projectDir, constants.LogsDir)
	if err := os.MkdirAll(logDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	lj := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, constants.LogFileName),
		MaxSize:    constants.LogMaxSizeMB,
		MaxBackups: constants.LogMaxBackups,
		MaxAge:     constants.LogMaxAgeDays,
	}

	return &truncatingWriteCloser{
		writer: logging.NewTruncatingWriter(lj),
		closer: lj,
	}, nil
}
