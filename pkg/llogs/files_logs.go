package llogs

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/oullin/profilesync/metal/env"
)

type FilesLogs struct {
	path   string
	file   *os.File
	logger *slog.Logger
}

// MakeFilesLogs opens today's log file and installs it as the default slog
// handler at the configured level. Every record carries the app name.
func MakeFilesLogs(e *env.Environment) (Driver, error) {
	path := PathFor(e.Logs, time.Now().UTC())

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(file, &slog.HandlerOptions{
		Level: ParseLevel(e.Logs.Level),
	})).With("app", e.App.Name)

	slog.SetDefault(logger)

	return &FilesLogs{path: path, file: file, logger: logger}, nil
}

// PathFor renders the dated log path for the given day.
func PathFor(logs env.LogsEnvironment, day time.Time) string {
	return fmt.Sprintf(logs.Dir, day.Format(logs.DateFormat))
}

func (f *FilesLogs) Path() string {
	return f.path
}

func (f *FilesLogs) Close() bool {
	if err := f.file.Close(); err != nil {
		f.logger.Error("could not close log file", "path", f.path, "error", err)

		return false
	}

	return true
}
