// Package logger sets up the client's logrus logger: a size-rotated file
// under the state directory plus warnings on the console.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kamikazebr/iskra-desktop/pkg/utils"
)

const (
	MaxLogSize   = 1 * 1024 * 1024  // 1MB per file
	MaxTotalSize = 10 * 1024 * 1024 // 10MB across rotated files

	fileName = "iskra.log"
)

type Options struct {
	Level  string
	Format string // "text" or "json"
	// Dir holds the log file. Empty disables file logging.
	Dir string
	// Console receives warnings and errors. Nil disables it.
	Console io.Writer
}

// New builds the logger. The returned close function releases the log file.
func New(opts Options) (*logrus.Logger, func() error, error) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	formatter := formatterFor(opts.Format)
	log.SetFormatter(formatter)

	closeFn := func() error { return nil }

	if opts.Dir != "" {
		f, err := openLogFile(opts.Dir)
		if err != nil {
			return nil, nil, err
		}
		log.SetOutput(f)
		closeFn = f.Close
	}

	if opts.Console != nil {
		log.AddHook(&consoleHook{w: opts.Console, formatter: &logrus.TextFormatter{DisableTimestamp: true}})
	}

	return log, closeFn, nil
}

func formatterFor(format string) logrus.Formatter {
	if strings.EqualFold(format, "json") {
		return &logrus.JSONFormatter{TimestampFormat: time.RFC3339}
	}
	return &logrus.TextFormatter{FullTimestamp: true, DisableColors: true}
}

func openLogFile(dir string) (*os.File, error) {
	if err := utils.MkdirAllWithOwnership(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(dir, fileName)
	if err := rotateIfNeeded(path); err != nil {
		return nil, fmt.Errorf("failed to rotate logs: %w", err)
	}

	f, err := utils.OpenFileWithOwnership(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// rotateIfNeeded moves path aside once it reaches MaxLogSize.
func rotateIfNeeded(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if info.Size() < MaxLogSize {
		return nil
	}

	rotated := filepath.Join(filepath.Dir(path),
		fmt.Sprintf("iskra-%s.log", time.Now().Format("20060102-150405")))
	if err := os.Rename(path, rotated); err != nil {
		return err
	}

	return cleanupOldLogs(filepath.Dir(path))
}

// cleanupOldLogs removes the oldest rotated files until the rest fit in MaxTotalSize.
func cleanupOldLogs(dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "iskra-*.log"))
	if err != nil {
		return err
	}

	// Timestamped names sort oldest first.
	sort.Strings(files)

	var total int64
	for _, f := range files {
		if info, err := os.Stat(f); err == nil {
			total += info.Size()
		}
	}

	for total > MaxTotalSize && len(files) > 0 {
		oldest := files[0]
		if info, err := os.Stat(oldest); err == nil {
			total -= info.Size()
		}
		os.Remove(oldest)
		files = files[1:]
	}
	return nil
}

type consoleHook struct {
	w         io.Writer
	formatter logrus.Formatter
}

func (h *consoleHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel, logrus.WarnLevel}
}

func (h *consoleHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.w.Write(line)
	return err
}
