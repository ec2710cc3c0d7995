package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

func InitLogger() {
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		DisableColors:   false,
		PadLevelText:    true,
	})
	Log.SetLevel(logrus.InfoLevel) // or DebugLevel
}

// EnableFileLogging mirrors every log entry into per-day, per-severity files
// under dir (e.g. 2025-01-02.info.log, 2025-01-02.warning.log,
// 2025-01-02.error.log). Files are append-only; a failed hook write is
// reported by logrus to stderr but never aborts the run.
func EnableFileLogging(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}
	Log.AddHook(&dailyFileHook{
		dir: dir,
		formatter: &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			DisableColors:   true,
			PadLevelText:    true,
		},
	})
	return nil
}

// dailyFileHook appends each entry to <dir>/<YYYY-MM-DD>.<class>.log where
// class collapses logrus levels into info/warning/error streams.
type dailyFileHook struct {
	mu        sync.Mutex
	dir       string
	formatter logrus.Formatter
}

func (h *dailyFileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *dailyFileHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}

	name := fmt.Sprintf("%s.%s.log", entry.Time.Format("2006-01-02"), severityClass(entry.Level))

	h.mu.Lock()
	defer h.mu.Unlock()

	f, err := os.OpenFile(filepath.Join(h.dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(line)
	return err
}

func severityClass(level logrus.Level) string {
	switch level {
	case logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel:
		return "error"
	case logrus.WarnLevel:
		return "warning"
	default:
		return "info"
	}
}

func LogRunSummary(groups, toAdd, toRemove, installed, removed, errors int64) {
	Log.Infof("[summary] groups=%d toAdd=%d toRemove=%d installed=%d removed=%d errors=%d",
		groups, toAdd, toRemove, installed, removed, errors)
}
