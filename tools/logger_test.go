package tools

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHook(dir string) *dailyFileHook {
	return &dailyFileHook{
		dir: dir,
		formatter: &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			DisableColors:   true,
		},
	}
}

func fireEntry(t *testing.T, hook *dailyFileHook, level logrus.Level, when time.Time, msg string) {
	t.Helper()
	entry := logrus.NewEntry(logrus.New())
	entry.Time = when
	entry.Level = level
	entry.Message = msg
	require.NoError(t, hook.Fire(entry))
}

func logFileNames(t *testing.T, dir string) []string {
	t.Helper()
	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name())
	}
	return names
}

func TestDailyFileHookPartitionsByDayAndSeverity(t *testing.T) {
	dir := t.TempDir()
	hook := newTestHook(dir)
	day := time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

	fireEntry(t, hook, logrus.InfoLevel, day, "run started")
	fireEntry(t, hook, logrus.WarnLevel, day, "member skipped")
	fireEntry(t, hook, logrus.ErrorLevel, day, "install failed")
	fireEntry(t, hook, logrus.InfoLevel, day.AddDate(0, 0, 1), "next run")

	assert.ElementsMatch(t, []string{
		"2025-03-14.info.log",
		"2025-03-14.warning.log",
		"2025-03-14.error.log",
		"2025-03-15.info.log",
	}, logFileNames(t, dir))
}

func TestDailyFileHookCollapsesLevels(t *testing.T) {
	dir := t.TempDir()
	hook := newTestHook(dir)
	day := time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

	// Debug folds into the info stream, fatal and panic into error.
	fireEntry(t, hook, logrus.DebugLevel, day, "noise")
	fireEntry(t, hook, logrus.FatalLevel, day, "gave up")
	fireEntry(t, hook, logrus.PanicLevel, day, "blew up")

	assert.ElementsMatch(t, []string{
		"2025-03-14.info.log",
		"2025-03-14.error.log",
	}, logFileNames(t, dir))

	assert.Equal(t, "error", severityClass(logrus.FatalLevel))
	assert.Equal(t, "error", severityClass(logrus.PanicLevel))
	assert.Equal(t, "warning", severityClass(logrus.WarnLevel))
	assert.Equal(t, "info", severityClass(logrus.DebugLevel))
	assert.Equal(t, "info", severityClass(logrus.TraceLevel))
}

func TestDailyFileHookAppends(t *testing.T) {
	dir := t.TempDir()
	hook := newTestHook(dir)
	day := time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

	fireEntry(t, hook, logrus.WarnLevel, day, "first warning")
	fireEntry(t, hook, logrus.WarnLevel, day.Add(time.Minute), "second warning")

	data, err := os.ReadFile(filepath.Join(dir, "2025-03-14.warning.log"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "first warning")
	assert.Contains(t, lines[1], "second warning")
}

func TestEnableFileLoggingCreatesDirAndWrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, EnableFileLogging(dir))

	Log.Warn("wired through the global logger")

	name := time.Now().Format("2006-01-02") + ".warning.log"
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Contains(t, string(data), "wired through the global logger")
}
