// Package snapshot persists the last-known membership per group so the next
// run can compute an incremental delta without re-querying installed state.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jdtower/addin-sync/tools"
)

// Entry is one persisted group record. Members are the group's mail addresses
// as of the end of the run that wrote the file.
type Entry struct {
	GroupName   string    `json:"groupName"`
	AddInID     string    `json:"addInId"`
	Environment string    `json:"environment"`
	ManifestURL string    `json:"manifestUrl"`
	Members     []string  `json:"members"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Store reads and rewrites the snapshot file wholesale.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns prior membership keyed by group name. A missing file is a
// first run; a corrupt file degrades to an empty baseline so the run can
// proceed (re-driving installs is preferred over blocking).
func (s *Store) Load() map[string][]string {
	previous := make(map[string][]string)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			tools.Log.WithField("path", s.path).Info("No snapshot found, treating as first run")
		} else {
			tools.Log.WithError(err).Warnf("Could not read snapshot %s, using empty baseline", s.path)
		}
		return previous
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		tools.Log.WithError(err).Warnf("Snapshot %s is corrupt, using empty baseline", s.path)
		return previous
	}

	for _, entry := range entries {
		if entry.GroupName == "" {
			tools.Log.Warn("Dropping snapshot entry with no group name")
			continue
		}
		previous[entry.GroupName] = entry.Members
	}
	return previous
}

// Save replaces the snapshot file with the given entries. The write goes to a
// temp file first and is renamed into place so a crash mid-write never leaves
// a truncated snapshot behind.
func (s *Store) Save(entries []Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}

	tools.Log.WithFields(map[string]interface{}{
		"path":   s.path,
		"groups": len(entries),
	}).Debug("Snapshot saved")
	return nil
}
