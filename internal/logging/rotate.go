package logging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"
)

const (
	backupLayout = "2006-01-02"
	// Backups is the number of daily log files kept next to the current one.
	Backups = 5
)

// rotate moves the log file at path aside as path.YYYY-MM-DD when it was last
// written before the day of now, then deletes all but the newest keep backups.
func rotate(path string, now time.Time, keep int) error {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat log file: %w", err)
	}

	written := info.ModTime().In(now.Location())
	if !day(written).Before(day(now)) {
		return nil
	}
	backup := path + "." + written.Format(backupLayout)
	if err := os.Rename(path, backup); err != nil {
		return fmt.Errorf("rotate log file: %w", err)
	}
	return prune(path, keep)
}

func prune(path string, keep int) error {
	matches, err := filepath.Glob(path + ".*")
	if err != nil {
		return fmt.Errorf("list log backups: %w", err)
	}
	backups := matches[:0]
	for _, m := range matches {
		suffix := m[len(path)+1:]
		if _, err := time.Parse(backupLayout, suffix); err == nil {
			backups = append(backups, m)
		}
	}
	if len(backups) <= keep {
		return nil
	}
	// the date suffix sorts chronologically
	slices.Sort(backups)
	for _, old := range backups[:len(backups)-keep] {
		if err := os.Remove(old); err != nil {
			return fmt.Errorf("remove log backup: %w", err)
		}
	}
	return nil
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
