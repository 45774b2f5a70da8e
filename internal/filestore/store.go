// Package filestore keeps the task list in a single JSON or YAML document
// that is rewritten as a whole on every change.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/metalagman/todo/internal/task"
	"github.com/rs/zerolog"
)

// Store is a document-backed task.Store.
type Store struct {
	path  string
	codec Codec
	log   zerolog.Logger
	lock  *fileLock
	tasks []task.Task
}

var _ task.Store = (*Store)(nil)

// Open locks the document at path and loads it. A missing document yields an
// empty list.
func Open(path string, logger zerolog.Logger) (*Store, error) {
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		logger.Info().Str("dir", dir).Msg("database folder not found, created")
	}

	lock, ok, err := tryLock(path + ".lock")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s is locked by another process", path)
	}

	s := &Store{path: path, codec: CodecFor(path), log: logger, lock: lock}
	if err := s.Load(); err != nil {
		_ = lock.Release()
		return nil, err
	}
	return s, nil
}

// Load replaces the in-memory list with the document contents.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.log.Info().Str("path", s.path).Msg("database file not found, empty database loaded")
			s.tasks = []task.Task{}
			return nil
		}
		return fmt.Errorf("read tasks: %w", err)
	}

	var doc Document
	if len(data) > 0 {
		if err := s.codec.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parse %s: %w", s.path, err)
		}
	}
	if doc.Tasks == nil {
		doc.Tasks = []task.Task{}
	}
	s.tasks = doc.Tasks
	if unknown := task.UnknownStatuses(s.tasks); len(unknown) > 0 {
		s.log.Warn().Strs("positions", unknown).Str("path", s.path).Msg("tasks with unknown status")
	}
	s.log.Debug().Int("count", len(s.tasks)).Str("path", s.path).Msg("tasks loaded")
	return nil
}

// Close releases the document lock.
func (s *Store) Close() error {
	return s.lock.Release()
}

// List returns a copy of all tasks in position order.
func (s *Store) List(_ context.Context) ([]task.Task, error) {
	s.log.Debug().Msg("get all tasks")
	return task.Clone(s.tasks), nil
}

// Add appends a task and rewrites the document.
func (s *Store) Add(_ context.Context, text string) (task.Task, error) {
	next := task.Clone(s.tasks)
	t := task.New(len(next)+1, text)
	next = append(next, t)
	s.log.Debug().Int("position", t.Position).Str("text", t.Text).Msg("add task")
	if err := s.commit(next); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

// AddSubtask appends a subtask to the task at position and rewrites the document.
func (s *Store) AddSubtask(_ context.Context, position int, text string) (task.Subtask, error) {
	i := task.Find(s.tasks, position)
	if i < 0 {
		return task.Subtask{}, fmt.Errorf("task at position %d: %w", position, task.ErrNotFound)
	}
	next := task.Clone(s.tasks)
	sub := next[i].AddSubtask(text)
	s.log.Debug().Int("position", position).Int("subposition", sub.Position).Msg("add subtask")
	if err := s.commit(next); err != nil {
		return task.Subtask{}, err
	}
	return sub, nil
}

// Remove deletes the tasks at positions, renumbers the rest and rewrites the document.
func (s *Store) Remove(_ context.Context, positions []int) (int, error) {
	if len(positions) == 0 {
		return 0, nil
	}
	s.log.Debug().Ints("positions", positions).Msg("remove tasks")
	next, removed := task.RemovePositions(s.tasks, positions)
	if removed == 0 {
		return 0, nil
	}
	if err := s.commit(next); err != nil {
		return 0, err
	}
	return removed, nil
}

// SetStatus updates the status of the tasks at positions and rewrites the document.
func (s *Store) SetStatus(_ context.Context, positions []int, status task.Status) (int, error) {
	if len(positions) == 0 {
		return 0, nil
	}
	s.log.Debug().Ints("positions", positions).Str("status", string(status)).Msg("set status")
	next := task.Clone(s.tasks)
	matched := task.ApplyStatus(next, positions, status)
	if matched == 0 {
		return 0, nil
	}
	if err := s.commit(next); err != nil {
		return 0, err
	}
	return matched, nil
}

// commit writes next to disk and only then makes it the in-memory state.
func (s *Store) commit(next []task.Task) error {
	if err := s.save(next); err != nil {
		return err
	}
	s.tasks = next
	return nil
}

// save writes the document atomically: temp file in the same folder, fsync, rename.
func (s *Store) save(tasks []task.Task) error {
	data, err := s.codec.Marshal(Document{Tasks: tasks})
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write tasks: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync tasks: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		cleanup()
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	s.log.Trace().Str("path", s.path).Int("bytes", len(data)).Msg("tasks written")
	return nil
}
