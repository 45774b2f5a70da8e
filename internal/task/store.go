package task

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a referenced position does not exist.
var ErrNotFound = errors.New("task not found")

// Store is the persistence contract for the task list.
//
// Positions are 1-based and dense within their scope. Every method that
// mutates the list either applies completely or not at all.
type Store interface {
	// List returns all tasks in position order, subtasks included.
	List(ctx context.Context) ([]Task, error)

	// Add appends a task with status To Do at position count+1.
	Add(ctx context.Context, text string) (Task, error)

	// AddSubtask appends a subtask to the task at position.
	// Returns ErrNotFound (and changes nothing) if there is no such task.
	AddSubtask(ctx context.Context, position int, text string) (Subtask, error)

	// Remove deletes the tasks at the given positions together with their
	// subtasks and renumbers the remaining tasks. Returns the number removed.
	Remove(ctx context.Context, positions []int) (int, error)

	// SetStatus overwrites the status of the tasks at the given positions.
	// Unknown positions are ignored. Returns the number of tasks matched.
	SetStatus(ctx context.Context, positions []int, status Status) (int, error)

	// Close releases the underlying storage handle.
	Close() error
}
