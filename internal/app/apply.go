package app

import (
	"context"
	"errors"

	"github.com/metalagman/todo/internal/task"
	"github.com/rs/zerolog"
)

// Request lists the changes of one invocation.
type Request struct {
	Add      []string
	Subtask  *SubtaskRequest
	Start    []int
	Stop     []int
	Complete []int
	Remove   []int
}

// SubtaskRequest adds Text under the task at Position.
type SubtaskRequest struct {
	Position int
	Text     string
}

// Empty reports whether the request changes nothing.
func (r Request) Empty() bool {
	return len(r.Add) == 0 && r.Subtask == nil && len(r.Start) == 0 &&
		len(r.Stop) == 0 && len(r.Complete) == 0 && len(r.Remove) == 0
}

// Apply runs req against store in a fixed order (adds, subtask, start, stop,
// complete, remove) and returns the resulting list. Status changes address
// positions as they were before removal.
//
// Unknown positions are logged and skipped; storage errors abort.
func Apply(ctx context.Context, store task.Store, log zerolog.Logger, req Request) ([]task.Task, error) {
	if req.Empty() {
		log.Debug().Msg("no changes requested")
		return store.List(ctx)
	}

	for _, text := range req.Add {
		t, err := store.Add(ctx, text)
		if err != nil {
			return nil, err
		}
		log.Info().Int("position", t.Position).Str("text", t.Text).Msg("task added")
	}

	if req.Subtask != nil {
		sub, err := store.AddSubtask(ctx, req.Subtask.Position, req.Subtask.Text)
		switch {
		case errors.Is(err, task.ErrNotFound):
			log.Error().Int("position", req.Subtask.Position).Msg("no task with this position found")
		case err != nil:
			return nil, err
		default:
			log.Info().
				Int("position", req.Subtask.Position).
				Int("subposition", sub.Position).
				Msg("subtask added")
		}
	}

	changes := []struct {
		positions []int
		status    task.Status
	}{
		{req.Start, task.StatusInProgress},
		{req.Stop, task.StatusToDo},
		{req.Complete, task.StatusDone},
	}
	for _, c := range changes {
		if len(c.positions) == 0 {
			continue
		}
		n, err := store.SetStatus(ctx, c.positions, c.status)
		if err != nil {
			return nil, err
		}
		logSkipped(log, c.positions, n)
		log.Info().Ints("positions", c.positions).Str("status", string(c.status)).Msg("status changed")
	}

	if len(req.Remove) > 0 {
		n, err := store.Remove(ctx, req.Remove)
		if err != nil {
			return nil, err
		}
		logSkipped(log, req.Remove, n)
		log.Info().Int("count", n).Msg("tasks removed")
	}

	return store.List(ctx)
}

func logSkipped(log zerolog.Logger, positions []int, matched int) {
	if unique := len(task.Positions(positions)); matched < unique {
		log.Debug().Ints("positions", positions).Int("matched", matched).Msg("some positions not found, skipped")
	}
}
