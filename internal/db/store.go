// Package db provides the relational task store and its migrations.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/metalagman/todo/internal/task"
	"github.com/rs/zerolog"
)

// Store persists tasks as rows. Each mutation runs in its own transaction.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

var _ task.Store = (*Store)(nil)

// NewStore creates a task store on an opened database.
func NewStore(db *sql.DB, logger zerolog.Logger) *Store {
	return &Store{db: db, log: logger}
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// List returns all tasks ordered by position with their subtasks.
func (s *Store) List(ctx context.Context) ([]task.Task, error) {
	s.log.Debug().Msg("get all tasks")
	tasks, ids, err := s.listTasks(ctx)
	if err != nil {
		return nil, err
	}
	s.log.Debug().Int("count", len(tasks)).Msg("found tasks in database")
	if len(tasks) == 0 {
		return tasks, nil
	}

	const query = `SELECT task_id, position, text, status FROM subtasks ORDER BY task_id, position`
	s.trace(query)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query subtasks: %w", err)
	}
	defer rows.Close()
	index := make(map[int64]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}
	for rows.Next() {
		var taskID int64
		var sub task.Subtask
		if err := rows.Scan(&taskID, &sub.Position, &sub.Text, &sub.Status); err != nil {
			return nil, fmt.Errorf("scan subtask: %w", err)
		}
		i, ok := index[taskID]
		if !ok {
			continue
		}
		tasks[i].Subtasks = append(tasks[i].Subtasks, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subtasks: %w", err)
	}
	warnUnknown(s.log, tasks)
	return tasks, nil
}

// Add inserts a new task after the last one.
func (s *Store) Add(ctx context.Context, text string) (task.Task, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return task.Task{}, fmt.Errorf("begin add task: %w", err)
	}
	count, err := s.count(ctx, tx, `SELECT COUNT(*) FROM tasks`)
	if err != nil {
		_ = tx.Rollback()
		return task.Task{}, err
	}
	t := task.New(count+1, text)
	s.log.Debug().Int("position", t.Position).Str("text", t.Text).Msg("add task")

	const insert = `INSERT INTO tasks(position, text, status) VALUES(?, ?, ?)`
	s.trace(insert, t.Position, t.Text, t.Status)
	if _, err := tx.ExecContext(ctx, insert, t.Position, t.Text, string(t.Status)); err != nil {
		_ = tx.Rollback()
		return task.Task{}, fmt.Errorf("insert task: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return task.Task{}, fmt.Errorf("commit add task: %w", err)
	}
	return t, nil
}

// AddSubtask appends a subtask to the task at position.
func (s *Store) AddSubtask(ctx context.Context, position int, text string) (task.Subtask, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return task.Subtask{}, fmt.Errorf("begin add subtask: %w", err)
	}

	const lookup = `SELECT id FROM tasks WHERE position=?`
	s.trace(lookup, position)
	var taskID int64
	if err := tx.QueryRowContext(ctx, lookup, position).Scan(&taskID); err != nil {
		_ = tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return task.Subtask{}, fmt.Errorf("task at position %d: %w", position, task.ErrNotFound)
		}
		return task.Subtask{}, fmt.Errorf("read task: %w", err)
	}

	count, err := s.count(ctx, tx, `SELECT COUNT(*) FROM subtasks WHERE task_id=?`, taskID)
	if err != nil {
		_ = tx.Rollback()
		return task.Subtask{}, err
	}
	sub := task.Subtask{Position: count + 1, Text: text, Status: task.StatusToDo}
	s.log.Debug().Int("position", position).Int("subposition", sub.Position).Msg("add subtask")

	const insert = `INSERT INTO subtasks(task_id, position, text, status) VALUES(?, ?, ?, ?)`
	s.trace(insert, taskID, sub.Position, sub.Text, sub.Status)
	if _, err := tx.ExecContext(ctx, insert, taskID, sub.Position, sub.Text, string(sub.Status)); err != nil {
		_ = tx.Rollback()
		return task.Subtask{}, fmt.Errorf("insert subtask: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return task.Subtask{}, fmt.Errorf("commit add subtask: %w", err)
	}
	return sub, nil
}

// Remove deletes the tasks at positions and renumbers the rest in one transaction.
func (s *Store) Remove(ctx context.Context, positions []int) (int, error) {
	if len(positions) == 0 {
		return 0, nil
	}
	s.log.Debug().Ints("positions", positions).Msg("remove tasks")

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin remove: %w", err)
	}
	in, args := inClause(positions)

	deleteSubtasks := `DELETE FROM subtasks WHERE task_id IN (SELECT id FROM tasks WHERE position IN ` + in + `)`
	s.trace(deleteSubtasks, args...)
	if _, err := tx.ExecContext(ctx, deleteSubtasks, args...); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("delete subtasks: %w", err)
	}

	deleteTasks := `DELETE FROM tasks WHERE position IN ` + in
	s.trace(deleteTasks, args...)
	res, err := tx.ExecContext(ctx, deleteTasks, args...)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("delete tasks: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	if err := s.reposition(ctx, tx); err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit remove: %w", err)
	}
	return int(removed), nil
}

// SetStatus updates the status of the tasks at positions.
func (s *Store) SetStatus(ctx context.Context, positions []int, status task.Status) (int, error) {
	if len(positions) == 0 {
		return 0, nil
	}
	s.log.Debug().Ints("positions", positions).Str("status", string(status)).Msg("set status")

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin set status: %w", err)
	}
	in, args := inClause(positions)
	update := `UPDATE tasks SET status=? WHERE position IN ` + in
	args = append([]any{string(status)}, args...)
	s.trace(update, args...)
	res, err := tx.ExecContext(ctx, update, args...)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("update status: %w", err)
	}
	matched, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit set status: %w", err)
	}
	return int(matched), nil
}

// reposition reassigns position = index+1 to every task in position order.
func (s *Store) reposition(ctx context.Context, tx *sql.Tx) error {
	s.log.Debug().Msg("reposition tasks")
	const query = `SELECT id, position FROM tasks ORDER BY position, id`
	s.trace(query)
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("query positions: %w", err)
	}
	type row struct {
		id       int64
		position int
	}
	var current []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.position); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan position: %w", err)
		}
		current = append(current, r)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return fmt.Errorf("iterate positions: %w", err)
	}
	_ = rows.Close()

	const update = `UPDATE tasks SET position=? WHERE id=?`
	for i, r := range current {
		if r.position == i+1 {
			continue
		}
		s.trace(update, i+1, r.id)
		if _, err := tx.ExecContext(ctx, update, i+1, r.id); err != nil {
			return fmt.Errorf("update position: %w", err)
		}
	}
	return nil
}

func (s *Store) count(ctx context.Context, tx *sql.Tx, query string, args ...any) (int, error) {
	s.trace(query, args...)
	var n int
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	return n, nil
}

func warnUnknown(log zerolog.Logger, tasks []task.Task) {
	if unknown := task.UnknownStatuses(tasks); len(unknown) > 0 {
		log.Warn().Strs("positions", unknown).Msg("tasks with unknown status")
	}
}

func (s *Store) trace(query string, args ...any) {
	s.log.Trace().Str("sql", query).Interface("args", args).Msg("sql")
}

func (s *Store) listTasks(ctx context.Context) ([]task.Task, []int64, error) {
	const query = `SELECT id, position, text, status FROM tasks ORDER BY position`
	s.trace(query)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()
	var (
		tasks = []task.Task{}
		ids   []int64
	)
	for rows.Next() {
		var id int64
		var t task.Task
		if err := rows.Scan(&id, &t.Position, &t.Text, &t.Status); err != nil {
			return nil, nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, ids, nil
}

func inClause(positions []int) (string, []any) {
	args := make([]any, len(positions))
	for i, p := range positions {
		args[i] = p
	}
	return "(" + strings.TrimSuffix(strings.Repeat("?, ", len(positions)), ", ") + ")", args
}
