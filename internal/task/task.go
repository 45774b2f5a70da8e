// Package task defines the task list domain: tasks, subtasks, statuses and
// the persistence contract implemented by the storage backends.
package task

import "strconv"

// Status is the progress state of a task or subtask.
type Status string

const (
	StatusToDo       Status = "To Do"
	StatusInProgress Status = "In Progress"
	StatusDone       Status = "Done"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// UnknownStatuses returns the positions of tasks and subtasks whose status is not
// one of the known statuses, formatted as "p" or "p.s".
func UnknownStatuses(tasks []Task) []string {
	var out []string
	for _, t := range tasks {
		if !t.Status.Valid() {
			out = append(out, strconv.Itoa(t.Position))
		}
		for _, sub := range t.Subtasks {
			if !sub.Status.Valid() {
				out = append(out, strconv.Itoa(t.Position)+"."+strconv.Itoa(sub.Position))
			}
		}
	}
	return out
}

func (s Status) String() string {
	return string(s)
}

// Task is a single entry of the list.
type Task struct {
	Position int       `json:"position"           yaml:"position"`
	Text     string    `json:"text"               yaml:"text"`
	Status   Status    `json:"status"             yaml:"status"`
	Subtasks []Subtask `json:"subtasks,omitempty" yaml:"subtasks,omitempty"`
}

// Subtask is a child entry owned by exactly one task.
type Subtask struct {
	Position int    `json:"position" yaml:"position"`
	Text     string `json:"text"     yaml:"text"`
	Status   Status `json:"status"   yaml:"status"`
}

// New returns a task at the given position with the default status.
func New(position int, text string) Task {
	return Task{Position: position, Text: text, Status: StatusToDo}
}

// AddSubtask appends a subtask positioned after the existing ones.
func (t *Task) AddSubtask(text string) Subtask {
	sub := Subtask{Position: len(t.Subtasks) + 1, Text: text, Status: StatusToDo}
	t.Subtasks = append(t.Subtasks, sub)
	return sub
}
