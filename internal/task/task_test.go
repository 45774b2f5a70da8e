package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultsToToDo(t *testing.T) {
	t.Parallel()

	got := New(1, "Test")
	assert.Equal(t, 1, got.Position)
	assert.Equal(t, "Test", got.Text)
	assert.Equal(t, StatusToDo, got.Status)
	assert.Empty(t, got.Subtasks)
}

func TestStatus_Valid(t *testing.T) {
	t.Parallel()

	assert.True(t, StatusToDo.Valid())
	assert.True(t, StatusInProgress.Valid())
	assert.True(t, StatusDone.Valid())
	assert.False(t, Status("Done!").Valid())
	assert.False(t, Status("").Valid())
}

func TestAddSubtask_AppendsAtNextPosition(t *testing.T) {
	t.Parallel()

	parent := New(1, "parent")
	first := parent.AddSubtask("one")
	second := parent.AddSubtask("two")

	assert.Equal(t, Subtask{Position: 1, Text: "one", Status: StatusToDo}, first)
	assert.Equal(t, Subtask{Position: 2, Text: "two", Status: StatusToDo}, second)
	require.Len(t, parent.Subtasks, 2)
}

func TestRemovePositions_RenumbersRemaining(t *testing.T) {
	t.Parallel()

	tasks := []Task{New(1, "A"), New(2, "B"), New(3, "C")}
	got, removed := RemovePositions(tasks, []int{2})

	assert.Equal(t, 1, removed)
	assert.Equal(t, []Task{New(1, "A"), New(2, "C")}, got)
	assert.Equal(t, "B", tasks[1].Text, "input must stay untouched")
	assert.Equal(t, 3, tasks[2].Position, "input must stay untouched")
}

func TestRemovePositions_IgnoresUnknownPositions(t *testing.T) {
	t.Parallel()

	tasks := []Task{New(1, "A"), New(2, "B")}
	got, removed := RemovePositions(tasks, []int{5, 2, 2})

	assert.Equal(t, 1, removed)
	assert.Equal(t, []Task{New(1, "A")}, got)
}

func TestApplyStatus_IsIdempotent(t *testing.T) {
	t.Parallel()

	tasks := []Task{New(1, "A"), New(2, "B"), New(3, "C")}
	assert.Equal(t, 2, ApplyStatus(tasks, []int{1, 3}, "Done!"))
	once := Clone(tasks)
	assert.Equal(t, 2, ApplyStatus(tasks, []int{1, 3}, "Done!"))

	assert.Equal(t, once, tasks)
	assert.Equal(t, Status("Done!"), tasks[0].Status)
	assert.Equal(t, StatusToDo, tasks[1].Status)
	assert.Equal(t, Status("Done!"), tasks[2].Status)
}

func TestClone_DoesNotShareSubtasks(t *testing.T) {
	t.Parallel()

	orig := []Task{New(1, "A")}
	orig[0].AddSubtask("sub")

	cp := Clone(orig)
	cp[0].Subtasks[0].Text = "changed"
	cp[0].AddSubtask("another")

	assert.Equal(t, "sub", orig[0].Subtasks[0].Text)
	assert.Len(t, orig[0].Subtasks, 1)
	assert.Nil(t, Clone(nil))
}

func TestFind(t *testing.T) {
	t.Parallel()

	tasks := []Task{New(1, "A"), New(2, "B")}
	assert.Equal(t, 1, Find(tasks, 2))
	assert.Equal(t, -1, Find(tasks, 99))
}

func TestUnknownStatuses(t *testing.T) {
	t.Parallel()

	tasks := []Task{
		New(1, "A"),
		{Position: 2, Text: "B", Status: "Someday", Subtasks: []Subtask{
			{Position: 1, Text: "b1", Status: StatusDone},
			{Position: 2, Text: "b2", Status: "Done!"},
		}},
	}

	assert.Equal(t, []string{"2", "2.2"}, UnknownStatuses(tasks))
	assert.Empty(t, UnknownStatuses([]Task{New(1, "A")}))
}
