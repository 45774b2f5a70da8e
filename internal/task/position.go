package task

// Reposition reassigns position = index+1 to every task in its current order.
func Reposition(tasks []Task) {
	for i := range tasks {
		tasks[i].Position = i + 1
	}
}

// Clone returns a deep copy of tasks.
func Clone(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t
		if t.Subtasks != nil {
			out[i].Subtasks = append([]Subtask(nil), t.Subtasks...)
		}
	}
	return out
}

// Positions turns a list of positions into a lookup set.
func Positions(positions []int) map[int]struct{} {
	set := make(map[int]struct{}, len(positions))
	for _, p := range positions {
		set[p] = struct{}{}
	}
	return set
}

// Find returns the index of the task at position, or -1.
func Find(tasks []Task, position int) int {
	for i := range tasks {
		if tasks[i].Position == position {
			return i
		}
	}
	return -1
}

// RemovePositions drops the tasks whose position is in positions, renumbers
// the rest and returns the resulting slice and the number of tasks dropped.
// The input slice is not modified.
func RemovePositions(tasks []Task, positions []int) ([]Task, int) {
	set := Positions(positions)
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if _, ok := set[t.Position]; ok {
			continue
		}
		out = append(out, t)
	}
	Reposition(out)
	return out, len(tasks) - len(out)
}

// ApplyStatus sets status on the tasks whose position is in positions and
// returns how many matched.
func ApplyStatus(tasks []Task, positions []int, status Status) int {
	set := Positions(positions)
	n := 0
	for i := range tasks {
		if _, ok := set[tasks[i].Position]; ok {
			tasks[i].Status = status
			n++
		}
	}
	return n
}
