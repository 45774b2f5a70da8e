package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/metalagman/todo/internal/task"
)

const minWidth = 20

var boxStyle = lipgloss.NewStyle().
	Border(lipgloss.NormalBorder()).
	Padding(0, 1)

// renderTasks prints tasks framed in a bordered block that is width columns wide.
func renderTasks(w io.Writer, tasks []task.Task, width int) error {
	if width < minWidth {
		width = minWidth
	}
	// border and padding take two columns each
	content := width - 4

	rows := []string{row("#", "Status", "Task"), strings.Repeat("─", content)}
	if len(tasks) == 0 {
		rows = append(rows, lipgloss.PlaceHorizontal(content, lipgloss.Center, "(empty)"))
	}
	for _, t := range tasks {
		rows = append(rows, row(strconv.Itoa(t.Position), string(t.Status), t.Text))
		for _, s := range t.Subtasks {
			label := fmt.Sprintf("%d.%d", t.Position, s.Position)
			rows = append(rows, row(label, string(s.Status), "└ "+s.Text))
		}
	}

	box := boxStyle.Width(width - 2).Render(strings.Join(rows, "\n"))
	_, err := fmt.Fprintln(w, box)
	return err
}

func row(position, status, text string) string {
	return fmt.Sprintf("%-5s %-11s  %s", position, status, text)
}
