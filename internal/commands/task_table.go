package commands

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/colonyops/taskboard/internal/core/task"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle      = lipgloss.NewStyle().Padding(0, 1)
	completedStyle = cellStyle.Foreground(lipgloss.Color("#565f89")).Strikethrough(true)
	urgentStyle    = cellStyle.Foreground(lipgloss.Color("#f7768e")).Bold(true)
	borderStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#3b4261"))
)

// colPriority is the index of the priority column.
const colPriority = 3

// renderTaskTable renders tasks as a bordered table. Completed rows are
// struck through and high priorities highlighted.
func renderTaskTable(tasks []task.Task) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("ID", "DONE", "DESCRIPTION", "PRIORITY", "PROGRESS").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row < 0 || row >= len(tasks) {
				return cellStyle
			}

			tk := tasks[row]
			switch {
			case tk.Completed:
				return completedStyle
			case col == colPriority && tk.Priority.Rank() >= task.PriorityVeryHigh.Rank():
				return urgentStyle
			default:
				return cellStyle
			}
		})

	for _, tk := range tasks {
		done := "[ ]"
		if tk.Completed {
			done = "[x]"
		}
		t.Row(
			strconv.FormatInt(tk.ID, 10),
			done,
			tk.Description,
			tk.Priority.Label(),
			fmt.Sprintf("%3d%%", tk.Progress),
		)
	}

	return t.String()
}
