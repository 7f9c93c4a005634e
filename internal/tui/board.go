package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tablerohq/tablero/internal/models"
)

// boardColumn is one Kanban lane.
type boardColumn struct {
	status models.TaskStatus
	tasks  []models.Task
}

// boardColumns buckets the visible tasks into lanes, one per workflow
// status, preserving store order inside each lane.
func (a *App) boardColumns() []boardColumn {
	cols := make([]boardColumn, len(models.TaskStatuses))
	for i, st := range models.TaskStatuses {
		cols[i].status = st
	}
	for _, t := range a.visibleTasks() {
		for i := range cols {
			if cols[i].status == t.Status {
				cols[i].tasks = append(cols[i].tasks, t)
				break
			}
		}
	}
	return cols
}

func (a *App) handleBoardKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	cols := a.boardColumns()
	if len(cols) == 0 {
		return a, nil
	}
	col := &cols[a.board.col]

	switch key.String() {
	case "left", "h":
		if a.board.col > 0 {
			a.board.col--
			a.clampCursors()
		}
	case "right", "l":
		if a.board.col < len(cols)-1 {
			a.board.col++
			a.clampCursors()
		}
	case "up", "k":
		if a.board.row > 0 {
			a.board.row--
		}
	case "down", "j":
		if a.board.row < len(col.tasks)-1 {
			a.board.row++
		}

	case "H", "shift+left":
		// Drag the selected card one column to the left.
		if a.board.col > 0 && a.board.row < len(col.tasks) {
			target := cols[a.board.col-1].status
			id := col.tasks[a.board.row].ID
			a.board.col--
			return a, a.moveTask(id, target)
		}
	case "L", "shift+right":
		// Drag the selected card one column to the right.
		if a.board.col < len(cols)-1 && a.board.row < len(col.tasks) {
			target := cols[a.board.col+1].status
			id := col.tasks[a.board.row].ID
			a.board.col++
			return a, a.moveTask(id, target)
		}

	case "n":
		a.openTaskForm(nil)
	case "enter", "e":
		if a.board.row < len(col.tasks) {
			task := col.tasks[a.board.row]
			a.openTaskForm(&task)
		}
	case "x":
		if a.board.row < len(col.tasks) {
			return a, a.deleteTask(col.tasks[a.board.row].ID)
		}
	}
	return a, nil
}

func (a *App) renderBoard(height int) string {
	if a.tasks.Loading() {
		return "\n  Loading board...\n"
	}

	cols := a.boardColumns()
	colWidth := 24
	if a.width > 0 {
		if w := a.width/len(cols) - 2; w > colWidth {
			colWidth = w
		}
	}

	rendered := make([]string, len(cols))
	for i, col := range cols {
		var b strings.Builder
		title := fmt.Sprintf("%s (%d)", columnLabel(col.status), len(col.tasks))
		b.WriteString(columnTitleStyle.Width(colWidth).Render(title) + "\n")

		for j, t := range col.tasks {
			style := cardStyle
			if i == a.board.col && j == a.board.row {
				style = selectedCardStyle
			}
			card := t.Title
			if len(card) > colWidth-4 {
				card = card[:colWidth-4]
			}
			card += "\n" + priorityStyle(string(t.Priority)).Render(string(t.Priority))
			if t.Client != "" {
				card += mutedStyle.Render(" · "+t.Client)
			}
			b.WriteString(style.Width(colWidth).Render(card) + "\n")
		}
		rendered[i] = b.String()
	}

	board := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
	help := helpStyle.Render("  ←→:column ↑↓:card H/L:move card n:new e:edit x:delete")
	return "\n" + board + "\n" + help
}

func columnLabel(s models.TaskStatus) string {
	switch s {
	case models.TaskStatusPending:
		return "PENDING"
	case models.TaskStatusInProgress:
		return "IN PROGRESS"
	case models.TaskStatusInReview:
		return "IN REVIEW"
	case models.TaskStatusCompleted:
		return "DONE"
	}
	return strings.ToUpper(string(s))
}
