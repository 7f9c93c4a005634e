package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/tablerohq/tablero/internal/models"
)

func (a *App) renderDashboard(height int) string {
	if a.tasks.Loading() {
		return "\n  Loading dashboard...\n"
	}

	user := a.session.User()
	if user == nil {
		return "\n  Not signed in.\n"
	}

	tasks := a.visibleTasks()
	metrics := models.ComputeMetrics(tasks, a.users.Users(), time.Now())

	cards := []string{
		metricCard("Tasks", fmt.Sprintf("%d", metrics.TotalTasks), primaryColor),
		metricCard("Done", fmt.Sprintf("%d", metrics.CompletedTasks), successColor),
		metricCard("Pending", fmt.Sprintf("%d", metrics.PendingTasks), warningColor),
		metricCard("Overdue", fmt.Sprintf("%d", metrics.OverdueTasks), errorColor),
		metricCard("Completion", fmt.Sprintf("%.0f%%", metrics.CompletionRate*100), primaryColor),
	}
	var b strings.Builder
	b.WriteString("\n" + lipgloss.JoinHorizontal(lipgloss.Top, cards...) + "\n\n")

	// Recent work, newest last (insertion order).
	b.WriteString(columnTitleStyle.Render(" Your tasks ") + "\n")
	shown := 0
	for i := len(tasks) - 1; i >= 0 && shown < height-8; i-- {
		t := tasks[i]
		line := fmt.Sprintf("  %-12s %-8s %s", t.Status, t.Priority, t.Title)
		if t.Overdue(time.Now()) {
			line = errorStyle.Render(line + "  (overdue)")
		}
		b.WriteString(line + "\n")
		shown++
	}
	if shown == 0 {
		b.WriteString(mutedStyle.Render("  Nothing assigned. Press n to create a task.") + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("  n:new task"))
	return b.String()
}

func metricCard(label, value string, color lipgloss.Color) string {
	body := lipgloss.NewStyle().Bold(true).Foreground(color).Render(value) +
		"\n" + mutedStyle.Render(label)
	return cardStyle.Width(14).Render(body)
}
