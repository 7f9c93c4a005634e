package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tablerohq/tablero/internal/models"
)

func (a *App) handleCalendarKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "left", "h":
		a.month = a.month.AddDate(0, -1, 0)
	case "right", "l":
		a.month = a.month.AddDate(0, 1, 0)
	case "t":
		a.month = time.Now()
	}
	return a, nil
}

// dueByDay buckets the visible tasks of the displayed month by the day of
// their due date.
func (a *App) dueByDay() map[int][]models.Task {
	year, month := a.month.Year(), a.month.Month()
	due := make(map[int][]models.Task)
	for _, t := range a.visibleTasks() {
		if t.EndDate == nil {
			continue
		}
		d := t.EndDate.In(time.Local)
		if d.Year() == year && d.Month() == month {
			due[d.Day()] = append(due[d.Day()], t)
		}
	}
	return due
}

// renderCalendar draws a month grid with the number of tasks due on each
// day. Tasks are bucketed by EndDate.
func (a *App) renderCalendar(height int) string {
	if a.tasks.Loading() {
		return "\n  Loading calendar...\n"
	}

	year, month := a.month.Year(), a.month.Month()
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	due := a.dueByDay()

	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render(first.Format("January 2006")) + "\n\n")
	b.WriteString("   Mon   Tue   Wed   Thu   Fri   Sat   Sun\n")

	// Monday-first offset for the opening week.
	offset := (int(first.Weekday()) + 6) % 7
	b.WriteString(strings.Repeat("      ", offset))

	today := time.Now()
	for day := 1; day <= daysInMonth; day++ {
		cell := fmt.Sprintf("%4d", day)
		if n := len(due[day]); n > 0 {
			cell = fmt.Sprintf("%3d*", day)
			cell = priorityStyle("high").Render(cell)
		}
		if today.Year() == year && today.Month() == month && today.Day() == day {
			cell = selectedStyle.Render(cell)
		}
		b.WriteString(cell + "  ")

		if (offset+day)%7 == 0 {
			b.WriteString("\n")
		}
	}
	b.WriteString("\n\n")

	// Due list under the grid.
	listed := 0
	for _, t := range a.visibleTasks() {
		if t.EndDate == nil || listed >= height-12 {
			continue
		}
		d := t.EndDate.In(time.Local)
		if d.Year() == year && d.Month() == month {
			line := fmt.Sprintf("  %s  %s", d.Format("Jan 02"), t.Title)
			if t.Overdue(today) {
				line = errorStyle.Render(line)
			}
			b.WriteString(line + "\n")
			listed++
		}
	}

	b.WriteString("\n" + helpStyle.Render("  ←→:month t:today  * marks days with due tasks"))
	return b.String()
}
