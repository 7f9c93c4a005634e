package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tablerohq/tablero/internal/models"
)

func (a *App) handleUsersKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	users := a.users.Users()
	switch key.String() {
	case "up", "k":
		if a.userIdx > 0 {
			a.userIdx--
		}
	case "down", "j":
		if a.userIdx < len(users)-1 {
			a.userIdx++
		}
	case "n":
		a.openUserForm(nil)
	case "enter", "e":
		if a.userIdx < len(users) {
			u := users[a.userIdx]
			a.openUserForm(&u)
		}
	case "t":
		// Toggle active/inactive.
		if a.userIdx < len(users) {
			u := users[a.userIdx]
			next := models.UserActive
			if u.Status == models.UserActive {
				next = models.UserInactive
			}
			return a, a.toggleUser(u.ID, next)
		}
	case "x":
		if a.userIdx < len(users) {
			return a, a.deleteUser(users[a.userIdx].ID)
		}
	}
	return a, nil
}

func (a *App) toggleUser(id string, status models.UserStatus) tea.Cmd {
	return func() tea.Msg {
		patch := models.UserPatch{Status: &status}
		if err := a.users.Update(context.Background(), id, patch); err != nil {
			return errMsg{err}
		}
		return actionDoneMsg{"User " + string(status)}
	}
}

func (a *App) deleteUser(id string) tea.Cmd {
	return func() tea.Msg {
		if err := a.users.Delete(context.Background(), id); err != nil {
			return errMsg{err}
		}
		return actionDoneMsg{"User deleted"}
	}
}

func (a *App) renderUsers(height int) string {
	if a.users.Loading() {
		return "\n  Loading users...\n"
	}

	users := a.users.Users()
	columns := []table.Column{
		{Title: "Name", Width: 20},
		{Title: "Email", Width: 26},
		{Title: "Role", Width: 12},
		{Title: "Department", Width: 14},
		{Title: "Status", Width: 8},
	}
	rows := make([]table.Row, len(users))
	for i, u := range users {
		rows[i] = table.Row{u.Name, u.Email, string(u.Role), u.Department, string(u.Status)}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(min(height-4, len(rows)+1)),
	)
	t.SetCursor(a.userIdx)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).Foreground(fgColor)
	styles.Selected = selectedStyle
	t.SetStyles(styles)

	return "\n" + t.View() + "\n\n" + helpStyle.Render("  n:new e:edit t:toggle active x:delete")
}
