// Package tui provides the interactive terminal UI for Tablero: dashboard,
// Kanban board, calendar, user administration and notifications.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tablerohq/tablero/internal/api"
	"github.com/tablerohq/tablero/internal/cache"
	"github.com/tablerohq/tablero/internal/models"
	"github.com/tablerohq/tablero/internal/session"
)

// App is the main TUI application model.
type App struct {
	session       *session.Manager
	client        *api.Client
	tasks         *cache.TaskStore
	users         *cache.UserStore
	notifications *cache.NotificationStore

	mode    string // "login", "dashboard", "board", "calendar", "users", "notifications"
	width   int
	height  int
	message string

	login     *loginForm
	board     boardCursor
	userIdx   int
	notifIdx  int
	month     time.Time
	taskModal TaskModal
	userModal UserModal
	taskForm  *taskForm
	userForm  *userForm
}

type boardCursor struct {
	col int
	row int
}

// New creates a new TUI application. The session manager decides the
// starting screen: straight to the dashboard when credentials were
// restored from disk, the login form otherwise.
func New(sess *session.Manager, client *api.Client) *App {
	a := &App{
		session:       sess,
		client:        client,
		tasks:         cache.NewTaskStore(client.Tasks()),
		users:         cache.NewUserStore(client.Users()),
		notifications: cache.NewNotificationStore(client.Notifications()),
		login:         newLoginForm(),
		month:         time.Now(),
		mode:          "login",
	}
	if sess.IsAuthenticated() {
		a.mode = "dashboard"
	}
	return a
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// --- messages ---

type tasksLoadedMsg struct{}
type usersLoadedMsg struct{}
type notificationsLoadedMsg struct{}
type actionDoneMsg struct{ message string }
type errMsg struct{ err error }
type loginDoneMsg struct{ user models.User }
type loginFailedMsg struct{ err error }

// --- commands ---

func (a *App) fetchTasks() tea.Cmd {
	return func() tea.Msg {
		if err := a.tasks.FetchAll(context.Background()); err != nil {
			return errMsg{err}
		}
		return tasksLoadedMsg{}
	}
}

func (a *App) fetchUsers() tea.Cmd {
	return func() tea.Msg {
		if err := a.users.FetchAll(context.Background()); err != nil {
			return errMsg{err}
		}
		return usersLoadedMsg{}
	}
}

func (a *App) fetchNotifications() tea.Cmd {
	return func() tea.Msg {
		if err := a.notifications.FetchAll(context.Background()); err != nil {
			return errMsg{err}
		}
		return notificationsLoadedMsg{}
	}
}

func (a *App) refreshAll() tea.Cmd {
	return tea.Batch(a.fetchTasks(), a.fetchUsers(), a.fetchNotifications())
}

func (a *App) moveTask(id string, status models.TaskStatus) tea.Cmd {
	return func() tea.Msg {
		if err := a.tasks.Move(context.Background(), id, status); err != nil {
			return errMsg{err}
		}
		return actionDoneMsg{fmt.Sprintf("Moved to %s", status)}
	}
}

func (a *App) deleteTask(id string) tea.Cmd {
	return func() tea.Msg {
		if err := a.tasks.Delete(context.Background(), id); err != nil {
			return errMsg{err}
		}
		return actionDoneMsg{"Task deleted"}
	}
}

func (a *App) markNotificationRead(id string) tea.Cmd {
	return func() tea.Msg {
		if err := a.notifications.MarkRead(context.Background(), id); err != nil {
			return errMsg{err}
		}
		return actionDoneMsg{"Marked read"}
	}
}

func (a *App) doLogin(email, password string) tea.Cmd {
	return func() tea.Msg {
		user, err := a.session.Login(context.Background(), a.client.Auth(), email, password)
		if err != nil {
			return loginFailedMsg{err}
		}
		return loginDoneMsg{*user}
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	if a.mode == "login" {
		return a.login.Init()
	}
	return a.refreshAll()
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case errMsg:
		a.message = "Error: " + msg.err.Error()
		return a, nil

	case actionDoneMsg:
		a.message = msg.message
		return a, nil

	case tasksLoadedMsg, usersLoadedMsg, notificationsLoadedMsg:
		a.clampCursors()
		return a, nil

	case loginDoneMsg:
		a.mode = "dashboard"
		a.message = "Signed in as " + msg.user.Name
		return a, a.refreshAll()

	case loginFailedMsg:
		a.login.recordFailure()
		a.message = "Error: " + msg.err.Error()
		return a, nil
	}

	// Modal forms swallow input while open.
	if a.taskForm != nil {
		return a.updateTaskForm(msg)
	}
	if a.userForm != nil {
		return a.updateUserForm(msg)
	}

	if a.mode == "login" {
		return a.updateLogin(msg)
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		return a.handleKey(key)
	}
	return a, nil
}

func (a *App) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "ctrl+c", "q":
		return a, tea.Quit

	case "1":
		a.mode = "dashboard"
	case "2":
		a.mode = "board"
	case "3":
		a.mode = "calendar"
	case "4":
		if a.isAdmin() {
			a.mode = "users"
		} else {
			a.message = "Error: user administration is admin-only"
		}
	case "5":
		a.mode = "notifications"

	case "r":
		a.message = ""
		return a, a.refreshAll()

	case "ctrl+l":
		if err := a.session.Logout(); err != nil {
			a.message = "Error: " + err.Error()
			return a, nil
		}
		a.mode = "login"
		a.login = newLoginForm()
		return a, a.login.Init()

	default:
		switch a.mode {
		case "board":
			return a.handleBoardKey(key)
		case "calendar":
			return a.handleCalendarKey(key)
		case "users":
			return a.handleUsersKey(key)
		case "notifications":
			return a.handleNotificationsKey(key)
		case "dashboard":
			if key.String() == "n" {
				a.openTaskForm(nil)
			}
		}
	}
	return a, nil
}

func (a *App) isAdmin() bool {
	u := a.session.User()
	return u != nil && u.Role == models.RoleAdmin
}

// visibleTasks applies the signed-in user's role filter to the task cache.
func (a *App) visibleTasks() []models.Task {
	u := a.session.User()
	if u == nil {
		return nil
	}
	return a.tasks.VisibleTo(*u)
}

func (a *App) clampCursors() {
	cols := a.boardColumns()
	if a.board.col >= len(cols) {
		a.board.col = max(0, len(cols)-1)
	}
	if len(cols) > 0 && a.board.row >= len(cols[a.board.col].tasks) {
		a.board.row = max(0, len(cols[a.board.col].tasks)-1)
	}
	if n := len(a.users.Users()); a.userIdx >= n {
		a.userIdx = max(0, n-1)
	}
	if n := len(a.notifications.Notifications()); a.notifIdx >= n {
		a.notifIdx = max(0, n-1)
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if a.mode == "login" {
		return a.renderLogin()
	}

	var b strings.Builder

	user := a.session.User()
	who := "signed out"
	if user != nil {
		who = fmt.Sprintf("%s (%s)", user.Name, user.Role)
	}
	unread := a.notifications.UnreadCount()

	header := titleStyle.Render("TABLERO")
	header += "  " + mutedStyle.Render(who)
	if unread > 0 {
		header += "  " + errorStyle.Render(fmt.Sprintf("[%d unread]", unread))
	}
	b.WriteString(header + "\n")
	b.WriteString(strings.Repeat("─", max(a.width, 20)) + "\n")

	contentHeight := a.height - 6
	if contentHeight < 5 {
		contentHeight = 5
	}

	switch a.mode {
	case "dashboard":
		b.WriteString(a.renderDashboard(contentHeight))
	case "board":
		b.WriteString(a.renderBoard(contentHeight))
	case "calendar":
		b.WriteString(a.renderCalendar(contentHeight))
	case "users":
		b.WriteString(a.renderUsers(contentHeight))
	case "notifications":
		b.WriteString(a.renderNotifications(contentHeight))
	}

	if a.taskForm != nil {
		b.WriteString("\n" + modalStyle.Render(a.taskForm.View()))
	}
	if a.userForm != nil {
		b.WriteString("\n" + modalStyle.Render(a.userForm.View()))
	}

	if a.message != "" {
		style := okStyle
		if strings.HasPrefix(a.message, "Error") {
			style = errorStyle
		}
		b.WriteString("\n" + style.Render(a.message))
	}
	b.WriteString("\n")

	status := " 1:dashboard 2:board 3:calendar 4:users 5:inbox | r:refresh | Ctrl+L:logout | q:quit"
	b.WriteString(statusBarStyle.Width(max(a.width, len(status))).Render(status))

	return b.String()
}

func (a *App) renderNotifications(height int) string {
	notifs := a.notifications.Notifications()
	if a.notifications.Loading() {
		return "\n  Loading notifications...\n"
	}
	if len(notifs) == 0 {
		return "\n  Inbox empty.\n"
	}

	var lines []string
	for i, n := range notifs {
		marker := "●"
		style := lipgloss.NewStyle()
		if n.IsRead.Bool() {
			marker = " "
			style = mutedStyle
		}
		line := fmt.Sprintf(" %s %s  %s", marker, n.CreatedAt.Format("Jan 02 15:04"), n.Message)
		if i == a.notifIdx {
			lines = append(lines, selectedStyle.Render(line))
		} else {
			lines = append(lines, style.Render(line))
		}
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	return "\n" + strings.Join(lines, "\n") + "\n\n" + helpStyle.Render("  enter:mark read")
}

func (a *App) handleNotificationsKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	notifs := a.notifications.Notifications()
	switch key.String() {
	case "up", "k":
		if a.notifIdx > 0 {
			a.notifIdx--
		}
	case "down", "j":
		if a.notifIdx < len(notifs)-1 {
			a.notifIdx++
		}
	case "enter":
		if a.notifIdx < len(notifs) && !notifs[a.notifIdx].IsRead.Bool() {
			return a, a.markNotificationRead(notifs[a.notifIdx].ID)
		}
	}
	return a, nil
}
