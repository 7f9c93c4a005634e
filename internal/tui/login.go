package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	// maxLoginFailures locks the form after this many bad attempts.
	maxLoginFailures = 3
	// loginCooldown is how long the form stays locked. The lockout lives
	// in the view, not the session holder.
	loginCooldown = 30 * time.Second
)

// loginForm is the sign-in screen state.
type loginForm struct {
	email    textinput.Model
	password textinput.Model
	focus    int
	failures int
	lockedAt time.Time
}

func newLoginForm() *loginForm {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 128
	email.Width = 40
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.Width = 40
	password.EchoMode = textinput.EchoPassword

	return &loginForm{email: email, password: password}
}

func (f *loginForm) Init() tea.Cmd {
	return textinput.Blink
}

func (f *loginForm) locked() (bool, time.Duration) {
	if f.failures < maxLoginFailures {
		return false, 0
	}
	remaining := loginCooldown - time.Since(f.lockedAt)
	if remaining <= 0 {
		f.failures = 0
		return false, 0
	}
	return true, remaining
}

func (f *loginForm) recordFailure() {
	f.failures++
	if f.failures >= maxLoginFailures {
		f.lockedAt = time.Now()
	}
}

func (a *App) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c":
			return a, tea.Quit

		case "tab", "down", "up":
			a.login.focus = (a.login.focus + 1) % 2
			if a.login.focus == 0 {
				a.login.email.Focus()
				a.login.password.Blur()
			} else {
				a.login.password.Focus()
				a.login.email.Blur()
			}
			return a, nil

		case "enter":
			if locked, _ := a.login.locked(); locked {
				return a, nil
			}
			email := strings.TrimSpace(a.login.email.Value())
			password := a.login.password.Value()
			if email == "" || password == "" {
				a.message = "Error: email and password required"
				return a, nil
			}
			a.message = "Signing in..."
			return a, a.doLogin(email, password)
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.login.email, cmd = a.login.email.Update(msg)
	cmds = append(cmds, cmd)
	a.login.password, cmd = a.login.password.Update(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

func (a *App) renderLogin() string {
	var b strings.Builder
	b.WriteString("\n" + titleStyle.Render("TABLERO") + mutedStyle.Render("  sign in") + "\n\n")
	b.WriteString("  " + a.login.email.View() + "\n")
	b.WriteString("  " + a.login.password.View() + "\n\n")

	if locked, remaining := a.login.locked(); locked {
		b.WriteString(errorStyle.Render(fmt.Sprintf("  Too many attempts. Try again in %ds.", int(remaining.Seconds()+1))) + "\n")
	} else if a.message != "" {
		style := mutedStyle
		if strings.HasPrefix(a.message, "Error") {
			style = errorStyle
		}
		b.WriteString(style.Render("  "+a.message) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("  tab:switch field enter:sign in Ctrl+C:quit"))
	return b.String()
}
