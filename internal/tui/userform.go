package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tablerohq/tablero/internal/models"
)

var roles = []models.Role{
	models.RoleAdmin,
	models.RoleManager,
	models.RoleCollaborator,
	models.RoleClient,
}

// userForm is the create/edit dialog for accounts. Create mode registers a
// new user and therefore asks for a password; edit mode does not.
type userForm struct {
	inputs  []textinput.Model // name, email, department, company, phone, password
	focus   int
	roleIdx int
}

const (
	ufName = iota
	ufEmail
	ufDepartment
	ufCompany
	ufPhone
	ufPassword
	userFieldCount
)

func newUserForm(user *models.User) *userForm {
	labels := []string{"name", "email", "department", "company", "phone (+57...)", "password"}
	f := &userForm{inputs: make([]textinput.Model, userFieldCount), roleIdx: 2}
	for i := range f.inputs {
		in := textinput.New()
		in.Placeholder = labels[i]
		in.CharLimit = 128
		in.Width = 40
		f.inputs[i] = in
	}
	f.inputs[ufPassword].EchoMode = textinput.EchoPassword
	f.inputs[0].Focus()

	if user != nil {
		f.inputs[ufName].SetValue(user.Name)
		f.inputs[ufEmail].SetValue(user.Email)
		f.inputs[ufDepartment].SetValue(user.Department)
		f.inputs[ufCompany].SetValue(user.Company)
		f.inputs[ufPhone].SetValue(user.Phone)
		for i, r := range roles {
			if r == user.Role {
				f.roleIdx = i
			}
		}
	}
	return f
}

func (a *App) openUserForm(user *models.User) {
	a.userModal.Open(user)
	a.userForm = newUserForm(user)
}

func (a *App) closeUserForm() {
	a.userModal.Close()
	a.userForm = nil
}

func (a *App) updateUserForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	f := a.userForm

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			a.closeUserForm()
			return a, nil
		case "ctrl+c":
			return a, tea.Quit
		case "tab", "down":
			f.setFocus((f.focus + 1) % userFieldCount)
			return a, nil
		case "shift+tab", "up":
			f.setFocus((f.focus + userFieldCount - 1) % userFieldCount)
			return a, nil
		case "ctrl+r":
			f.roleIdx = (f.roleIdx + 1) % len(roles)
			return a, nil
		case "enter":
			return a.submitUserForm()
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return a, cmd
}

func (f *userForm) setFocus(idx int) {
	f.inputs[f.focus].Blur()
	f.focus = idx
	f.inputs[f.focus].Focus()
}

func (a *App) submitUserForm() (tea.Model, tea.Cmd) {
	f := a.userForm
	name := strings.TrimSpace(f.inputs[ufName].Value())
	email := strings.TrimSpace(f.inputs[ufEmail].Value())
	department := strings.TrimSpace(f.inputs[ufDepartment].Value())
	company := strings.TrimSpace(f.inputs[ufCompany].Value())
	phone := strings.TrimSpace(f.inputs[ufPhone].Value())
	password := f.inputs[ufPassword].Value()
	role := roles[f.roleIdx]

	if name == "" || !models.ValidEmail(email) {
		a.message = "Error: name and a valid email are required"
		return a, nil
	}
	if !models.ValidPhone(phone) {
		a.message = "Error: phone must include a country code"
		return a, nil
	}

	editing := a.userModal.Editing()
	if editing == nil && password == "" {
		a.message = "Error: password required for a new account"
		return a, nil
	}
	a.closeUserForm()

	if editing == nil {
		draft := models.UserDraft{
			Name:       name,
			Email:      email,
			Password:   password,
			Role:       role,
			Department: department,
			Company:    company,
			Phone:      phone,
		}
		return a, func() tea.Msg {
			if _, err := a.users.Create(context.Background(), draft); err != nil {
				return errMsg{err}
			}
			return actionDoneMsg{"User registered"}
		}
	}

	id := editing.ID
	patch := models.UserPatch{
		Name:       &name,
		Email:      &email,
		Role:       &role,
		Department: &department,
		Company:    &company,
		Phone:      &phone,
	}
	return a, func() tea.Msg {
		if err := a.users.Update(context.Background(), id, patch); err != nil {
			return errMsg{err}
		}
		return actionDoneMsg{"User updated"}
	}
}

func (f *userForm) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("User") + "\n")
	for _, in := range f.inputs {
		b.WriteString(in.View() + "\n")
	}
	b.WriteString(fmt.Sprintf("role: %s (Ctrl+R)\n", roles[f.roleIdx]))
	b.WriteString(helpStyle.Render("enter:save esc:cancel"))
	return b.String()
}
