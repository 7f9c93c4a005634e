package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tablerohq/tablero/internal/models"
)

var taskTypes = []models.TaskType{
	models.TaskTypeDevelopment,
	models.TaskTypeAgent,
	models.TaskTypeSupport,
	models.TaskTypePQR,
	models.TaskTypeConsulting,
	models.TaskTypeTraining,
}

var taskPriorities = []models.TaskPriority{
	models.PriorityLow,
	models.PriorityMedium,
	models.PriorityHigh,
	models.PriorityUrgent,
}

// taskForm is the create/edit dialog for tasks. Which mode it is in comes
// from the modal state: a nil editing pointer means create.
type taskForm struct {
	inputs   []textinput.Model // title, description, client, assignee, due date, estimated hours
	focus    int
	typeIdx  int
	prioIdx  int
	tagsLine string
}

const (
	fieldTitle = iota
	fieldDescription
	fieldClient
	fieldAssignee
	fieldDueDate
	fieldEstimated
	fieldTags
	taskFieldCount
)

func newTaskForm(task *models.Task) *taskForm {
	labels := []string{"title", "description", "client", "assignee id", "due date (2006-01-02)", "estimated hours", "tags (comma separated)"}
	f := &taskForm{inputs: make([]textinput.Model, taskFieldCount), prioIdx: 1}
	for i := range f.inputs {
		in := textinput.New()
		in.Placeholder = labels[i]
		in.CharLimit = 256
		in.Width = 48
		f.inputs[i] = in
	}
	f.inputs[0].Focus()

	if task != nil {
		f.inputs[fieldTitle].SetValue(task.Title)
		f.inputs[fieldDescription].SetValue(task.Description)
		f.inputs[fieldClient].SetValue(task.Client)
		f.inputs[fieldAssignee].SetValue(task.AssignedTo)
		if task.EndDate != nil {
			f.inputs[fieldDueDate].SetValue(task.EndDate.Format("2006-01-02"))
		}
		f.inputs[fieldEstimated].SetValue(strconv.FormatFloat(task.EstimatedHours, 'f', -1, 64))
		f.inputs[fieldTags].SetValue(strings.Join(task.Tags, ", "))
		for i, tt := range taskTypes {
			if tt == task.Type {
				f.typeIdx = i
			}
		}
		for i, p := range taskPriorities {
			if p == task.Priority {
				f.prioIdx = i
			}
		}
	}
	return f
}

func (a *App) openTaskForm(task *models.Task) {
	a.taskModal.Open(task)
	a.taskForm = newTaskForm(task)
}

func (a *App) closeTaskForm() {
	a.taskModal.Close()
	a.taskForm = nil
}

func (a *App) updateTaskForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	f := a.taskForm

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			a.closeTaskForm()
			return a, nil
		case "ctrl+c":
			return a, tea.Quit
		case "tab", "down":
			f.setFocus((f.focus + 1) % taskFieldCount)
			return a, nil
		case "shift+tab", "up":
			f.setFocus((f.focus + taskFieldCount - 1) % taskFieldCount)
			return a, nil
		case "ctrl+t":
			f.typeIdx = (f.typeIdx + 1) % len(taskTypes)
			return a, nil
		case "ctrl+p":
			f.prioIdx = (f.prioIdx + 1) % len(taskPriorities)
			return a, nil
		case "enter":
			return a.submitTaskForm()
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return a, cmd
}

func (f *taskForm) setFocus(idx int) {
	f.inputs[f.focus].Blur()
	f.focus = idx
	f.inputs[f.focus].Focus()
}

func (f *taskForm) parse() (title, description, client, assignee string, due *time.Time, estimated float64, tags []string, err error) {
	title = strings.TrimSpace(f.inputs[fieldTitle].Value())
	if title == "" {
		err = fmt.Errorf("title required")
		return
	}
	description = strings.TrimSpace(f.inputs[fieldDescription].Value())
	client = strings.TrimSpace(f.inputs[fieldClient].Value())
	assignee = strings.TrimSpace(f.inputs[fieldAssignee].Value())

	if v := strings.TrimSpace(f.inputs[fieldDueDate].Value()); v != "" {
		d, perr := time.ParseInLocation("2006-01-02", v, time.Local)
		if perr != nil {
			err = fmt.Errorf("due date must look like 2006-01-02")
			return
		}
		due = &d
	}
	if v := strings.TrimSpace(f.inputs[fieldEstimated].Value()); v != "" {
		estimated, err = strconv.ParseFloat(v, 64)
		if err != nil || estimated < 0 {
			err = fmt.Errorf("estimated hours must be a non-negative number")
			return
		}
	}
	for _, tag := range strings.Split(f.inputs[fieldTags].Value(), ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return
}

func (a *App) submitTaskForm() (tea.Model, tea.Cmd) {
	f := a.taskForm
	title, description, client, assignee, due, estimated, tags, err := f.parse()
	if err != nil {
		a.message = "Error: " + err.Error()
		return a, nil
	}

	editing := a.taskModal.Editing()
	taskType := taskTypes[f.typeIdx]
	priority := taskPriorities[f.prioIdx]
	a.closeTaskForm()

	if editing == nil {
		draft := models.TaskDraft{
			Title:          title,
			Description:    description,
			Type:           taskType,
			Priority:       priority,
			AssignedTo:     assignee,
			Client:         client,
			EndDate:        due,
			EstimatedHours: estimated,
			Tags:           tags,
		}
		return a, func() tea.Msg {
			if _, err := a.tasks.Create(context.Background(), draft); err != nil {
				return errMsg{err}
			}
			return actionDoneMsg{"Task created"}
		}
	}

	id := editing.ID
	patch := models.TaskPatch{
		Title:          &title,
		Description:    &description,
		Type:           &taskType,
		Priority:       &priority,
		AssignedTo:     &assignee,
		Client:         &client,
		EndDate:        due,
		EstimatedHours: &estimated,
		Tags:           tags,
	}
	return a, func() tea.Msg {
		if err := a.tasks.Update(context.Background(), id, patch); err != nil {
			return errMsg{err}
		}
		return actionDoneMsg{"Task updated"}
	}
}

func (f *taskForm) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Task") + "\n")
	for _, in := range f.inputs {
		b.WriteString(in.View() + "\n")
	}
	b.WriteString(fmt.Sprintf("type: %s (Ctrl+T)   priority: %s (Ctrl+P)\n",
		taskTypes[f.typeIdx], priorityStyle(string(taskPriorities[f.prioIdx])).Render(string(taskPriorities[f.prioIdx]))))
	b.WriteString(helpStyle.Render("enter:save esc:cancel"))
	return b.String()
}
