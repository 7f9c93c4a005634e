package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/tablerohq/tablero/internal/api"
	"github.com/tablerohq/tablero/internal/models"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE:  runTaskList,
}

var taskAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new task",
	RunE:  runTaskAdd,
}

var taskShowCmd = &cobra.Command{
	Use:   "show [task-id]",
	Short: "Show task details",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskShow,
}

var taskMoveCmd = &cobra.Command{
	Use:   "move [task-id] [status]",
	Short: "Move a task to another status",
	Args:  cobra.ExactArgs(2),
	RunE:  runTaskMove,
}

var taskDoneCmd = &cobra.Command{
	Use:   "done [task-id]",
	Short: "Mark a task completed",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskDone,
}

var taskRmCmd = &cobra.Command{
	Use:   "rm [task-id]",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskRm,
}

var (
	taskTitle    string
	taskDesc     string
	taskType     string
	taskPriority string
	taskAssignee string
	taskClient   string
	taskDue      string
	taskHours    float64
	taskTags     string
	taskStatus   string
	taskPage     int
)

func init() {
	taskCmd.AddCommand(taskListCmd, taskAddCmd, taskShowCmd, taskMoveCmd, taskDoneCmd, taskRmCmd)

	taskAddCmd.Flags().StringVar(&taskTitle, "title", "", "Task title (required)")
	taskAddCmd.Flags().StringVar(&taskDesc, "desc", "", "Task description")
	taskAddCmd.Flags().StringVar(&taskType, "type", "development", "Task type (development, agent, support, pqr, consulting, training)")
	taskAddCmd.Flags().StringVar(&taskPriority, "priority", "medium", "Priority (low, medium, high, urgent)")
	taskAddCmd.Flags().StringVar(&taskAssignee, "assign", "", "Assignee user ID")
	taskAddCmd.Flags().StringVar(&taskClient, "client", "", "Client name")
	taskAddCmd.Flags().StringVar(&taskDue, "due", "", "Due date (YYYY-MM-DD)")
	taskAddCmd.Flags().Float64Var(&taskHours, "hours", 0, "Estimated hours")
	taskAddCmd.Flags().StringVar(&taskTags, "tags", "", "Comma-separated tags")
	taskAddCmd.MarkFlagRequired("title")

	taskListCmd.Flags().StringVar(&taskStatus, "status", "", "Filter by status (pending, in_progress, in_review, completed, cancelled)")
	taskListCmd.Flags().IntVar(&taskPage, "page", 1, "Page number")
}

func cmdContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 15*time.Second)
}

func runTaskList(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	page, err := client.Tasks().List(ctx, api.ListOptions{
		Status: models.TaskStatus(taskStatus),
		Page:   taskPage,
	})
	if err != nil {
		return err
	}

	if len(page.Data) == 0 {
		fmt.Println("No tasks found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPRIORITY\tASSIGNED TO\tDUE")
	for _, t := range page.Data {
		due := "-"
		if t.EndDate != nil {
			due = t.EndDate.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			truncateID(t.ID), truncate(t.Title, 40), t.Status, t.Priority, truncateID(t.AssignedTo), due)
	}
	w.Flush()

	fmt.Printf("\nPage %d (%d total)\n", page.Page, page.Total)
	return nil
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	draft := models.TaskDraft{
		Title:          taskTitle,
		Description:    taskDesc,
		Type:           models.TaskType(taskType),
		Priority:       models.TaskPriority(taskPriority),
		AssignedTo:     taskAssignee,
		Client:         taskClient,
		EstimatedHours: taskHours,
	}
	if taskDue != "" {
		due, err := time.Parse("2006-01-02", taskDue)
		if err != nil {
			return fmt.Errorf("invalid due date %q (want YYYY-MM-DD)", taskDue)
		}
		draft.EndDate = &due
	}
	if taskTags != "" {
		for _, tag := range strings.Split(taskTags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				draft.Tags = append(draft.Tags, tag)
			}
		}
	}

	ctx, cancel := cmdContext()
	defer cancel()

	task, err := client.Tasks().Create(ctx, draft)
	if err != nil {
		return err
	}

	fmt.Printf("Created task: %s\n", task.ID)
	return nil
}

func runTaskShow(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	t, err := client.Tasks().Get(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("ID:          %s\n", t.ID)
	fmt.Printf("Title:       %s\n", t.Title)
	fmt.Printf("Status:      %s\n", t.Status)
	fmt.Printf("Type:        %s\n", t.Type)
	fmt.Printf("Priority:    %s\n", t.Priority)
	fmt.Printf("Assigned to: %s\n", t.AssignedTo)
	fmt.Printf("Assigned by: %s\n", t.AssignedBy)
	if t.Client != "" {
		fmt.Printf("Client:      %s\n", t.Client)
	}
	if t.EndDate != nil {
		fmt.Printf("Due:         %s\n", t.EndDate.Format("2006-01-02"))
	}
	fmt.Printf("Hours:       %.1f estimated, %.1f actual\n", t.EstimatedHours, t.ActualHours)
	if len(t.Tags) > 0 {
		fmt.Printf("Tags:        %s\n", strings.Join(t.Tags, ", "))
	}
	if t.Description != "" {
		fmt.Printf("\n%s\n", t.Description)
	}
	return nil
}

func runTaskMove(cmd *cobra.Command, args []string) error {
	status := models.TaskStatus(args[1])
	if !status.Valid() {
		return fmt.Errorf("unknown status %q", args[1])
	}
	return patchStatus(args[0], status)
}

func runTaskDone(cmd *cobra.Command, args []string) error {
	return patchStatus(args[0], models.TaskStatusCompleted)
}

func patchStatus(id string, status models.TaskStatus) error {
	ctx, cancel := cmdContext()
	defer cancel()

	t, err := client.Tasks().Update(ctx, id, models.TaskPatch{Status: &status})
	if err != nil {
		return err
	}
	fmt.Printf("Task %s is now %s\n", truncateID(t.ID), t.Status)
	return nil
}

func runTaskRm(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	if err := client.Tasks().Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted task %s\n", truncateID(args[0]))
	return nil
}

// truncateID shortens a UUID for table display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
