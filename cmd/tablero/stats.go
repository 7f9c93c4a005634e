package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tablerohq/tablero/internal/models"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show task and user statistics",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	metrics, err := client.Tasks().Metrics(ctx)
	if err != nil {
		return err
	}
	stats, err := client.Dashboard().Stats(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Tasks: %d total, %d completed, %d in progress, %d pending, %d overdue\n",
		metrics.TotalTasks, metrics.CompletedTasks, metrics.InProgressTasks,
		metrics.PendingTasks, metrics.OverdueTasks)
	fmt.Printf("Users: %d total, %d active\n", metrics.TotalUsers, metrics.ActiveUsers)
	fmt.Printf("Completion rate: %.0f%%\n\n", metrics.CompletionRate*100)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STATUS\tCOUNT")
	for _, s := range models.TaskStatuses {
		fmt.Fprintf(w, "%s\t%d\n", s, stats.TasksByStatus[s])
	}
	if n := stats.TasksByStatus[models.TaskStatusCancelled]; n > 0 {
		fmt.Fprintf(w, "%s\t%d\n", models.TaskStatusCancelled, n)
	}
	w.Flush()
	return nil
}
