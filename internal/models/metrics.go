package models

import "time"

// ComputeMetrics aggregates counts over the given collections. Overdue
// means the due date passed without the task completing.
func ComputeMetrics(tasks []Task, users []User, now time.Time) TaskMetrics {
	m := TaskMetrics{
		TotalTasks: len(tasks),
		TotalUsers: len(users),
	}
	for _, t := range tasks {
		switch t.Status {
		case TaskStatusCompleted:
			m.CompletedTasks++
		case TaskStatusInProgress:
			m.InProgressTasks++
		case TaskStatusPending:
			m.PendingTasks++
		}
		if t.Overdue(now) {
			m.OverdueTasks++
		}
	}
	for _, u := range users {
		if u.Status == UserActive {
			m.ActiveUsers++
		}
	}
	if m.TotalTasks > 0 {
		m.CompletionRate = float64(m.CompletedTasks) / float64(m.TotalTasks)
	}
	return m
}

// ComputeDashboardStats buckets tasks and users for the dashboard report.
func ComputeDashboardStats(tasks []Task, users []User) DashboardStats {
	stats := DashboardStats{
		TasksByStatus:   make(map[TaskStatus]int),
		TasksByPriority: make(map[TaskPriority]int),
		UsersByRole:     make(map[Role]int),
		TotalTasks:      len(tasks),
		TotalUsers:      len(users),
	}
	for _, t := range tasks {
		stats.TasksByStatus[t.Status]++
		stats.TasksByPriority[t.Priority]++
	}
	for _, u := range users {
		stats.UsersByRole[u.Role]++
	}
	return stats
}
