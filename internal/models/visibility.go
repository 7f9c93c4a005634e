package models

// CanViewTask reports whether a user may see a task. Admins and managers see
// everything; collaborators see tasks assigned to them; clients see tasks
// they requested. Kept as a pure predicate so authorization can be tested
// without any view attached.
func CanViewTask(u User, t Task) bool {
	switch u.Role {
	case RoleAdmin, RoleManager:
		return true
	case RoleCollaborator:
		return t.AssignedTo == u.ID
	case RoleClient:
		return t.AssignedBy == u.ID
	}
	return false
}

// VisibleTasks filters tasks down to those the user may see, preserving
// order.
func VisibleTasks(u User, tasks []Task) []Task {
	var out []Task
	for _, t := range tasks {
		if CanViewTask(u, t) {
			out = append(out, t)
		}
	}
	return out
}

// CanManageUsers reports whether the user may administer other accounts.
func CanManageUsers(u User) bool {
	return u.Role == RoleAdmin
}

// CanEditTask reports whether a user may modify a task. Clients are
// read-only; everyone else with visibility can edit. Status transitions are
// deliberately unguarded beyond this: any editor may set any status.
func CanEditTask(u User, t Task) bool {
	if u.Role == RoleClient {
		return false
	}
	return CanViewTask(u, t)
}
