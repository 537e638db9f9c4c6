package storage

import (
	"database/sql"
	"fmt"
)

const taskColumns = `id, title, category, priority, status, due_date, recurrence,
	completed_date, actual_cost, notes, created_at`

func (s *Store) SaveMaintenanceTask(t MaintenanceTask) error {
	status := t.Status
	if status == "" {
		status = TaskPending
	}
	priority := t.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	recurrence := t.Recurrence
	if recurrence == "" {
		recurrence = RecurNone
	}
	_, err := s.db.Exec(`
		INSERT INTO maintenance_tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Category, string(priority), string(status), t.DueDate,
		string(recurrence), t.CompletedDate, nullFloat(t.ActualCost), t.Notes,
		formatTime(t.CreatedAt),
	)
	return err
}

func (s *Store) GetMaintenanceTask(id string) (MaintenanceTask, error) {
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM maintenance_tasks WHERE id = ?`, id)
	t, err := scanMaintenanceTask(row)
	if err == sql.ErrNoRows {
		return MaintenanceTask{}, ErrNotFound
	}
	return t, err
}

func (s *Store) DeleteMaintenanceTask(id string) error {
	res, err := s.db.Exec(`DELETE FROM maintenance_tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// CompleteMaintenanceTask marks a pending task completed; completing an
// already-completed task is a no-op reported as ErrNotFound because the
// lifecycle is terminal.
func (s *Store) CompleteMaintenanceTask(id, completedDate string, actualCost *float64) error {
	res, err := s.db.Exec(`
		UPDATE maintenance_tasks SET status = 'completed', completed_date = ?, actual_cost = ?
		WHERE id = ? AND status = 'pending'`,
		completedDate, nullFloat(actualCost), id,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) ListMaintenanceTasks() ([]MaintenanceTask, error) {
	rows, err := s.db.Query(`SELECT ` + taskColumns + ` FROM maintenance_tasks ORDER BY due_date ASC, created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []MaintenanceTask
	for rows.Next() {
		t, err := scanMaintenanceTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// ListPendingTasks returns pending tasks ordered by due date ascending.
func (s *Store) ListPendingTasks() ([]MaintenanceTask, error) {
	rows, err := s.db.Query(`
		SELECT ` + taskColumns + ` FROM maintenance_tasks
		WHERE status = 'pending' ORDER BY due_date ASC, created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []MaintenanceTask
	for rows.Next() {
		t, err := scanMaintenanceTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// CountPendingOverdue counts pending tasks with a due date strictly before today.
func (s *Store) CountPendingOverdue(today string) (int, error) {
	var n int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM maintenance_tasks
		WHERE status = 'pending' AND due_date <> '' AND due_date < ?`, today).Scan(&n)
	return n, err
}

func scanMaintenanceTask(row rowScanner) (MaintenanceTask, error) {
	var t MaintenanceTask
	var priority, status, recurrence, createdAt string
	var actualCost sql.NullFloat64

	err := row.Scan(
		&t.ID, &t.Title, &t.Category, &priority, &status, &t.DueDate, &recurrence,
		&t.CompletedDate, &actualCost, &t.Notes, &createdAt,
	)
	if err != nil {
		return MaintenanceTask{}, err
	}

	t.Priority = TaskPriority(priority)
	t.Status = TaskStatus(status)
	t.Recurrence = Recurrence(recurrence)
	t.ActualCost = floatPtr(actualCost)
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return MaintenanceTask{}, fmt.Errorf("parsing created_at: %w", err)
	}
	return t, nil
}
