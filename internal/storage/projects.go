package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

const projectColumns = `id, name, description, status, priority, budget, actual_cost,
	progress, subtasks, tags, start_date, end_date, created_at, updated_at`

func (s *Store) SaveProject(p Project) error {
	subtasks, tags, err := marshalProjectLists(p)
	if err != nil {
		return err
	}
	status := p.Status
	if status == "" {
		status = ProjectBacklog
	}
	_, err = s.db.Exec(`
		INSERT INTO projects (`+projectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, string(status), string(p.Priority),
		nullFloat(p.Budget), nullFloat(p.ActualCost), p.Progress, subtasks, tags,
		p.StartDate, p.EndDate, formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
	)
	return err
}

func (s *Store) GetProject(id string) (Project, error) {
	row := s.db.QueryRow(`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return Project{}, ErrNotFound
	}
	return p, err
}

func (s *Store) UpdateProject(p Project) error {
	subtasks, tags, err := marshalProjectLists(p)
	if err != nil {
		return err
	}
	res, err := s.db.Exec(`
		UPDATE projects SET name = ?, description = ?, status = ?, priority = ?,
			budget = ?, actual_cost = ?, progress = ?, subtasks = ?, tags = ?,
			start_date = ?, end_date = ?, updated_at = ?
		WHERE id = ?`,
		p.Name, p.Description, string(p.Status), string(p.Priority),
		nullFloat(p.Budget), nullFloat(p.ActualCost), p.Progress, subtasks, tags,
		p.StartDate, p.EndDate, formatTime(time.Now()),
		p.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) DeleteProject(id string) error {
	res, err := s.db.Exec(`DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) ListProjects() ([]Project, error) {
	rows, err := s.db.Query(`SELECT ` + projectColumns + ` FROM projects ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// CountStalledProjects counts projects on hold.
func (s *Store) CountStalledProjects() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM projects WHERE status = 'on-hold'`).Scan(&n)
	return n, err
}

func marshalProjectLists(p Project) (subtasks, tags string, err error) {
	subtasks, err = marshalJSONList(p.Subtasks)
	if err != nil {
		return "", "", err
	}
	tags, err = marshalJSONList(p.Tags)
	if err != nil {
		return "", "", err
	}
	return subtasks, tags, nil
}

func scanProject(row rowScanner) (Project, error) {
	var p Project
	var status, priority, subtasks, tags, createdAt, updatedAt string
	var budget, actualCost sql.NullFloat64

	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &status, &priority, &budget, &actualCost,
		&p.Progress, &subtasks, &tags, &p.StartDate, &p.EndDate, &createdAt, &updatedAt,
	)
	if err != nil {
		return Project{}, err
	}

	p.Status = ProjectStatus(status)
	p.Priority = TaskPriority(priority)
	p.Budget = floatPtr(budget)
	p.ActualCost = floatPtr(actualCost)
	p.Tags = unmarshalStrings(tags)
	if subtasks != "" && subtasks != "[]" {
		if err := json.Unmarshal([]byte(subtasks), &p.Subtasks); err != nil {
			return Project{}, fmt.Errorf("parsing subtasks: %w", err)
		}
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return Project{}, fmt.Errorf("parsing created_at: %w", err)
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return Project{}, fmt.Errorf("parsing updated_at: %w", err)
	}
	return p, nil
}
