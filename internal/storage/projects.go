package storage

import (
	"database/sql"
	"time"
)

// Project groups an ordered set of tracks into one mix.
type Project struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateProject inserts a new project row.
func (d *DB) CreateProject(id, name string) error {
	_, err := d.db.Exec(`
		INSERT INTO projects (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, updated_at = CURRENT_TIMESTAMP
	`, id, name)
	return err
}

// GetProject retrieves a project by ID.
func (d *DB) GetProject(id string) (*Project, error) {
	p := &Project{}
	var name sql.NullString
	var createdAt, updatedAt string

	row := d.db.QueryRow(`SELECT id, name, created_at, updated_at FROM projects WHERE id = ?`, id)
	if err := row.Scan(&p.ID, &name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if name.Valid {
		p.Name = name.String
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return p, nil
}

// SetProjectOrder replaces a project's track ordering atomically.
func (d *DB) SetProjectOrder(projectID string, trackIDs []int64) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM project_tracks WHERE project_id = ?`, projectID); err != nil {
		return err
	}
	for i, trackID := range trackIDs {
		if _, err := tx.Exec(`
			INSERT INTO project_tracks (project_id, track_id, position) VALUES (?, ?, ?)
		`, projectID, trackID, i); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetProjectOrder returns a project's track IDs in running order.
func (d *DB) GetProjectOrder(projectID string) ([]int64, error) {
	rows, err := d.db.Query(`
		SELECT track_id FROM project_tracks WHERE project_id = ? ORDER BY position ASC
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
