package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"techcorp/internal/models"
)

const projectColumns = `id, name, description, status, progress, start_date, team_size, created_at, updated_at`

func scanProject(row scanner) (models.Project, error) {
	var p models.Project
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Status, &p.Progress, &p.StartDate, &p.TeamSize, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return models.Project{}, err
	}
	return p, nil
}

// ListProjects retrieves all projects, newest first.
func (s *Store) ListProjects(ctx context.Context) (projects []models.Project, err error) {
	defer s.observe("projects", "select", &err)

	rows, err := s.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	projects, err = collect(rows, scanProject)
	if err != nil {
		return nil, fmt.Errorf("scan project: %w", err)
	}
	return projects, nil
}

// GetProject fetches a single project by id.
func (s *Store) GetProject(ctx context.Context, id string) (models.Project, error) {
	p, err := scanProject(s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Project{}, fmt.Errorf("project %w", ErrNotFound)
	}
	if err != nil {
		return models.Project{}, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// CreateProject persists a new project. Status, start date and team size fall
// back to in-progress, today and one member.
func (s *Store) CreateProject(ctx context.Context, in models.ProjectInput) (p models.Project, err error) {
	defer s.observe("projects", "insert", &err)

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Project{}, fmt.Errorf("project name must not be empty")
	}
	teamSize := in.TeamSize
	if teamSize < 1 {
		teamSize = 1
	}
	status := orDefault(in.Status, models.ProjectInProgress)
	if err := checkEnum(models.ValidProjectStatuses, "project status", status); err != nil {
		return models.Project{}, err
	}

	id := newID()
	now := s.timestamp()
	_, err = s.db.ExecContext(ctx, `INSERT INTO projects(id, name, description, status, progress, start_date, team_size, created_at, updated_at)
        VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, name, strings.TrimSpace(in.Description), status, in.Progress,
		orDefault(in.StartDate, s.today()), teamSize, now, now)
	if err != nil {
		return models.Project{}, fmt.Errorf("insert project: %w", err)
	}
	return s.GetProject(ctx, id)
}

// UpdateProject applies the non-nil patch fields and stamps updated_at.
func (s *Store) UpdateProject(ctx context.Context, id string, patch models.ProjectPatch) (p models.Project, err error) {
	defer s.observe("projects", "update", &err)

	current, err := s.GetProject(ctx, id)
	if err != nil {
		return models.Project{}, err
	}

	if patch.Name != nil {
		if v := strings.TrimSpace(*patch.Name); v != "" {
			current.Name = v
		}
	}
	if patch.Description != nil {
		current.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Status != nil && *patch.Status != "" {
		current.Status = *patch.Status
	}
	if patch.Progress != nil {
		current.Progress = *patch.Progress
	}
	if patch.StartDate != nil && *patch.StartDate != "" {
		current.StartDate = *patch.StartDate
	}
	if patch.TeamSize != nil && *patch.TeamSize > 0 {
		current.TeamSize = *patch.TeamSize
	}
	if err := checkEnum(models.ValidProjectStatuses, "project status", current.Status); err != nil {
		return models.Project{}, err
	}

	_, err = s.db.ExecContext(ctx, `UPDATE projects SET name = ?, description = ?, status = ?, progress = ?, start_date = ?, team_size = ?, updated_at = ? WHERE id = ?`,
		current.Name, current.Description, current.Status, current.Progress, current.StartDate, current.TeamSize, s.timestamp(), id)
	if err != nil {
		return models.Project{}, fmt.Errorf("update project: %w", err)
	}
	return s.GetProject(ctx, id)
}

// DeleteProject removes a project by id.
func (s *Store) DeleteProject(ctx context.Context, id string) (err error) {
	defer s.observe("projects", "delete", &err)
	return s.deleteByID(ctx, "projects", "project", id)
}
