package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"techcorp/internal/models"
)

const backlogColumns = `id, sprint_id, title, description, story_points, priority, status, created_at, updated_at`

func scanBacklogItem(row scanner) (models.BacklogItem, error) {
	var b models.BacklogItem
	err := row.Scan(&b.ID, &b.SprintID, &b.Title, &b.Description, &b.StoryPoints, &b.Priority, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return models.BacklogItem{}, err
	}
	return b, nil
}

// ListBacklogItems returns the backlog of a sprint, newest first.
func (s *Store) ListBacklogItems(ctx context.Context, sprintID string) (items []models.BacklogItem, err error) {
	defer s.observe("backlog_items", "select", &err)

	rows, err := s.db.QueryContext(ctx, `SELECT `+backlogColumns+` FROM backlog_items WHERE sprint_id = ? ORDER BY created_at DESC, rowid DESC`, sprintID)
	if err != nil {
		return nil, fmt.Errorf("list backlog items: %w", err)
	}
	items, err = collect(rows, scanBacklogItem)
	if err != nil {
		return nil, fmt.Errorf("scan backlog item: %w", err)
	}
	return items, nil
}

// GetBacklogItem fetches a single backlog item by id.
func (s *Store) GetBacklogItem(ctx context.Context, id string) (models.BacklogItem, error) {
	b, err := scanBacklogItem(s.db.QueryRowContext(ctx, `SELECT `+backlogColumns+` FROM backlog_items WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.BacklogItem{}, fmt.Errorf("backlog item %w", ErrNotFound)
	}
	if err != nil {
		return models.BacklogItem{}, fmt.Errorf("get backlog item: %w", err)
	}
	return b, nil
}

// CreateBacklogItem inserts a new backlog item into its sprint.
func (s *Store) CreateBacklogItem(ctx context.Context, in models.BacklogItemInput) (b models.BacklogItem, err error) {
	defer s.observe("backlog_items", "insert", &err)

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.BacklogItem{}, fmt.Errorf("backlog item title must not be empty")
	}
	if err := models.ValidateBacklogItem(in); err != nil {
		return models.BacklogItem{}, err
	}
	points := in.StoryPoints
	if points == 0 {
		points = models.StoryPointScale[0]
	}
	status := in.Status
	if status == "" {
		status = models.BacklogTodo
	}

	id := newID()
	now := s.timestamp()
	_, err = s.db.ExecContext(ctx, `INSERT INTO backlog_items(id, sprint_id, title, description, story_points, priority, status, created_at, updated_at)
        VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, in.SprintID, title, strings.TrimSpace(in.Description), points, orDefault(in.Priority, models.DefaultPriority), string(status), now, now)
	if err != nil {
		return models.BacklogItem{}, fmt.Errorf("insert backlog item: %w", err)
	}
	return s.GetBacklogItem(ctx, id)
}

// UpdateBacklogItem applies the non-nil patch fields and stamps updated_at.
func (s *Store) UpdateBacklogItem(ctx context.Context, id string, patch models.BacklogItemPatch) (b models.BacklogItem, err error) {
	defer s.observe("backlog_items", "update", &err)

	current, err := s.GetBacklogItem(ctx, id)
	if err != nil {
		return models.BacklogItem{}, err
	}

	if patch.Title != nil {
		if v := strings.TrimSpace(*patch.Title); v != "" {
			current.Title = v
		}
	}
	if patch.Description != nil {
		current.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.StoryPoints != nil {
		if !models.ValidStoryPoints(*patch.StoryPoints) {
			return models.BacklogItem{}, fmt.Errorf("story points %d not on scale", *patch.StoryPoints)
		}
		current.StoryPoints = *patch.StoryPoints
	}
	if patch.Priority != nil && *patch.Priority != "" {
		current.Priority = *patch.Priority
	}
	if patch.Status != nil && *patch.Status != "" {
		current.Status = *patch.Status
	}

	_, err = s.db.ExecContext(ctx, `UPDATE backlog_items SET title = ?, description = ?, story_points = ?, priority = ?, status = ?, updated_at = ? WHERE id = ?`,
		current.Title, current.Description, current.StoryPoints, current.Priority, string(current.Status), s.timestamp(), id)
	if err != nil {
		return models.BacklogItem{}, fmt.Errorf("update backlog item: %w", err)
	}
	return s.GetBacklogItem(ctx, id)
}

// DeleteBacklogItem removes a backlog item by id.
func (s *Store) DeleteBacklogItem(ctx context.Context, id string) (err error) {
	defer s.observe("backlog_items", "delete", &err)
	return s.deleteByID(ctx, "backlog_items", "backlog item", id)
}

// carryOverBacklog copies unfinished items of one sprint into another as todo.
func carryOverBacklog(ctx context.Context, q execer, fromID, toID string, now time.Time) error {
	rows, err := q.QueryContext(ctx, `SELECT `+backlogColumns+` FROM backlog_items WHERE sprint_id = ? AND status <> 'done' ORDER BY created_at, rowid`, fromID)
	if err != nil {
		return fmt.Errorf("list unfinished items: %w", err)
	}
	items, err := collect(rows, scanBacklogItem)
	if err != nil {
		return fmt.Errorf("scan backlog item: %w", err)
	}

	for _, it := range items {
		_, err := q.ExecContext(ctx, `INSERT INTO backlog_items(id, sprint_id, title, description, story_points, priority, status, created_at, updated_at)
            VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			newID(), toID, it.Title, it.Description, it.StoryPoints, it.Priority, string(models.BacklogTodo), now, now)
		if err != nil {
			return fmt.Errorf("carry over backlog item: %w", err)
		}
	}
	return nil
}
