package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"techcorp/internal/models"
)

const retroColumns = `id, sprint_id, type, content, votes, created_at, updated_at`

func scanRetroItem(row scanner) (models.RetroItem, error) {
	var r models.RetroItem
	if err := row.Scan(&r.ID, &r.SprintID, &r.Type, &r.Content, &r.Votes, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return models.RetroItem{}, err
	}
	return r, nil
}

// ListRetroItems returns the retrospective notes of a sprint, most voted first.
func (s *Store) ListRetroItems(ctx context.Context, sprintID string) (items []models.RetroItem, err error) {
	defer s.observe("retro_items", "select", &err)

	rows, err := s.db.QueryContext(ctx, `SELECT `+retroColumns+` FROM retro_items WHERE sprint_id = ? ORDER BY votes DESC, created_at DESC, rowid DESC`, sprintID)
	if err != nil {
		return nil, fmt.Errorf("list retro items: %w", err)
	}
	items, err = collect(rows, scanRetroItem)
	if err != nil {
		return nil, fmt.Errorf("scan retro item: %w", err)
	}
	return items, nil
}

// GetRetroItem fetches a single retro note by id.
func (s *Store) GetRetroItem(ctx context.Context, id string) (models.RetroItem, error) {
	r, err := scanRetroItem(s.db.QueryRowContext(ctx, `SELECT `+retroColumns+` FROM retro_items WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.RetroItem{}, fmt.Errorf("retro item %w", ErrNotFound)
	}
	if err != nil {
		return models.RetroItem{}, fmt.Errorf("get retro item: %w", err)
	}
	return r, nil
}

// CreateRetroItem adds a retro note with zero votes.
func (s *Store) CreateRetroItem(ctx context.Context, in models.RetroItemInput) (r models.RetroItem, err error) {
	defer s.observe("retro_items", "insert", &err)

	content := strings.TrimSpace(in.Content)
	if content == "" {
		return models.RetroItem{}, fmt.Errorf("retro item content must not be empty")
	}
	if _, ok := models.ValidRetroTypes[in.Type]; !ok {
		return models.RetroItem{}, fmt.Errorf("unknown retro item type %q", in.Type)
	}

	id := newID()
	now := s.timestamp()
	_, err = s.db.ExecContext(ctx, `INSERT INTO retro_items(id, sprint_id, type, content, votes, created_at, updated_at) VALUES(?, ?, ?, ?, 0, ?, ?)`,
		id, in.SprintID, in.Type, content, now, now)
	if err != nil {
		return models.RetroItem{}, fmt.Errorf("insert retro item: %w", err)
	}
	return s.GetRetroItem(ctx, id)
}

// UpdateRetroItem applies the non-nil patch fields and stamps updated_at.
func (s *Store) UpdateRetroItem(ctx context.Context, id string, patch models.RetroItemPatch) (r models.RetroItem, err error) {
	defer s.observe("retro_items", "update", &err)

	current, err := s.GetRetroItem(ctx, id)
	if err != nil {
		return models.RetroItem{}, err
	}

	if patch.Type != nil && *patch.Type != "" {
		current.Type = *patch.Type
	}
	if patch.Content != nil {
		if v := strings.TrimSpace(*patch.Content); v != "" {
			current.Content = v
		}
	}
	if patch.Votes != nil && *patch.Votes >= 0 {
		current.Votes = *patch.Votes
	}

	_, err = s.db.ExecContext(ctx, `UPDATE retro_items SET type = ?, content = ?, votes = ?, updated_at = ? WHERE id = ?`,
		current.Type, current.Content, current.Votes, s.timestamp(), id)
	if err != nil {
		return models.RetroItem{}, fmt.Errorf("update retro item: %w", err)
	}
	return s.GetRetroItem(ctx, id)
}

// VoteRetroItem increments the vote counter of a retro note by one.
func (s *Store) VoteRetroItem(ctx context.Context, id string) (r models.RetroItem, err error) {
	defer s.observe("retro_items", "vote", &err)

	res, err := s.db.ExecContext(ctx, `UPDATE retro_items SET votes = votes + 1, updated_at = ? WHERE id = ?`, s.timestamp(), id)
	if err != nil {
		return models.RetroItem{}, fmt.Errorf("vote retro item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.RetroItem{}, err
	}
	if affected == 0 {
		return models.RetroItem{}, fmt.Errorf("retro item %w", ErrNotFound)
	}
	return s.GetRetroItem(ctx, id)
}

// DeleteRetroItem removes a retro note by id.
func (s *Store) DeleteRetroItem(ctx context.Context, id string) (err error) {
	defer s.observe("retro_items", "delete", &err)
	return s.deleteByID(ctx, "retro_items", "retro item", id)
}
