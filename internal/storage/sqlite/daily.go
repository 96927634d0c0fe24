package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"techcorp/internal/models"
)

const dailyColumns = `id, sprint_id, member, yesterday, today, blockers, date, created_at, updated_at`

func scanDailyUpdate(row scanner) (models.DailyUpdate, error) {
	var d models.DailyUpdate
	err := row.Scan(&d.ID, &d.SprintID, &d.Member, &d.Yesterday, &d.Today, &d.Blockers, &d.Date, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return models.DailyUpdate{}, err
	}
	return d, nil
}

// ListDailyUpdates returns the stand-up entries of a sprint, latest date first.
func (s *Store) ListDailyUpdates(ctx context.Context, sprintID string) (updates []models.DailyUpdate, err error) {
	defer s.observe("daily_updates", "select", &err)

	rows, err := s.db.QueryContext(ctx, `SELECT `+dailyColumns+` FROM daily_updates WHERE sprint_id = ? ORDER BY date DESC, created_at DESC, rowid DESC`, sprintID)
	if err != nil {
		return nil, fmt.Errorf("list daily updates: %w", err)
	}
	updates, err = collect(rows, scanDailyUpdate)
	if err != nil {
		return nil, fmt.Errorf("scan daily update: %w", err)
	}
	return updates, nil
}

// GetDailyUpdate fetches a single stand-up entry by id.
func (s *Store) GetDailyUpdate(ctx context.Context, id string) (models.DailyUpdate, error) {
	d, err := scanDailyUpdate(s.db.QueryRowContext(ctx, `SELECT `+dailyColumns+` FROM daily_updates WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.DailyUpdate{}, fmt.Errorf("daily update %w", ErrNotFound)
	}
	if err != nil {
		return models.DailyUpdate{}, fmt.Errorf("get daily update: %w", err)
	}
	return d, nil
}

// CreateDailyUpdate records a stand-up entry, dated today unless given.
func (s *Store) CreateDailyUpdate(ctx context.Context, in models.DailyUpdateInput) (d models.DailyUpdate, err error) {
	defer s.observe("daily_updates", "insert", &err)

	member := strings.TrimSpace(in.Member)
	today := strings.TrimSpace(in.Today)
	if member == "" || today == "" {
		return models.DailyUpdate{}, fmt.Errorf("daily update member and today must not be empty")
	}

	id := newID()
	now := s.timestamp()
	_, err = s.db.ExecContext(ctx, `INSERT INTO daily_updates(id, sprint_id, member, yesterday, today, blockers, date, created_at, updated_at)
        VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, in.SprintID, member, strings.TrimSpace(in.Yesterday), today, strings.TrimSpace(in.Blockers), orDefault(in.Date, s.today()), now, now)
	if err != nil {
		return models.DailyUpdate{}, fmt.Errorf("insert daily update: %w", err)
	}
	return s.GetDailyUpdate(ctx, id)
}

// DeleteDailyUpdate removes a stand-up entry by id.
func (s *Store) DeleteDailyUpdate(ctx context.Context, id string) (err error) {
	defer s.observe("daily_updates", "delete", &err)
	return s.deleteByID(ctx, "daily_updates", "daily update", id)
}
