package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"techcorp/internal/models"
)

const sprintColumns = `id, number, status, start_date, end_date, created_at, updated_at`

// ErrSprintActive is returned when a write would leave two sprints active.
var ErrSprintActive = errors.New("another sprint is already active")

func scanSprint(row scanner) (models.Sprint, error) {
	var sp models.Sprint
	if err := row.Scan(&sp.ID, &sp.Number, &sp.Status, &sp.StartDate, &sp.EndDate, &sp.CreatedAt, &sp.UpdatedAt); err != nil {
		return models.Sprint{}, err
	}
	return sp, nil
}

// ListSprints retrieves all sprints, highest number first.
func (s *Store) ListSprints(ctx context.Context) (sprints []models.Sprint, err error) {
	defer s.observe("sprints", "select", &err)

	rows, err := s.db.QueryContext(ctx, `SELECT `+sprintColumns+` FROM sprints ORDER BY number DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sprints: %w", err)
	}
	sprints, err = collect(rows, scanSprint)
	if err != nil {
		return nil, fmt.Errorf("scan sprint: %w", err)
	}
	return sprints, nil
}

// GetSprint fetches a single sprint by id.
func (s *Store) GetSprint(ctx context.Context, id string) (models.Sprint, error) {
	return getSprint(ctx, s.db, id)
}

func getSprint(ctx context.Context, q execer, id string) (models.Sprint, error) {
	sp, err := scanSprint(q.QueryRowContext(ctx, `SELECT `+sprintColumns+` FROM sprints WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Sprint{}, fmt.Errorf("sprint %w", ErrNotFound)
	}
	if err != nil {
		return models.Sprint{}, fmt.Errorf("get sprint: %w", err)
	}
	return sp, nil
}

// activeSprintOtherThan reports whether a sprint other than id is active.
func activeSprintOtherThan(ctx context.Context, q execer, id string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM sprints WHERE status = 'active' AND id <> ?`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count active sprints: %w", err)
	}
	return n > 0, nil
}

// CreateSprint persists a new sprint. At most one sprint may be active.
func (s *Store) CreateSprint(ctx context.Context, in models.SprintInput) (sp models.Sprint, err error) {
	defer s.observe("sprints", "insert", &err)

	if in.Number < 1 {
		return models.Sprint{}, fmt.Errorf("sprint number must be positive")
	}
	status := orDefault(in.Status, models.SprintPlanning)
	if err := checkEnum(models.ValidSprintStatuses, "sprint status", status); err != nil {
		return models.Sprint{}, err
	}
	if status == models.SprintActive {
		busy, err := activeSprintOtherThan(ctx, s.db, "")
		if err != nil {
			return models.Sprint{}, err
		}
		if busy {
			return models.Sprint{}, ErrSprintActive
		}
	}

	id := newID()
	if err := insertSprint(ctx, s.db, id, in.Number, status, orDefault(in.StartDate, s.today()), in.EndDate, s.timestamp()); err != nil {
		return models.Sprint{}, err
	}
	return s.GetSprint(ctx, id)
}

func insertSprint(ctx context.Context, q execer, id string, number int, status, start, end string, now time.Time) error {
	_, err := q.ExecContext(ctx, `INSERT INTO sprints(id, number, status, start_date, end_date, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?, ?)`,
		id, number, status, start, end, now, now)
	if err != nil {
		return fmt.Errorf("insert sprint: %w", err)
	}
	return nil
}

// UpdateSprint applies the non-nil patch fields and stamps updated_at.
func (s *Store) UpdateSprint(ctx context.Context, id string, patch models.SprintPatch) (sp models.Sprint, err error) {
	defer s.observe("sprints", "update", &err)

	current, err := s.GetSprint(ctx, id)
	if err != nil {
		return models.Sprint{}, err
	}

	if patch.Number != nil && *patch.Number > 0 {
		current.Number = *patch.Number
	}
	if patch.Status != nil && *patch.Status != "" {
		current.Status = *patch.Status
	}
	if patch.StartDate != nil && *patch.StartDate != "" {
		current.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		current.EndDate = *patch.EndDate
	}

	if err := checkEnum(models.ValidSprintStatuses, "sprint status", current.Status); err != nil {
		return models.Sprint{}, err
	}
	if current.Status == models.SprintActive {
		busy, err := activeSprintOtherThan(ctx, s.db, id)
		if err != nil {
			return models.Sprint{}, err
		}
		if busy {
			return models.Sprint{}, ErrSprintActive
		}
	}

	_, err = s.db.ExecContext(ctx, `UPDATE sprints SET number = ?, status = ?, start_date = ?, end_date = ?, updated_at = ? WHERE id = ?`,
		current.Number, current.Status, current.StartDate, current.EndDate, s.timestamp(), id)
	if err != nil {
		return models.Sprint{}, fmt.Errorf("update sprint: %w", err)
	}
	return s.GetSprint(ctx, id)
}

// StartNextSprint closes the sprint identified by currentID and opens the
// next numbered sprint as active, in a single transaction. It returns the
// closed and the new sprint.
func (s *Store) StartNextSprint(ctx context.Context, currentID string, opts models.NextSprintOptions) (closed, next models.Sprint, err error) {
	defer s.observe("sprints", "rollover", &err)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Sprint{}, models.Sprint{}, fmt.Errorf("begin rollover: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	current, err := getSprint(ctx, tx, currentID)
	if err != nil {
		return models.Sprint{}, models.Sprint{}, err
	}

	now := s.timestamp()
	today := s.today()
	_, err = tx.ExecContext(ctx, `UPDATE sprints SET status = ?, end_date = ?, updated_at = ? WHERE id = ?`,
		models.SprintCompleted, today, now, current.ID)
	if err != nil {
		return models.Sprint{}, models.Sprint{}, fmt.Errorf("complete sprint: %w", err)
	}

	busy, err := activeSprintOtherThan(ctx, tx, current.ID)
	if err != nil {
		return models.Sprint{}, models.Sprint{}, err
	}
	if busy {
		return models.Sprint{}, models.Sprint{}, ErrSprintActive
	}

	nextID := newID()
	if err = insertSprint(ctx, tx, nextID, current.Number+1, models.SprintActive, today, "", now); err != nil {
		return models.Sprint{}, models.Sprint{}, err
	}

	if opts.CarryOverUnfinished {
		if err = carryOverBacklog(ctx, tx, current.ID, nextID, now); err != nil {
			return models.Sprint{}, models.Sprint{}, err
		}
	}

	if closed, err = getSprint(ctx, tx, current.ID); err != nil {
		return models.Sprint{}, models.Sprint{}, err
	}
	if next, err = getSprint(ctx, tx, nextID); err != nil {
		return models.Sprint{}, models.Sprint{}, err
	}
	if err = tx.Commit(); err != nil {
		return models.Sprint{}, models.Sprint{}, fmt.Errorf("commit rollover: %w", err)
	}
	return closed, next, nil
}
