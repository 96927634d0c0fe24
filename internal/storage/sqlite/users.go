package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"techcorp/internal/models"
)

const userColumns = `id, name, email, role, status, created_at, updated_at`

func scanUser(row scanner) (models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// ListUsers retrieves all users, newest first.
func (s *Store) ListUsers(ctx context.Context) (users []models.User, err error) {
	defer s.observe("users", "select", &err)

	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users, err = collect(rows, scanUser)
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return users, nil
}

// GetUser fetches a single user by id.
func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("user %w", ErrNotFound)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// CreateUser persists a new user, defaulting role and status.
func (s *Store) CreateUser(ctx context.Context, in models.UserInput) (u models.User, err error) {
	defer s.observe("users", "insert", &err)

	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if name == "" || email == "" {
		return models.User{}, fmt.Errorf("user name and email must not be empty")
	}
	role := orDefault(in.Role, models.DefaultUserRole)
	status := orDefault(in.Status, models.DefaultUserStatus)
	if err := checkUser(role, status); err != nil {
		return models.User{}, err
	}

	id := newID()
	now := s.timestamp()
	_, err = s.db.ExecContext(ctx, `INSERT INTO users(id, name, email, role, status, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?, ?)`,
		id, name, email, role, status, now, now)
	if err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return s.GetUser(ctx, id)
}

// UpdateUser applies the non-nil patch fields and stamps updated_at.
func (s *Store) UpdateUser(ctx context.Context, id string, patch models.UserPatch) (u models.User, err error) {
	defer s.observe("users", "update", &err)

	current, err := s.GetUser(ctx, id)
	if err != nil {
		return models.User{}, err
	}

	if patch.Name != nil {
		if v := strings.TrimSpace(*patch.Name); v != "" {
			current.Name = v
		}
	}
	if patch.Email != nil {
		if v := strings.TrimSpace(*patch.Email); v != "" {
			current.Email = v
		}
	}
	if patch.Role != nil && *patch.Role != "" {
		current.Role = *patch.Role
	}
	if patch.Status != nil && *patch.Status != "" {
		current.Status = *patch.Status
	}
	if err := checkUser(current.Role, current.Status); err != nil {
		return models.User{}, err
	}

	_, err = s.db.ExecContext(ctx, `UPDATE users SET name = ?, email = ?, role = ?, status = ?, updated_at = ? WHERE id = ?`,
		current.Name, current.Email, current.Role, current.Status, s.timestamp(), id)
	if err != nil {
		return models.User{}, fmt.Errorf("update user: %w", err)
	}
	return s.GetUser(ctx, id)
}

func checkUser(role, status string) error {
	if err := checkEnum(models.ValidUserRoles, "user role", role); err != nil {
		return err
	}
	return checkEnum(models.ValidUserStatuses, "user status", status)
}

// DeleteUser removes a user by id.
func (s *Store) DeleteUser(ctx context.Context, id string) (err error) {
	defer s.observe("users", "delete", &err)
	return s.deleteByID(ctx, "users", "user", id)
}
