package hooks

import (
	"context"

	"techcorp/internal/models"
)

// UserStore is the data store surface used by Users.
type UserStore interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, in models.UserInput) (models.User, error)
	UpdateUser(ctx context.Context, id string, patch models.UserPatch) (models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// Users mirrors the users table.
type Users struct {
	*Collection[models.User, models.UserInput, models.UserPatch]
}

// NewUsers builds the users hook over store.
func NewUsers(store UserStore) *Users {
	return &Users{NewCollection(Source[models.User, models.UserInput, models.UserPatch]{
		Noun: "user",
		List: func(ctx context.Context, _ string) ([]models.User, error) {
			return store.ListUsers(ctx)
		},
		Insert: store.CreateUser,
		Update: store.UpdateUser,
		Delete: store.DeleteUser,
	})}
}

// Filter applies the admin list search box and role selector.
func (u *Users) Filter(query, role string) []models.User {
	return FilterUsers(u.Rows(), query, role)
}

// ActiveCount returns the number of active accounts.
func (u *Users) ActiveCount() int {
	n := 0
	for _, usr := range u.Rows() {
		if usr.Status == models.UserStatusActive {
			n++
		}
	}
	return n
}

// Recent returns up to n users in mirror order.
func (u *Users) Recent(n int) []models.User {
	rows := u.Rows()
	if len(rows) > n {
		rows = rows[:n]
	}
	return rows
}
