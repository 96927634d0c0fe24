package models

import "time"

// DateLayout is the calendar date format used for start, end and meeting dates.
const DateLayout = "2006-01-02"

// Today formats the calendar date of t in UTC.
func Today(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ValidDate reports whether s is a YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// User describes an account managed from the admin dashboard.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetID returns the user identifier.
func (u User) GetID() string { return u.ID }

// UserInput holds the fields accepted when creating a user.
type UserInput struct {
	Name   string `json:"name" binding:"required"`
	Email  string `json:"email" binding:"required,email"`
	Role   string `json:"role" binding:"omitempty,oneof=admin user guest"`
	Status string `json:"status" binding:"omitempty,oneof=active inactive"`
}

// UserPatch holds optional user fields for an update.
type UserPatch struct {
	Name   *string `json:"name" binding:"omitempty,min=1"`
	Email  *string `json:"email" binding:"omitempty,email"`
	Role   *string `json:"role" binding:"omitempty,oneof=admin user guest"`
	Status *string `json:"status" binding:"omitempty,oneof=active inactive"`
}

// ValidUserRoles enumerates the supported user roles.
var ValidUserRoles = map[string]struct{}{
	"admin": {},
	"user":  {},
	"guest": {},
}

// ValidUserStatuses enumerates the account states.
var ValidUserStatuses = map[string]struct{}{
	"active":   {},
	"inactive": {},
}

const (
	DefaultUserRole   = "user"
	DefaultUserStatus = "active"
	UserStatusActive  = "active"
)

// Project describes a client engagement tracked by the consultancy.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Progress    int       `json:"progress"`
	StartDate   string    `json:"start_date"`
	TeamSize    int       `json:"team_size"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GetID returns the project identifier.
func (p Project) GetID() string { return p.ID }

// ProjectInput holds the fields accepted when creating a project.
type ProjectInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status" binding:"omitempty,oneof=in-progress completed on-hold nearly-complete"`
	Progress    int    `json:"progress" binding:"min=0,max=100"`
	StartDate   string `json:"start_date" binding:"omitempty,isodate"`
	TeamSize    int    `json:"team_size" binding:"omitempty,min=1"`
}

// ProjectPatch holds optional project fields for an update.
type ProjectPatch struct {
	Name        *string `json:"name" binding:"omitempty,min=1"`
	Description *string `json:"description"`
	Status      *string `json:"status" binding:"omitempty,oneof=in-progress completed on-hold nearly-complete"`
	Progress    *int    `json:"progress" binding:"omitempty,min=0,max=100"`
	StartDate   *string `json:"start_date" binding:"omitempty,isodate"`
	TeamSize    *int    `json:"team_size" binding:"omitempty,min=1"`
}

const (
	ProjectInProgress     = "in-progress"
	ProjectCompleted      = "completed"
	ProjectOnHold         = "on-hold"
	ProjectNearlyComplete = "nearly-complete"
)

// ValidProjectStatuses enumerates the project lifecycle states.
var ValidProjectStatuses = map[string]struct{}{
	ProjectInProgress:     {},
	ProjectCompleted:      {},
	ProjectOnHold:         {},
	ProjectNearlyComplete: {},
}
