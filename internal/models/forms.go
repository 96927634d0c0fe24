package models

import "time"

// NewUserForm returns the blank user form shown when creating an account.
func NewUserForm() UserInput {
	return UserInput{Role: DefaultUserRole, Status: DefaultUserStatus}
}

// UserFormFrom pre-fills the edit form with an existing user.
func UserFormFrom(u User) UserInput {
	return UserInput{Name: u.Name, Email: u.Email, Role: u.Role, Status: u.Status}
}

// NewProjectForm returns the blank project form with today's start date.
func NewProjectForm(now time.Time) ProjectInput {
	return ProjectInput{
		Status:    ProjectInProgress,
		Progress:  0,
		StartDate: Today(now),
		TeamSize:  1,
	}
}

// ProjectFormFrom pre-fills the edit form with an existing project.
func ProjectFormFrom(p Project) ProjectInput {
	start := p.StartDate
	if len(start) > len(DateLayout) {
		start = start[:len(DateLayout)]
	}
	return ProjectInput{
		Name:        p.Name,
		Description: p.Description,
		Status:      p.Status,
		Progress:    p.Progress,
		StartDate:   start,
		TeamSize:    p.TeamSize,
	}
}
