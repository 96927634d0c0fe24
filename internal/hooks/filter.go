package hooks

import (
	"strings"

	"techcorp/internal/models"
)

// matchesQuery reports whether any field contains query, ignoring case.
// An empty query matches everything.
func matchesQuery(query string, fields ...string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// FilterUsers keeps users whose name or email contains query and whose role
// equals role when role is set.
func FilterUsers(users []models.User, query, role string) []models.User {
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		if role != "" && u.Role != role {
			continue
		}
		if matchesQuery(query, u.Name, u.Email) {
			out = append(out, u)
		}
	}
	return out
}

// FilterProjects keeps projects whose name or description contains query and
// whose status equals status when status is set.
func FilterProjects(projects []models.Project, query, status string) []models.Project {
	out := make([]models.Project, 0, len(projects))
	for _, p := range projects {
		if status != "" && p.Status != status {
			continue
		}
		if matchesQuery(query, p.Name, p.Description) {
			out = append(out, p)
		}
	}
	return out
}
