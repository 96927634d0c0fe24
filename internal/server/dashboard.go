package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"techcorp/internal/hooks"
	"techcorp/internal/models"
)

const recentLimit = 3

type dashboardView struct {
	TotalUsers     int                `json:"total_users"`
	ActiveUsers    int                `json:"active_users"`
	Projects       hooks.ProjectStats `json:"projects"`
	RecentUsers    []models.User      `json:"recent_users"`
	RecentProjects []models.Project   `json:"recent_projects"`
	Errors         []string           `json:"errors,omitempty"`
}

func (s *Server) dashboard() dashboardView {
	v := dashboardView{
		TotalUsers:     len(s.users.Rows()),
		ActiveUsers:    s.users.ActiveCount(),
		Projects:       s.projects.Stats(),
		RecentUsers:    s.users.Recent(recentLimit),
		RecentProjects: s.projects.Recent(recentLimit),
	}
	for _, msg := range []string{s.users.Err(), s.projects.Err()} {
		if msg != "" {
			v.Errors = append(v.Errors, msg)
		}
	}
	return v
}

// handleDashboard summarizes users and projects for the admin landing page.
func (s *Server) handleDashboard(c *gin.Context) {
	for _, l := range []loader{s.users, s.projects} {
		if err := ensureLoaded(c, l); err != nil {
			s.respondError(c, http.StatusInternalServerError, err)
			return
		}
	}
	respondSuccess(c, http.StatusOK, s.dashboard())
}
