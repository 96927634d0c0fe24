package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"techcorp/internal/metrics"
	"techcorp/internal/models"
)

// submitApplication stands in for a real submission: it only waits for the
// configured delay. Nothing is stored or forwarded.
func (s *Server) submitApplication(ctx context.Context, app models.Application) error {
	timer := time.NewTimer(s.cfg.ApplyDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		metrics.ObserveApplication(ctx.Err())
		return ctx.Err()
	case <-timer.C:
	}

	metrics.ObserveApplication(nil)
	s.logger.Info("application received", "skills", len(app.Skills), "experience", app.Experience)
	return nil
}

// handleSubmitApplication validates and accepts a developer application.
func (s *Server) handleSubmitApplication(c *gin.Context) {
	var req models.Application
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.ObserveApplication(err)
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if err := checkApplication(req); err != nil {
		metrics.ObserveApplication(err)
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	if err := s.submitApplication(c.Request.Context(), req); err != nil {
		s.respondError(c, http.StatusServiceUnavailable, err)
		return
	}
	respondSuccess(c, http.StatusAccepted, gin.H{"status": "received"})
}

// handleApplicationOptions lists the choices offered by the form.
func (s *Server) handleApplicationOptions(c *gin.Context) {
	respondSuccess(c, http.StatusOK, gin.H{
		"skills":       models.SkillOptions,
		"experience":   models.ExperienceOptions,
		"availability": models.AvailabilityOptions,
	})
}
