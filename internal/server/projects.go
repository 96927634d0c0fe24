package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"techcorp/internal/models"
)

// handleListProjects returns the mirrored projects narrowed by ?q= and
// ?status=, with the status counts.
func (s *Server) handleListProjects(c *gin.Context) {
	if err := ensureLoaded(c, s.projects); err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	filtered := s.projects.Filter(c.Query("q"), c.Query("status"))
	respondSuccess(c, http.StatusOK, gin.H{"projects": filtered, "stats": s.projects.Stats()})
}

// handleCreateProject creates a new project entity.
func (s *Server) handleCreateProject(c *gin.Context) {
	var req models.ProjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if err := checkProject(req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	project, err := s.projects.Create(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"project": project})
}

// handleUpdateProject edits an existing project.
func (s *Server) handleUpdateProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.ProjectPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if err := checkProjectPatch(req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	project, err := s.projects.Update(c.Request.Context(), id, req)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"project": project})
}

// handleDeleteProject removes a project.
func (s *Server) handleDeleteProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.projects.Delete(c.Request.Context(), id); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}

// handleProjectForm returns the blank create form, or the edit form
// pre-filled from the mirrored project when an id is given.
func (s *Server) handleProjectForm(c *gin.Context) {
	if c.Param("id") == "" {
		respondSuccess(c, http.StatusOK, gin.H{"form": models.NewProjectForm(s.now())})
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	project, found := s.projects.Mirror().Get(id)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"form": models.ProjectFormFrom(project)})
}
