package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"techcorp/internal/models"
)

// handleListUsers returns the mirrored users narrowed by ?q= and ?role=.
func (s *Server) handleListUsers(c *gin.Context) {
	if err := ensureLoaded(c, s.users); err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	filtered := s.users.Filter(c.Query("q"), c.Query("role"))
	respondSuccess(c, http.StatusOK, gin.H{"users": filtered, "total": len(s.users.Rows())})
}

// handleCreateUser registers a new user.
func (s *Server) handleCreateUser(c *gin.Context) {
	var req models.UserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if err := checkUser(req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	user, err := s.users.Create(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"user": user})
}

// handleUpdateUser edits an existing user.
func (s *Server) handleUpdateUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.UserPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if err := checkUserPatch(req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	user, err := s.users.Update(c.Request.Context(), id, req)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"user": user})
}

// handleDeleteUser removes a user.
func (s *Server) handleDeleteUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.users.Delete(c.Request.Context(), id); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}

// handleUserForm returns the blank create form, or the edit form pre-filled
// from the mirrored user when an id is given.
func (s *Server) handleUserForm(c *gin.Context) {
	if c.Param("id") == "" {
		respondSuccess(c, http.StatusOK, gin.H{"form": models.NewUserForm()})
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	user, found := s.users.Mirror().Get(id)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"form": models.UserFormFrom(user)})
}
