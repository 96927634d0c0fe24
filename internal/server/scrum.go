package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"techcorp/internal/hooks"
	"techcorp/internal/models"
)

type scrumBoard struct {
	Current *models.Sprint       `json:"current_sprint"`
	Sprints []models.Sprint      `json:"sprints"`
	Backlog []models.BacklogItem `json:"backlog"`
	Daily   []models.DailyUpdate `json:"daily_updates"`
	Retro   []models.RetroItem   `json:"retro_items"`
	Stats   hooks.ScrumStats     `json:"stats"`
	Loading bool                 `json:"loading"`
	Error   string               `json:"error,omitempty"`
}

func (s *Server) board() scrumBoard {
	b := scrumBoard{
		Sprints: s.scrum.Sprints.Rows(),
		Backlog: s.scrum.Backlog.Rows(),
		Daily:   s.scrum.Daily.Rows(),
		Retro:   s.scrum.Retro.Rows(),
		Stats:   s.scrum.Stats(),
		Loading: s.scrum.Loading(),
		Error:   s.scrum.Err(),
	}
	if sp, ok := s.scrum.Current(); ok {
		b.Current = &sp
	}
	return b
}

// handleScrumBoard returns the current sprint with its three collections.
func (s *Server) handleScrumBoard(c *gin.Context) {
	if !s.scrum.Sprints.Loaded() || c.Query("refresh") != "" {
		if err := s.scrum.Load(c.Request.Context()); err != nil {
			s.respondError(c, http.StatusInternalServerError, err)
			return
		}
	}
	respondSuccess(c, http.StatusOK, s.board())
}

// handleScrumRefresh reloads the sprints and the current sprint's children.
// With scope=sprint only the children of the current sprint are reloaded.
func (s *Server) handleScrumRefresh(c *gin.Context) {
	reload := s.scrum.Load
	switch c.Query("scope") {
	case "", "all":
	case "sprint":
		reload = s.scrum.RefetchCurrent
	default:
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("unknown refresh scope %q", c.Query("scope")))
		return
	}
	if err := reload(c.Request.Context()); err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, s.board())
}

// handleStartNextSprint closes the current sprint and opens the next one.
func (s *Server) handleStartNextSprint(c *gin.Context) {
	var opts models.NextSprintOptions
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&opts); err != nil {
			s.respondError(c, http.StatusBadRequest, err)
			return
		}
	}

	sprint, err := s.scrum.StartNextSprint(c.Request.Context(), opts)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"sprint": sprint})
}

// handleSelectSprint switches the board to another known sprint.
func (s *Server) handleSelectSprint(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	sprint, err := s.scrum.SelectSprint(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"sprint": sprint})
}

// handleListSprints returns every sprint, newest number first.
func (s *Server) handleListSprints(c *gin.Context) {
	if err := ensureLoaded(c, s.scrum.Sprints); err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"sprints": s.scrum.Sprints.Rows()})
}

// handleCreateSprint registers a sprint.
func (s *Server) handleCreateSprint(c *gin.Context) {
	var req models.SprintInput
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	sprint, err := s.scrum.CreateSprint(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"sprint": sprint})
}

// handleUpdateSprint edits a sprint.
func (s *Server) handleUpdateSprint(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.SprintPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	sprint, err := s.scrum.UpdateSprint(c.Request.Context(), id, req)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"sprint": sprint})
}

// handleCreateBacklogItem adds an item to the current sprint.
func (s *Server) handleCreateBacklogItem(c *gin.Context) {
	var req models.BacklogItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if err := checkBacklogItem(req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	item, err := s.scrum.CreateBacklogItem(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"item": item})
}

// handleUpdateBacklogItem edits a backlog item.
func (s *Server) handleUpdateBacklogItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.BacklogItemPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if err := checkBacklogPatch(req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	item, err := s.scrum.UpdateBacklogItem(c.Request.Context(), id, req)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"item": item})
}

// handleDeleteBacklogItem removes a backlog item.
func (s *Server) handleDeleteBacklogItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.scrum.DeleteBacklogItem(c.Request.Context(), id); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}

// handleAdvanceBacklogItem moves an item one column forward.
func (s *Server) handleAdvanceBacklogItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	item, err := s.scrum.AdvanceBacklogItem(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"item": item})
}

// handleRevertBacklogItem moves an item one column back.
func (s *Server) handleRevertBacklogItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	item, err := s.scrum.RevertBacklogItem(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"item": item})
}

// handleCreateDailyUpdate posts a stand-up entry.
func (s *Server) handleCreateDailyUpdate(c *gin.Context) {
	var req models.DailyUpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if err := checkDailyUpdate(req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	update, err := s.scrum.CreateDailyUpdate(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"update": update})
}

// handleDeleteDailyUpdate removes a stand-up entry.
func (s *Server) handleDeleteDailyUpdate(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.scrum.DeleteDailyUpdate(c.Request.Context(), id); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}

// handleCreateRetroItem adds a retro note.
func (s *Server) handleCreateRetroItem(c *gin.Context) {
	var req models.RetroItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if err := checkRetroItem(req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	item, err := s.scrum.CreateRetroItem(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"item": item})
}

// handleUpdateRetroItem edits a retro note.
func (s *Server) handleUpdateRetroItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.RetroItemPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if err := checkRetroPatch(req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	item, err := s.scrum.UpdateRetroItem(c.Request.Context(), id, req)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"item": item})
}

// handleVoteRetroItem adds one vote to a retro note.
func (s *Server) handleVoteRetroItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	item, err := s.scrum.VoteRetroItem(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"item": item})
}

// handleDeleteRetroItem removes a retro note.
func (s *Server) handleDeleteRetroItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.scrum.DeleteRetroItem(c.Request.Context(), id); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}
