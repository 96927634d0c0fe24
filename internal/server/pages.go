package server

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"techcorp/internal/models"
	"techcorp/internal/web"
)

var (
	userRoles       = sortedKeys(models.ValidUserRoles)
	projectStatuses = sortedKeys(models.ValidProjectStatuses)
)

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

const (
	tabBacklog = "backlog"
	tabDaily   = "daily"
	tabRetro   = "retro"
)

type backlogColumn struct {
	Title string
	Items []models.BacklogItem
}

type retroGroup struct {
	Title string
	Items []models.RetroItem
}

type applyPage struct {
	Form         models.Application
	Skills       []string
	Experience   []string
	Availability []string
	Submitted    bool
	Error        string
}

func (s *Server) registerPages() {
	s.engine.GET("/", s.pageHome)
	s.engine.GET("/apply", s.pageApply)
	s.engine.POST("/apply", s.pageSubmitApply)
	s.engine.GET("/scrum", s.pageScrum)

	admin := s.engine.Group("/admin")
	{
		admin.GET("", s.pageDashboard)
		admin.GET("/users", s.pageUsers)
		admin.GET("/projects", s.pageProjects)
	}
}

func (s *Server) pageHome(c *gin.Context) {
	c.HTML(http.StatusOK, "home.html", web.HomeContent())
}

func (s *Server) pageDashboard(c *gin.Context) {
	for _, l := range []loader{s.users, s.projects} {
		if !l.Loaded() {
			// The failure is kept in the hook and listed on the page.
			_ = l.Fetch(c.Request.Context())
		}
	}
	c.HTML(http.StatusOK, "admin.html", s.dashboard())
}

func (s *Server) pageUsers(c *gin.Context) {
	if err := ensureLoaded(c, s.users); err != nil {
		c.HTML(http.StatusInternalServerError, "users.html", gin.H{"Error": err.Error()})
		return
	}
	query, role := c.Query("q"), c.Query("role")
	c.HTML(http.StatusOK, "users.html", gin.H{
		"Users": s.users.Filter(query, role),
		"Query": query,
		"Role":  role,
		"Roles": userRoles,
	})
}

func (s *Server) pageProjects(c *gin.Context) {
	if err := ensureLoaded(c, s.projects); err != nil {
		c.HTML(http.StatusInternalServerError, "projects.html", gin.H{"Error": err.Error()})
		return
	}
	query, status := c.Query("q"), c.Query("status")
	c.HTML(http.StatusOK, "projects.html", gin.H{
		"Projects": s.projects.Filter(query, status),
		"Stats":    s.projects.Stats(),
		"Query":    query,
		"Status":   status,
		"Statuses": projectStatuses,
	})
}

func (s *Server) pageScrum(c *gin.Context) {
	var loadErr error
	if !s.scrum.Sprints.Loaded() || c.Query("refresh") != "" {
		loadErr = s.scrum.Load(c.Request.Context())
	}

	tab := c.DefaultQuery("tab", tabBacklog)
	if tab != tabDaily && tab != tabRetro {
		tab = tabBacklog
	}

	board := s.board()
	columns := []backlogColumn{
		{Title: "To Do"},
		{Title: "In Progress"},
		{Title: "Done"},
	}
	for _, it := range board.Backlog {
		switch it.Status {
		case models.BacklogTodo:
			columns[0].Items = append(columns[0].Items, it)
		case models.BacklogInProgress:
			columns[1].Items = append(columns[1].Items, it)
		case models.BacklogDone:
			columns[2].Items = append(columns[2].Items, it)
		}
	}
	groups := []retroGroup{
		{Title: "What went well"},
		{Title: "What didn't go well"},
		{Title: "What to improve"},
	}
	for _, it := range board.Retro {
		switch it.Type {
		case models.RetroGood:
			groups[0].Items = append(groups[0].Items, it)
		case models.RetroBad:
			groups[1].Items = append(groups[1].Items, it)
		case models.RetroImprove:
			groups[2].Items = append(groups[2].Items, it)
		}
	}

	status, message := http.StatusOK, board.Error
	if loadErr != nil {
		status, message = http.StatusInternalServerError, loadErr.Error()
	}
	c.HTML(status, "scrum.html", gin.H{
		"Error":       message,
		"Board":       board,
		"Tab":         tab,
		"Columns":     columns,
		"RetroGroups": groups,
	})
}

func newApplyPage() applyPage {
	return applyPage{
		Skills:       models.SkillOptions,
		Experience:   models.ExperienceOptions,
		Availability: models.AvailabilityOptions,
	}
}

func (s *Server) pageApply(c *gin.Context) {
	c.HTML(http.StatusOK, "apply.html", newApplyPage())
}

// pageSubmitApply handles the plain HTML form post. Invalid input re-renders
// the form with the entered values kept.
func (s *Server) pageSubmitApply(c *gin.Context) {
	page := newApplyPage()
	if err := c.ShouldBind(&page.Form); err != nil {
		page.Error = err.Error()
		c.HTML(http.StatusBadRequest, "apply.html", page)
		return
	}
	if err := checkApplication(page.Form); err != nil {
		page.Error = err.Error()
		c.HTML(http.StatusBadRequest, "apply.html", page)
		return
	}
	if err := s.submitApplication(c.Request.Context(), page.Form); err != nil {
		page.Error = err.Error()
		c.HTML(http.StatusServiceUnavailable, "apply.html", page)
		return
	}
	page.Submitted = true
	c.HTML(http.StatusOK, "apply.html", page)
}
