package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"techcorp/internal/hooks"
	"techcorp/internal/storage/sqlite"
	"techcorp/internal/web"
)

// Config carries the presentation settings of the server.
type Config struct {
	StaticDir   string
	CORSOrigins []string
	ApplyDelay  time.Duration
}

// Server provides HTTP handlers for the site, the admin dashboard and the
// scrum board.
type Server struct {
	engine   *gin.Engine
	store    *sqlite.Store
	users    *hooks.Users
	projects *hooks.Projects
	scrum    *hooks.Scrum
	logger   *slog.Logger
	cfg      Config
	now      func() time.Time
}

// New constructs the HTTP server with routes and middleware configured.
func New(store *sqlite.Store, logger *slog.Logger, cfg Config) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := registerValidators(); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}
	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/api", "/metrics"))
	if len(cfg.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	router.SetHTMLTemplate(tmpl)

	srv := &Server{
		engine:   router,
		store:    store,
		users:    hooks.NewUsers(store),
		projects: hooks.NewProjects(store),
		scrum:    hooks.NewScrum(store, logger),
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}

	srv.registerRoutes()
	return srv, nil
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Load fills every mirror from the data store. Failures are kept in the
// hooks' error state and surfaced by the pages; the first one is returned.
func (s *Server) Load(ctx context.Context) error {
	return errors.Join(
		s.users.Fetch(ctx),
		s.projects.Fetch(ctx),
		s.scrum.Load(ctx),
	)
}

// registerRoutes wires all API, page and static handlers together.
func (s *Server) registerRoutes() {
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)
		api.GET("/dashboard", s.handleDashboard)

		users := api.Group("/users")
		{
			users.GET("", s.handleListUsers)
			users.POST("", s.handleCreateUser)
			users.PUT(":id", s.handleUpdateUser)
			users.DELETE(":id", s.handleDeleteUser)
		}

		projects := api.Group("/projects")
		{
			projects.GET("", s.handleListProjects)
			projects.POST("", s.handleCreateProject)
			projects.PUT(":id", s.handleUpdateProject)
			projects.DELETE(":id", s.handleDeleteProject)
		}

		forms := api.Group("/forms")
		{
			forms.GET("/user", s.handleUserForm)
			forms.GET("/user/:id", s.handleUserForm)
			forms.GET("/project", s.handleProjectForm)
			forms.GET("/project/:id", s.handleProjectForm)
		}

		scrum := api.Group("/scrum")
		{
			scrum.GET("", s.handleScrumBoard)
			scrum.POST("/refresh", s.handleScrumRefresh)
			scrum.POST("/next", s.handleStartNextSprint)
			scrum.POST("/select/:id", s.handleSelectSprint)
		}

		sprints := api.Group("/sprints")
		{
			sprints.GET("", s.handleListSprints)
			sprints.POST("", s.handleCreateSprint)
			sprints.PUT(":id", s.handleUpdateSprint)
		}

		backlog := api.Group("/backlog")
		{
			backlog.POST("", s.handleCreateBacklogItem)
			backlog.PUT(":id", s.handleUpdateBacklogItem)
			backlog.DELETE(":id", s.handleDeleteBacklogItem)
			backlog.POST(":id/advance", s.handleAdvanceBacklogItem)
			backlog.POST(":id/revert", s.handleRevertBacklogItem)
		}

		daily := api.Group("/daily")
		{
			daily.POST("", s.handleCreateDailyUpdate)
			daily.DELETE(":id", s.handleDeleteDailyUpdate)
		}

		retro := api.Group("/retro")
		{
			retro.POST("", s.handleCreateRetroItem)
			retro.PUT(":id", s.handleUpdateRetroItem)
			retro.DELETE(":id", s.handleDeleteRetroItem)
			retro.POST(":id/vote", s.handleVoteRetroItem)
		}

		api.GET("/applications/options", s.handleApplicationOptions)
		api.POST("/applications", s.handleSubmitApplication)
	}

	s.registerPages()
	s.mountStatic()
}

// handleHealth reports readiness, including database reachability.
func (s *Server) handleHealth(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		s.respondError(c, http.StatusServiceUnavailable, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": s.now().UTC().Format(time.RFC3339)})
}

// parseID validates a UUID path parameter.
func parseID(c *gin.Context, name string) (string, bool) {
	raw := c.Param(name)
	if _, err := uuid.Parse(raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid identifier"})
		return "", false
	}
	return raw, true
}

// respondError logs the error and returns a JSON payload.
func (s *Server) respondError(c *gin.Context, status int, err error) {
	if err == nil {
		err = errors.New(http.StatusText(status))
	}
	s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	c.JSON(status, gin.H{"error": err.Error()})
}

// respondSuccess wraps a payload in a JSON envelope for consistency.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}

// loader is satisfied by every mirrored collection.
type loader interface {
	Loaded() bool
	Fetch(ctx context.Context) error
}

// ensureLoaded fetches a collection that has never loaded, or when the
// caller asked for a refresh.
func ensureLoaded(c *gin.Context, l loader) error {
	if l.Loaded() && c.Query("refresh") == "" {
		return nil
	}
	return l.Fetch(c.Request.Context())
}
