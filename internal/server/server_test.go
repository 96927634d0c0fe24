package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"techcorp/internal/models"
	"techcorp/internal/storage/sqlite"
)

func newTestServer(t *testing.T) (*Server, *sqlite.Store) {
	t.Helper()
	gin.DefaultWriter = &bytes.Buffer{}

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "server.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	srv, err := New(store, nil, Config{ApplyDelay: 10 * time.Millisecond})
	require.NoError(t, err)
	return srv, store
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type userResp struct {
	User struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Email  string `json:"email"`
		Role   string `json:"role"`
		Status string `json:"status"`
	} `json:"user"`
}

type errorResp struct {
	Error string `json:"error"`
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])
}

func TestUserEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/users", map[string]string{"name": "Hana Ito", "email": "hana@example.com"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	hana := decode[userResp](t, rec).User
	assert.Equal(t, "user", hana.Role)
	assert.Equal(t, "active", hana.Status)

	rec = doJSON(t, srv, http.MethodPost, "/api/users", map[string]string{"name": "Ken Sato", "email": "ken@example.com", "role": "admin"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/users", map[string]string{"name": "Bad", "email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, decode[errorResp](t, rec).Error)

	rec = doJSON(t, srv, http.MethodGet, "/api/users?role=admin", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Users []struct {
			Name string `json:"name"`
		} `json:"users"`
		Total int `json:"total"`
	}](t, rec)
	require.Len(t, list.Users, 1)
	assert.Equal(t, "Ken Sato", list.Users[0].Name)
	assert.Equal(t, 2, list.Total)

	rec = doJSON(t, srv, http.MethodPut, "/api/users/"+hana.ID, map[string]string{"status": "inactive"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[userResp](t, rec).User
	assert.Equal(t, "inactive", updated.Status)
	assert.Equal(t, "Hana Ito", updated.Name)

	rec = doJSON(t, srv, http.MethodGet, "/api/forms/user/"+hana.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hana@example.com")

	rec = doJSON(t, srv, http.MethodDelete, "/api/users/"+hana.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodDelete, "/api/users/"+hana.ID, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodDelete, "/api/users/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid identifier", decode[errorResp](t, rec).Error)
}

func TestProjectEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/forms/project", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	form := decode[struct {
		Form struct {
			Status    string `json:"status"`
			StartDate string `json:"start_date"`
			TeamSize  int    `json:"team_size"`
		} `json:"form"`
	}](t, rec).Form
	assert.Equal(t, "in-progress", form.Status)
	assert.Equal(t, 1, form.TeamSize)
	assert.NotEmpty(t, form.StartDate)

	rec = doJSON(t, srv, http.MethodPost, "/api/projects", map[string]any{"name": "Site Revamp", "progress": 150})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/projects", map[string]any{"name": "Site Revamp", "start_date": "2024/01/01"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/projects", map[string]any{"name": "Site Revamp", "description": "new marketing site", "progress": 40})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = doJSON(t, srv, http.MethodPost, "/api/projects", map[string]any{"name": "Billing", "status": "on-hold"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/projects?q=MARKETING", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Projects []struct {
			Name string `json:"name"`
		} `json:"projects"`
		Stats struct {
			Total      int `json:"total"`
			InProgress int `json:"in_progress"`
			OnHold     int `json:"on_hold"`
		} `json:"stats"`
	}](t, rec)
	require.Len(t, list.Projects, 1)
	assert.Equal(t, "Site Revamp", list.Projects[0].Name)
	assert.Equal(t, 2, list.Stats.Total)
	assert.Equal(t, 1, list.Stats.InProgress)
	assert.Equal(t, 1, list.Stats.OnHold)

	rec = doJSON(t, srv, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	dash := decode[dashboardView](t, rec)
	assert.Equal(t, 2, dash.Projects.Total)
	require.Len(t, dash.RecentProjects, 1)
	assert.Equal(t, "Site Revamp", dash.RecentProjects[0].Name)
}

type itemResp struct {
	Item struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Votes  int    `json:"votes"`
	} `json:"item"`
}

func TestScrumEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/backlog", map[string]any{"title": "orphan"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "no active sprint", decode[errorResp](t, rec).Error)

	rec = doJSON(t, srv, http.MethodPost, "/api/sprints", map[string]any{"number": 1, "status": "active"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodPost, "/api/scrum/refresh", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	board := decode[scrumBoard](t, rec)
	require.NotNil(t, board.Current)
	assert.Equal(t, 1, board.Current.Number)

	rec = doJSON(t, srv, http.MethodPost, "/api/backlog", map[string]any{"title": "hero", "story_points": 4})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/backlog", map[string]any{"title": "hero", "story_points": 5})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	item := decode[itemResp](t, rec).Item
	assert.Equal(t, "todo", item.Status)

	for _, want := range []string{"inprogress", "done"} {
		rec = doJSON(t, srv, http.MethodPost, "/api/backlog/"+item.ID+"/advance", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, want, decode[itemResp](t, rec).Item.Status)
	}
	rec = doJSON(t, srv, http.MethodPost, "/api/backlog/"+item.ID+"/advance", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/daily", map[string]any{"member": "Mia", "today": "wire the board"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodPost, "/api/retro", map[string]any{"type": "good", "content": "pairing"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	retro := decode[itemResp](t, rec).Item
	for i := 0; i < 2; i++ {
		rec = doJSON(t, srv, http.MethodPost, "/api/retro/"+retro.ID+"/vote", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, 2, decode[itemResp](t, rec).Item.Votes)

	rec = doJSON(t, srv, http.MethodGet, "/api/scrum", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	board = decode[scrumBoard](t, rec)
	assert.Equal(t, 1, board.Stats.Backlog.Done)
	assert.Equal(t, 5, board.Stats.StoryPoints.Completed)
	assert.Equal(t, 1, board.Stats.DailyUpdates)
	assert.Equal(t, 1, board.Stats.Retro.Good)

	rec = doJSON(t, srv, http.MethodPost, "/api/scrum/next", map[string]any{"carry_over": false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodGet, "/api/scrum", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	board = decode[scrumBoard](t, rec)
	require.NotNil(t, board.Current)
	assert.Equal(t, 2, board.Current.Number)
	assert.Equal(t, "active", board.Current.Status)
	assert.Empty(t, board.Backlog)
	assert.Empty(t, board.Daily)
	assert.Empty(t, board.Retro)
	require.Len(t, board.Sprints, 2)
	assert.Equal(t, "completed", board.Sprints[1].Status)
	assert.NotEmpty(t, board.Sprints[1].EndDate)

	rec = doJSON(t, srv, http.MethodPost, "/api/scrum/select/"+board.Sprints[1].ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, srv, http.MethodGet, "/api/scrum", nil)
	board = decode[scrumBoard](t, rec)
	assert.Len(t, board.Backlog, 1)
	assert.Len(t, board.Retro, 1)
}

func TestApplicationEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/applications/options", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "TypeScript")

	app := map[string]any{
		"name":         "Yuki Tanaka",
		"email":        "yuki@example.com",
		"experience":   "1-3y",
		"skills":       []string{"React", "Go?"},
		"availability": "remote",
	}
	rec = doJSON(t, srv, http.MethodPost, "/api/applications", app)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unknown skill")

	app["skills"] = []string{"React", "Docker"}
	start := time.Now()
	rec = doJSON(t, srv, http.MethodPost, "/api/applications", app)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)

	app["experience"] = "decades"
	rec = doJSON(t, srv, http.MethodPost, "/api/applications", app)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestPages(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/users", map[string]string{"name": "Hana Ito", "email": "hana@example.com"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = get(t, srv, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Our Services")
	assert.Contains(t, rec.Body.String(), "Cloud Services")

	rec = get(t, srv, "/admin")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Hana Ito")

	rec = get(t, srv, "/admin/users?q=hana")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hana@example.com")

	rec = get(t, srv, "/admin/users?q=nobody")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No users found")

	rec = get(t, srv, "/admin/projects")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No projects found")

	rec = get(t, srv, "/scrum?tab=retro")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No sprint yet")
	assert.Contains(t, rec.Body.String(), "What to improve")

	rec = get(t, srv, "/apply")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "internship")

	rec = get(t, srv, "/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "/missing")

	rec = get(t, srv, "/api/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "endpoint not found", decode[errorResp](t, rec).Error)
}

func TestApplyFormPost(t *testing.T) {
	srv, _ := newTestServer(t)

	post := func(form url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/apply", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		srv.Engine().ServeHTTP(rec, req)
		return rec
	}

	form := url.Values{
		"name":         {"Yuki Tanaka"},
		"email":        {"yuki@example.com"},
		"experience":   {"3-5y"},
		"skills":       {"Python", "SQL"},
		"availability": {"full-time"},
	}
	rec := post(form)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Application sent!")

	form.Set("email", "")
	rec = post(form)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error: ")
	assert.Contains(t, rec.Body.String(), "Yuki Tanaka", "entered values are kept")

	form.Set("email", "yuki@example.com")
	form.Set("message", "see <a href=\"x\">my site</a>")
	rec = post(form)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "message must not contain markup")

	form.Set("message", "I like a<b comparisons")
	rec = post(form)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestPageShowsFetchError(t *testing.T) {
	srv, store := newTestServer(t)
	require.NoError(t, store.Close())

	rec := get(t, srv, "/admin/users")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error: ")

	rec = doJSON(t, srv, http.MethodGet, "/api/projects", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotEmpty(t, decode[errorResp](t, rec).Error)

	rec = doJSON(t, srv, http.MethodGet, "/api/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestFreeTextKeptVerbatim(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/sprints", map[string]any{"number": 1, "status": "active"})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodPost, "/api/scrum/refresh", nil).Code)

	type contentResp struct {
		Item struct {
			Content string `json:"content"`
		} `json:"item"`
	}
	for _, text := range []string{"if x<y then swap", "a<b", "deploys late & flaky", "x > y and a < b"} {
		rec = doJSON(t, srv, http.MethodPost, "/api/retro", map[string]any{"type": "bad", "content": text})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, text, decode[contentResp](t, rec).Item.Content)
	}

	for _, text := range []string{"use <Enter> to submit", "<script>alert(1)</script>late", "deploys <b>late</b>"} {
		rec = doJSON(t, srv, http.MethodPost, "/api/retro", map[string]any{"type": "bad", "content": text})
		assert.Equal(t, http.StatusBadRequest, rec.Code, text)
		assert.Equal(t, "content must not contain markup", decode[errorResp](t, rec).Error)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/backlog", map[string]any{"title": "<i></i>"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/backlog", map[string]any{"title": "sort when a<b"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, get(t, srv, "/scrum").Body.String(), "sort when a&lt;b")
}

func TestContainsMarkup(t *testing.T) {
	for _, text := range []string{"", "plain", "a<b", "if x<y then swap", "1 < 2 > 0", "Tom & Jerry", `say "hi"`} {
		assert.False(t, containsMarkup(text), text)
	}
	for _, text := range []string{"use <Enter> to submit", "<b>x</b>", "<img src=x onerror=alert(1)>", "<!-- note -->"} {
		assert.True(t, containsMarkup(text), text)
	}
}

func TestScrumPageLoadErrorReplacesBoard(t *testing.T) {
	srv, store := newTestServer(t)
	require.NoError(t, store.Close())

	rec := get(t, srv, "/scrum")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error: ")
	assert.NotContains(t, rec.Body.String(), "Sprint Backlog")
	assert.NotContains(t, rec.Body.String(), "To Do")
}

func TestScrumRefreshScope(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()

	rec := doJSON(t, srv, http.MethodPost, "/api/sprints", map[string]any{"number": 1, "status": "active"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, srv, http.MethodPost, "/api/scrum/refresh", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	board := decode[scrumBoard](t, rec)
	require.NotNil(t, board.Current)
	assert.Empty(t, board.Backlog)

	_, err := store.CreateBacklogItem(ctx, models.BacklogItemInput{SprintID: board.Current.ID, Title: "added elsewhere"})
	require.NoError(t, err)

	rec = doJSON(t, srv, http.MethodPost, "/api/scrum/refresh?scope=sprint", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	board = decode[scrumBoard](t, rec)
	require.Len(t, board.Backlog, 1)
	assert.Equal(t, "added elsewhere", board.Backlog[0].Title)

	rec = doJSON(t, srv, http.MethodPost, "/api/scrum/refresh?scope=everything", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardRecentLimit(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, name := range []string{"Aoi", "Ren", "Mio", "Sora"} {
		rec := doJSON(t, srv, http.MethodPost, "/api/users", map[string]string{"name": name, "email": strings.ToLower(name) + "@example.com"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	dash := decode[dashboardView](t, rec)
	assert.Equal(t, 4, dash.TotalUsers)
	require.Len(t, dash.RecentUsers, 3)
	assert.Equal(t, "Sora", dash.RecentUsers[0].Name)
	assert.Equal(t, "Ren", dash.RecentUsers[2].Name)
}

func TestFilterOptionsFollowModels(t *testing.T) {
	assert.Equal(t, []string{"admin", "guest", "user"}, userRoles)
	assert.Len(t, projectStatuses, len(models.ValidProjectStatuses))
	assert.Contains(t, projectStatuses, models.ProjectOnHold)
}
