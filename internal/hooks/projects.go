package hooks

import (
	"context"

	"techcorp/internal/models"
)

// ProjectStore is the data store surface used by Projects.
type ProjectStore interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
	CreateProject(ctx context.Context, in models.ProjectInput) (models.Project, error)
	UpdateProject(ctx context.Context, id string, patch models.ProjectPatch) (models.Project, error)
	DeleteProject(ctx context.Context, id string) error
}

// ProjectStats counts mirrored projects by status.
type ProjectStats struct {
	Total          int `json:"total"`
	InProgress     int `json:"in_progress"`
	Completed      int `json:"completed"`
	OnHold         int `json:"on_hold"`
	NearlyComplete int `json:"nearly_complete"`
}

// ComputeProjectStats counts projects by status.
func ComputeProjectStats(projects []models.Project) ProjectStats {
	st := ProjectStats{Total: len(projects)}
	for _, p := range projects {
		switch p.Status {
		case models.ProjectInProgress:
			st.InProgress++
		case models.ProjectCompleted:
			st.Completed++
		case models.ProjectOnHold:
			st.OnHold++
		case models.ProjectNearlyComplete:
			st.NearlyComplete++
		}
	}
	return st
}

// Projects mirrors the projects table.
type Projects struct {
	*Collection[models.Project, models.ProjectInput, models.ProjectPatch]
	stats memo[uint64, ProjectStats]
}

// NewProjects builds the projects hook over store.
func NewProjects(store ProjectStore) *Projects {
	return &Projects{Collection: NewCollection(Source[models.Project, models.ProjectInput, models.ProjectPatch]{
		Noun: "project",
		List: func(ctx context.Context, _ string) ([]models.Project, error) {
			return store.ListProjects(ctx)
		},
		Insert: store.CreateProject,
		Update: store.UpdateProject,
		Delete: store.DeleteProject,
	})}
}

// Filter applies the admin list search box and status selector.
func (p *Projects) Filter(query, status string) []models.Project {
	return FilterProjects(p.Rows(), query, status)
}

// Stats returns the status counts, recomputed only when the mirror changed.
func (p *Projects) Stats() ProjectStats {
	return p.stats.get(p.Mirror().Version(), func() ProjectStats {
		return ComputeProjectStats(p.Rows())
	})
}

// Recent returns up to n projects that are in progress or nearly complete.
func (p *Projects) Recent(n int) []models.Project {
	out := []models.Project{}
	for _, pr := range p.Rows() {
		if len(out) == n {
			break
		}
		if pr.Status == models.ProjectInProgress || pr.Status == models.ProjectNearlyComplete {
			out = append(out, pr)
		}
	}
	return out
}
