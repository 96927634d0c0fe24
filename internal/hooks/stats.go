package hooks

import "techcorp/internal/models"

// BacklogCounts counts backlog items per column.
type BacklogCounts struct {
	Total      int `json:"total"`
	Todo       int `json:"todo"`
	InProgress int `json:"in_progress"`
	Done       int `json:"done"`
}

// StoryPointTotals sums story points overall and for done items.
type StoryPointTotals struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Remaining int `json:"remaining"`
}

// RetroCounts counts retro items per category.
type RetroCounts struct {
	Total   int `json:"total"`
	Good    int `json:"good"`
	Bad     int `json:"bad"`
	Improve int `json:"improve"`
}

// ScrumStats is the derived view shown above the board.
type ScrumStats struct {
	Backlog      BacklogCounts    `json:"backlog_items"`
	StoryPoints  StoryPointTotals `json:"story_points"`
	DailyUpdates int              `json:"daily_updates"`
	Retro        RetroCounts      `json:"retro_items"`
}

// ComputeScrumStats derives the board statistics from the three mirrors.
func ComputeScrumStats(backlog []models.BacklogItem, daily []models.DailyUpdate, retro []models.RetroItem) ScrumStats {
	var st ScrumStats

	st.Backlog.Total = len(backlog)
	for _, it := range backlog {
		st.StoryPoints.Total += it.StoryPoints
		switch it.Status {
		case models.BacklogTodo:
			st.Backlog.Todo++
		case models.BacklogInProgress:
			st.Backlog.InProgress++
		case models.BacklogDone:
			st.Backlog.Done++
			st.StoryPoints.Completed += it.StoryPoints
		}
	}
	st.StoryPoints.Remaining = st.StoryPoints.Total - st.StoryPoints.Completed

	st.DailyUpdates = len(daily)

	st.Retro.Total = len(retro)
	for _, it := range retro {
		switch it.Type {
		case models.RetroGood:
			st.Retro.Good++
		case models.RetroBad:
			st.Retro.Bad++
		case models.RetroImprove:
			st.Retro.Improve++
		}
	}
	return st
}
