package models

import (
	"fmt"
	"time"
)

const (
	SprintPlanning  = "planning"
	SprintActive    = "active"
	SprintCompleted = "completed"
)

// ValidSprintStatuses enumerates the sprint lifecycle states.
var ValidSprintStatuses = map[string]struct{}{
	SprintPlanning:  {},
	SprintActive:    {},
	SprintCompleted: {},
}

// Sprint is a numbered work cycle grouping backlog, daily and retro entries.
type Sprint struct {
	ID        string    `json:"id"`
	Number    int       `json:"number"`
	Status    string    `json:"status"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetID returns the sprint identifier.
func (s Sprint) GetID() string { return s.ID }

// SprintInput holds the fields accepted when creating a sprint.
type SprintInput struct {
	Number    int    `json:"number" binding:"required,min=1"`
	Status    string `json:"status" binding:"omitempty,oneof=planning active completed"`
	StartDate string `json:"start_date" binding:"omitempty,isodate"`
	EndDate   string `json:"end_date" binding:"omitempty,isodate"`
}

// SprintPatch holds optional sprint fields for an update.
type SprintPatch struct {
	Number    *int    `json:"number" binding:"omitempty,min=1"`
	Status    *string `json:"status" binding:"omitempty,oneof=planning active completed"`
	StartDate *string `json:"start_date" binding:"omitempty,isodate"`
	EndDate   *string `json:"end_date" binding:"omitempty,isodate"`
}

// NextSprintOptions tunes the sprint rollover.
type NextSprintOptions struct {
	// CarryOverUnfinished copies backlog items that are not done into the new
	// sprint with their status reset to todo.
	CarryOverUnfinished bool `json:"carry_over"`
}

// BacklogStatus is the column a backlog item sits in.
type BacklogStatus string

const (
	BacklogTodo       BacklogStatus = "todo"
	BacklogInProgress BacklogStatus = "inprogress"
	BacklogDone       BacklogStatus = "done"
)

var backlogChain = []BacklogStatus{BacklogTodo, BacklogInProgress, BacklogDone}

// Valid reports whether s is one of the board columns.
func (s BacklogStatus) Valid() bool {
	for _, st := range backlogChain {
		if st == s {
			return true
		}
	}
	return false
}

// Next returns the following column, or false when s is done or unknown.
func (s BacklogStatus) Next() (BacklogStatus, bool) {
	return s.step(1)
}

// Prev returns the preceding column, or false when s is todo or unknown.
func (s BacklogStatus) Prev() (BacklogStatus, bool) {
	return s.step(-1)
}

func (s BacklogStatus) step(delta int) (BacklogStatus, bool) {
	for i, st := range backlogChain {
		if st != s {
			continue
		}
		j := i + delta
		if j < 0 || j >= len(backlogChain) {
			return s, false
		}
		return backlogChain[j], true
	}
	return s, false
}

// StoryPointScale is the ordinal estimate set offered by the board.
var StoryPointScale = []int{1, 2, 3, 5, 8, 13}

// ValidStoryPoints reports whether n is on the story point scale.
func ValidStoryPoints(n int) bool {
	for _, p := range StoryPointScale {
		if p == n {
			return true
		}
	}
	return false
}

// ValidPriorities enumerates backlog priorities.
var ValidPriorities = map[string]struct{}{
	"high":   {},
	"medium": {},
	"low":    {},
}

const DefaultPriority = "medium"

// BacklogItem is a unit of planned work inside a sprint.
type BacklogItem struct {
	ID          string        `json:"id"`
	SprintID    string        `json:"sprint_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	StoryPoints int           `json:"story_points"`
	Priority    string        `json:"priority"`
	Status      BacklogStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// GetID returns the backlog item identifier.
func (b BacklogItem) GetID() string { return b.ID }

// BacklogItemInput holds the fields accepted when creating a backlog item.
// SprintID is filled in from the current sprint.
type BacklogItemInput struct {
	SprintID    string        `json:"-"`
	Title       string        `json:"title" binding:"required"`
	Description string        `json:"description"`
	StoryPoints int           `json:"story_points" binding:"omitempty,storypoints"`
	Priority    string        `json:"priority" binding:"omitempty,oneof=high medium low"`
	Status      BacklogStatus `json:"status" binding:"omitempty,oneof=todo inprogress done"`
}

// BacklogItemPatch holds optional backlog item fields for an update.
type BacklogItemPatch struct {
	Title       *string        `json:"title" binding:"omitempty,min=1"`
	Description *string        `json:"description"`
	StoryPoints *int           `json:"story_points" binding:"omitempty,storypoints"`
	Priority    *string        `json:"priority" binding:"omitempty,oneof=high medium low"`
	Status      *BacklogStatus `json:"status" binding:"omitempty,oneof=todo inprogress done"`
}

// DailyUpdate is one member's stand-up entry.
type DailyUpdate struct {
	ID        string    `json:"id"`
	SprintID  string    `json:"sprint_id"`
	Member    string    `json:"member"`
	Yesterday string    `json:"yesterday"`
	Today     string    `json:"today"`
	Blockers  string    `json:"blockers"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetID returns the daily update identifier.
func (d DailyUpdate) GetID() string { return d.ID }

// DailyUpdateInput holds the fields accepted when posting a stand-up entry.
type DailyUpdateInput struct {
	SprintID  string `json:"-"`
	Member    string `json:"member" binding:"required"`
	Yesterday string `json:"yesterday"`
	Today     string `json:"today" binding:"required"`
	Blockers  string `json:"blockers"`
	Date      string `json:"date" binding:"omitempty,isodate"`
}

const (
	RetroGood    = "good"
	RetroBad     = "bad"
	RetroImprove = "improve"
)

// ValidRetroTypes enumerates retrospective categories.
var ValidRetroTypes = map[string]struct{}{
	RetroGood:    {},
	RetroBad:     {},
	RetroImprove: {},
}

// RetroItem is a retrospective note that team members can vote on.
type RetroItem struct {
	ID        string    `json:"id"`
	SprintID  string    `json:"sprint_id"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	Votes     int       `json:"votes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetID returns the retro item identifier.
func (r RetroItem) GetID() string { return r.ID }

// RetroItemInput holds the fields accepted when adding a retro note.
type RetroItemInput struct {
	SprintID string `json:"-"`
	Type     string `json:"type" binding:"required,oneof=good bad improve"`
	Content  string `json:"content" binding:"required"`
}

// RetroItemPatch holds optional retro fields for an update.
type RetroItemPatch struct {
	Type    *string `json:"type" binding:"omitempty,oneof=good bad improve"`
	Content *string `json:"content" binding:"omitempty,min=1"`
	Votes   *int    `json:"votes" binding:"omitempty,min=0"`
}

// ValidateBacklogItem checks the enumerated fields of a backlog item input.
func ValidateBacklogItem(in BacklogItemInput) error {
	if in.StoryPoints != 0 && !ValidStoryPoints(in.StoryPoints) {
		return fmt.Errorf("story points %d not on scale", in.StoryPoints)
	}
	if in.Priority != "" {
		if _, ok := ValidPriorities[in.Priority]; !ok {
			return fmt.Errorf("unknown priority %q", in.Priority)
		}
	}
	if in.Status != "" && !in.Status.Valid() {
		return fmt.Errorf("unknown backlog status %q", in.Status)
	}
	return nil
}
