package hooks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"techcorp/internal/models"
)

// ScrumStore is the data store surface used by Scrum.
type ScrumStore interface {
	ListSprints(ctx context.Context) ([]models.Sprint, error)
	CreateSprint(ctx context.Context, in models.SprintInput) (models.Sprint, error)
	UpdateSprint(ctx context.Context, id string, patch models.SprintPatch) (models.Sprint, error)
	StartNextSprint(ctx context.Context, currentID string, opts models.NextSprintOptions) (models.Sprint, models.Sprint, error)

	ListBacklogItems(ctx context.Context, sprintID string) ([]models.BacklogItem, error)
	CreateBacklogItem(ctx context.Context, in models.BacklogItemInput) (models.BacklogItem, error)
	UpdateBacklogItem(ctx context.Context, id string, patch models.BacklogItemPatch) (models.BacklogItem, error)
	DeleteBacklogItem(ctx context.Context, id string) error

	ListDailyUpdates(ctx context.Context, sprintID string) ([]models.DailyUpdate, error)
	CreateDailyUpdate(ctx context.Context, in models.DailyUpdateInput) (models.DailyUpdate, error)
	DeleteDailyUpdate(ctx context.Context, id string) error

	ListRetroItems(ctx context.Context, sprintID string) ([]models.RetroItem, error)
	CreateRetroItem(ctx context.Context, in models.RetroItemInput) (models.RetroItem, error)
	UpdateRetroItem(ctx context.Context, id string, patch models.RetroItemPatch) (models.RetroItem, error)
	VoteRetroItem(ctx context.Context, id string) (models.RetroItem, error)
	DeleteRetroItem(ctx context.Context, id string) error
}

// Scrum coordinates the sprint table and the three sprint scoped tables
// around the current sprint.
type Scrum struct {
	store  ScrumStore
	logger *slog.Logger

	Sprints *Collection[models.Sprint, models.SprintInput, models.SprintPatch]
	Backlog *Collection[models.BacklogItem, models.BacklogItemInput, models.BacklogItemPatch]
	Daily   *Collection[models.DailyUpdate, models.DailyUpdateInput, struct{}]
	Retro   *Collection[models.RetroItem, models.RetroItemInput, models.RetroItemPatch]

	mu       sync.RWMutex
	current  *models.Sprint
	inflight int
	err      string

	stats memo[[3]uint64, ScrumStats]
}

// NewScrum builds the scrum hook over store.
func NewScrum(store ScrumStore, logger *slog.Logger) *Scrum {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scrum{
		store:  store,
		logger: logger,
		Sprints: NewCollection(Source[models.Sprint, models.SprintInput, models.SprintPatch]{
			Noun: "sprint",
			List: func(ctx context.Context, _ string) ([]models.Sprint, error) {
				return store.ListSprints(ctx)
			},
			Insert: store.CreateSprint,
			Update: store.UpdateSprint,
		}),
		Backlog: NewCollection(Source[models.BacklogItem, models.BacklogItemInput, models.BacklogItemPatch]{
			Noun:   "backlog item",
			List:   store.ListBacklogItems,
			Insert: store.CreateBacklogItem,
			Update: store.UpdateBacklogItem,
			Delete: store.DeleteBacklogItem,
		}),
		Daily: NewCollection(Source[models.DailyUpdate, models.DailyUpdateInput, struct{}]{
			Noun:   "daily update",
			List:   store.ListDailyUpdates,
			Insert: store.CreateDailyUpdate,
			Delete: store.DeleteDailyUpdate,
		}),
		Retro: NewCollection(Source[models.RetroItem, models.RetroItemInput, models.RetroItemPatch]{
			Noun:   "retro item",
			List:   store.ListRetroItems,
			Insert: store.CreateRetroItem,
			Update: store.UpdateRetroItem,
			Delete: store.DeleteRetroItem,
		}),
	}
}

// Current returns the current sprint.
func (s *Scrum) Current() (models.Sprint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return models.Sprint{}, false
	}
	return *s.current, true
}

func (s *Scrum) currentID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.ID
}

// Loading reports whether a child collection batch is being fetched.
func (s *Scrum) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

// Err returns the last failure message across the scrum collections.
func (s *Scrum) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *Scrum) record(err error) error {
	if err == nil {
		return nil
	}
	s.mu.Lock()
	s.err = err.Error()
	s.mu.Unlock()
	s.logger.Warn("scrum operation failed", slog.String("error", err.Error()))
	return err
}

// SelectCurrent picks the active sprint, or the highest numbered one when no
// sprint is active. It reports false for an empty list.
func SelectCurrent(sprints []models.Sprint) (models.Sprint, bool) {
	var best *models.Sprint
	for i := range sprints {
		sp := &sprints[i]
		if sp.Status == models.SprintActive {
			return *sp, true
		}
		if best == nil || sp.Number > best.Number {
			best = sp
		}
	}
	if best == nil {
		return models.Sprint{}, false
	}
	return *best, true
}

// Load fetches the sprints, selects the current one and refetches its
// backlog, daily updates and retro items.
func (s *Scrum) Load(ctx context.Context) error {
	if err := s.Sprints.Fetch(ctx); err != nil {
		return s.record(err)
	}
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()

	sp, ok := SelectCurrent(s.Sprints.Rows())
	if !ok {
		s.setCurrent(nil)
		s.resetChildren()
		return nil
	}
	previous := s.currentID()
	s.setCurrent(&sp)
	if previous != sp.ID {
		s.resetChildren()
	}
	return s.refreshChildren(ctx, sp.ID)
}

// SelectSprint makes a mirrored sprint current and refetches its children
// when the selection changed.
func (s *Scrum) SelectSprint(ctx context.Context, id string) (models.Sprint, error) {
	sp, ok := s.Sprints.Mirror().Get(id)
	if !ok {
		return models.Sprint{}, s.record(opError("select sprint", fmt.Errorf("sprint %s not loaded", id)))
	}
	changed := s.currentID() != id
	s.setCurrent(&sp)
	if changed {
		s.resetChildren()
		if err := s.refreshChildren(ctx, id); err != nil {
			return sp, err
		}
	}
	return sp, nil
}

// RefetchCurrent reloads the children of the current sprint.
func (s *Scrum) RefetchCurrent(ctx context.Context) error {
	id := s.currentID()
	if id == "" {
		return nil
	}
	return s.refreshChildren(ctx, id)
}

func (s *Scrum) setCurrent(sp *models.Sprint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = sp
}

func (s *Scrum) resetChildren() {
	s.Backlog.Mirror().Reset()
	s.Daily.Mirror().Reset()
	s.Retro.Mirror().Reset()
}

// refreshChildren fetches the three child collections of sprintID in
// parallel. Results arriving after the current sprint changed are dropped.
func (s *Scrum) refreshChildren(ctx context.Context, sprintID string) error {
	s.mu.Lock()
	s.inflight++
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.inflight--
		s.mu.Unlock()
	}()

	stillCurrent := func() bool { return s.currentID() == sprintID }

	var g errgroup.Group
	g.Go(func() error { return s.Backlog.FetchFor(ctx, sprintID, stillCurrent) })
	g.Go(func() error { return s.Daily.FetchFor(ctx, sprintID, stillCurrent) })
	g.Go(func() error { return s.Retro.FetchFor(ctx, sprintID, stillCurrent) })
	return s.record(g.Wait())
}

// CreateSprint inserts a sprint and places it at the front of the mirror.
func (s *Scrum) CreateSprint(ctx context.Context, in models.SprintInput) (models.Sprint, error) {
	sp, err := s.Sprints.Create(ctx, in)
	return sp, s.record(err)
}

// UpdateSprint patches a sprint, keeping the current sprint in sync.
func (s *Scrum) UpdateSprint(ctx context.Context, id string, patch models.SprintPatch) (models.Sprint, error) {
	sp, err := s.Sprints.Update(ctx, id, patch)
	if err != nil {
		return sp, s.record(err)
	}
	s.mu.Lock()
	if s.current != nil && s.current.ID == id {
		s.current = &sp
	}
	s.mu.Unlock()
	return sp, nil
}

// StartNextSprint completes the current sprint and opens the next numbered
// sprint as active in one store transaction. The new sprint becomes current
// with empty child mirrors, which are then refetched.
func (s *Scrum) StartNextSprint(ctx context.Context, opts models.NextSprintOptions) (models.Sprint, error) {
	id := s.currentID()
	if id == "" {
		return models.Sprint{}, s.record(opError("start next sprint", errors.New("no current sprint")))
	}

	closed, next, err := s.store.StartNextSprint(ctx, id, opts)
	if err != nil {
		return models.Sprint{}, s.record(opError("start next sprint", err))
	}

	s.Sprints.Mirror().Patch(closed)
	s.Sprints.Mirror().Prepend(next)
	s.setCurrent(&next)
	s.resetChildren()
	s.logger.Info("sprint started", slog.Int("number", next.Number), slog.Int("previous", closed.Number))

	if err := s.refreshChildren(ctx, next.ID); err != nil {
		return next, err
	}
	return next, nil
}

func (s *Scrum) requireCurrent(op string) (string, error) {
	id := s.currentID()
	if id == "" {
		return "", s.record(opError(op, ErrNoSprint))
	}
	return id, nil
}

// CreateBacklogItem adds an item to the current sprint.
func (s *Scrum) CreateBacklogItem(ctx context.Context, in models.BacklogItemInput) (models.BacklogItem, error) {
	id, err := s.requireCurrent("create backlog item")
	if err != nil {
		return models.BacklogItem{}, err
	}
	in.SprintID = id
	item, err := s.Backlog.Create(ctx, in)
	return item, s.record(err)
}

// UpdateBacklogItem patches a backlog item.
func (s *Scrum) UpdateBacklogItem(ctx context.Context, id string, patch models.BacklogItemPatch) (models.BacklogItem, error) {
	item, err := s.Backlog.Update(ctx, id, patch)
	return item, s.record(err)
}

// DeleteBacklogItem removes a backlog item.
func (s *Scrum) DeleteBacklogItem(ctx context.Context, id string) error {
	return s.record(s.Backlog.Delete(ctx, id))
}

// AdvanceBacklogItem moves an item one column to the right.
func (s *Scrum) AdvanceBacklogItem(ctx context.Context, id string) (models.BacklogItem, error) {
	return s.stepBacklogItem(ctx, id, models.BacklogStatus.Next)
}

// RevertBacklogItem moves an item one column to the left.
func (s *Scrum) RevertBacklogItem(ctx context.Context, id string) (models.BacklogItem, error) {
	return s.stepBacklogItem(ctx, id, models.BacklogStatus.Prev)
}

func (s *Scrum) stepBacklogItem(ctx context.Context, id string, step func(models.BacklogStatus) (models.BacklogStatus, bool)) (models.BacklogItem, error) {
	item, ok := s.Backlog.Mirror().Get(id)
	if !ok {
		return models.BacklogItem{}, s.record(opError("move backlog item", fmt.Errorf("backlog item %s not loaded", id)))
	}
	status, ok := step(item.Status)
	if !ok {
		return item, s.record(opError("move backlog item", fmt.Errorf("%w from %s", ErrNoTransition, item.Status)))
	}
	return s.UpdateBacklogItem(ctx, id, models.BacklogItemPatch{Status: &status})
}

// CreateDailyUpdate records a stand-up entry in the current sprint.
func (s *Scrum) CreateDailyUpdate(ctx context.Context, in models.DailyUpdateInput) (models.DailyUpdate, error) {
	id, err := s.requireCurrent("create daily update")
	if err != nil {
		return models.DailyUpdate{}, err
	}
	in.SprintID = id
	d, err := s.Daily.Create(ctx, in)
	return d, s.record(err)
}

// DeleteDailyUpdate removes a stand-up entry.
func (s *Scrum) DeleteDailyUpdate(ctx context.Context, id string) error {
	return s.record(s.Daily.Delete(ctx, id))
}

// CreateRetroItem adds a retro note to the current sprint.
func (s *Scrum) CreateRetroItem(ctx context.Context, in models.RetroItemInput) (models.RetroItem, error) {
	id, err := s.requireCurrent("create retro item")
	if err != nil {
		return models.RetroItem{}, err
	}
	in.SprintID = id
	r, err := s.Retro.Create(ctx, in)
	return r, s.record(err)
}

// UpdateRetroItem patches a retro note.
func (s *Scrum) UpdateRetroItem(ctx context.Context, id string, patch models.RetroItemPatch) (models.RetroItem, error) {
	r, err := s.Retro.Update(ctx, id, patch)
	return r, s.record(err)
}

// VoteRetroItem adds one vote. Repeated votes are all counted.
func (s *Scrum) VoteRetroItem(ctx context.Context, id string) (models.RetroItem, error) {
	r, err := s.Retro.Apply(ctx, "vote", func(ctx context.Context) (models.RetroItem, error) {
		return s.store.VoteRetroItem(ctx, id)
	})
	return r, s.record(err)
}

// DeleteRetroItem removes a retro note.
func (s *Scrum) DeleteRetroItem(ctx context.Context, id string) error {
	return s.record(s.Retro.Delete(ctx, id))
}

// Stats returns the board statistics, recomputed only when a mirror changed.
func (s *Scrum) Stats() ScrumStats {
	key := [3]uint64{s.Backlog.Mirror().Version(), s.Daily.Mirror().Version(), s.Retro.Mirror().Version()}
	return s.stats.get(key, func() ScrumStats {
		return ComputeScrumStats(s.Backlog.Rows(), s.Daily.Rows(), s.Retro.Rows())
	})
}
