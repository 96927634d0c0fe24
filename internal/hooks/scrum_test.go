package hooks

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"techcorp/internal/models"
	"techcorp/internal/storage/sqlite"
)

func newLoadedScrum(t *testing.T, store *sqlite.Store) *Scrum {
	t.Helper()
	scrum := NewScrum(store, nil)
	require.NoError(t, scrum.Load(context.Background()))
	return scrum
}

func TestSelectCurrent(t *testing.T) {
	_, ok := SelectCurrent(nil)
	assert.False(t, ok)

	sprints := []models.Sprint{
		{ID: "a", Number: 3, Status: models.SprintCompleted},
		{ID: "b", Number: 2, Status: models.SprintActive},
		{ID: "c", Number: 1, Status: models.SprintCompleted},
	}
	sp, ok := SelectCurrent(sprints)
	require.True(t, ok)
	assert.Equal(t, "b", sp.ID)

	sprints[1].Status = models.SprintCompleted
	sp, ok = SelectCurrent(sprints)
	require.True(t, ok)
	assert.Equal(t, "a", sp.ID, "most recent by number when none is active")
}

func TestLoadFetchesCurrentSprintChildren(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	c := &clock{now: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)}
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "load.db"), nil, sqlite.WithClock(c.Now))
	require.NoError(t, err)
	defer store.Close()

	old, err := store.CreateSprint(ctx, models.SprintInput{Number: 1, Status: models.SprintCompleted})
	require.NoError(t, err)
	cur, err := store.CreateSprint(ctx, models.SprintInput{Number: 2, Status: models.SprintActive})
	require.NoError(t, err)

	_, err = store.CreateBacklogItem(ctx, models.BacklogItemInput{SprintID: old.ID, Title: "old work"})
	require.NoError(t, err)
	_, err = store.CreateBacklogItem(ctx, models.BacklogItemInput{SprintID: cur.ID, Title: "current work", StoryPoints: 8})
	require.NoError(t, err)
	_, err = store.CreateDailyUpdate(ctx, models.DailyUpdateInput{SprintID: cur.ID, Member: "Mia", Today: "tests"})
	require.NoError(t, err)
	_, err = store.CreateRetroItem(ctx, models.RetroItemInput{SprintID: cur.ID, Type: models.RetroImprove, Content: "shorter standups"})
	require.NoError(t, err)

	scrum := NewScrum(store, nil)
	require.NoError(t, scrum.Load(ctx))
	assert.False(t, scrum.Loading())

	current, ok := scrum.Current()
	require.True(t, ok)
	assert.Equal(t, cur.ID, current.ID)
	require.Len(t, scrum.Backlog.Rows(), 1)
	assert.Equal(t, "current work", scrum.Backlog.Rows()[0].Title)
	assert.Len(t, scrum.Daily.Rows(), 1)
	assert.Len(t, scrum.Retro.Rows(), 1)

	_, err = scrum.SelectSprint(ctx, old.ID)
	require.NoError(t, err)
	require.Len(t, scrum.Backlog.Rows(), 1)
	assert.Equal(t, "old work", scrum.Backlog.Rows()[0].Title)
	assert.Empty(t, scrum.Daily.Rows())
	assert.Empty(t, scrum.Retro.Rows())
}

func TestStartNextSprint(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	_, err := store.CreateSprint(ctx, models.SprintInput{Number: 7, Status: models.SprintActive})
	require.NoError(t, err)
	scrum := newLoadedScrum(t, store)

	_, err = scrum.CreateBacklogItem(ctx, models.BacklogItemInput{Title: "checkout flow", StoryPoints: 3})
	require.NoError(t, err)
	_, err = scrum.CreateDailyUpdate(ctx, models.DailyUpdateInput{Member: "Ren", Today: "checkout"})
	require.NoError(t, err)
	_, err = scrum.CreateRetroItem(ctx, models.RetroItemInput{Type: models.RetroGood, Content: "demo went well"})
	require.NoError(t, err)

	next, err := scrum.StartNextSprint(ctx, models.NextSprintOptions{})
	require.NoError(t, err)
	assert.Equal(t, 8, next.Number)
	assert.Equal(t, models.SprintActive, next.Status)

	current, ok := scrum.Current()
	require.True(t, ok)
	assert.Equal(t, next.ID, current.ID)

	assert.Empty(t, scrum.Backlog.Rows())
	assert.Empty(t, scrum.Daily.Rows())
	assert.Empty(t, scrum.Retro.Rows())

	active := 0
	for _, sp := range scrum.Sprints.Rows() {
		switch sp.Number {
		case 7:
			assert.Equal(t, models.SprintCompleted, sp.Status)
			assert.NotEmpty(t, sp.EndDate)
		case 8:
			assert.Equal(t, models.SprintActive, sp.Status)
		}
		if sp.Status == models.SprintActive {
			active++
		}
	}
	assert.Equal(t, 1, active)

	stored, err := store.ListSprints(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestStartNextSprintCarriesOverUnfinished(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	_, err := store.CreateSprint(ctx, models.SprintInput{Number: 1, Status: models.SprintActive})
	require.NoError(t, err)
	scrum := newLoadedScrum(t, store)

	_, err = scrum.CreateBacklogItem(ctx, models.BacklogItemInput{Title: "done one", Status: models.BacklogDone})
	require.NoError(t, err)
	_, err = scrum.CreateBacklogItem(ctx, models.BacklogItemInput{Title: "half way", Status: models.BacklogInProgress})
	require.NoError(t, err)

	_, err = scrum.StartNextSprint(ctx, models.NextSprintOptions{CarryOverUnfinished: true})
	require.NoError(t, err)

	rows := scrum.Backlog.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "half way", rows[0].Title)
	assert.Equal(t, models.BacklogTodo, rows[0].Status)
}

func TestWritesWithoutSprintFail(t *testing.T) {
	ctx := context.Background()
	scrum := newLoadedScrum(t, openStore(t))

	_, ok := scrum.Current()
	assert.False(t, ok)

	_, err := scrum.CreateBacklogItem(ctx, models.BacklogItemInput{Title: "x"})
	assert.ErrorIs(t, err, ErrNoSprint)
	_, err = scrum.CreateDailyUpdate(ctx, models.DailyUpdateInput{Member: "a", Today: "b"})
	assert.ErrorIs(t, err, ErrNoSprint)
	_, err = scrum.CreateRetroItem(ctx, models.RetroItemInput{Type: models.RetroBad, Content: "c"})
	assert.ErrorIs(t, err, ErrNoSprint)
	_, err = scrum.StartNextSprint(ctx, models.NextSprintOptions{})
	assert.ErrorIs(t, err, ErrDataStore)
	assert.Equal(t, "no current sprint", scrum.Err())
}

func TestVoteRetroItem(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	_, err := store.CreateSprint(ctx, models.SprintInput{Number: 1, Status: models.SprintActive})
	require.NoError(t, err)
	scrum := newLoadedScrum(t, store)

	a, err := scrum.CreateRetroItem(ctx, models.RetroItemInput{Type: models.RetroGood, Content: "release on time"})
	require.NoError(t, err)
	b, err := scrum.CreateRetroItem(ctx, models.RetroItemInput{Type: models.RetroBad, Content: "late reviews"})
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		voted, err := scrum.VoteRetroItem(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, i+1, voted.Votes)
		assert.Equal(t, models.RetroGood, voted.Type)
		assert.Equal(t, "release on time", voted.Content)
	}
	for i := 0; i < 2; i++ {
		_, err := scrum.VoteRetroItem(ctx, b.ID)
		require.NoError(t, err)
	}

	require.NoError(t, scrum.RefetchCurrent(ctx))
	rows := scrum.Retro.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, a.ID, rows[0].ID)
	assert.Equal(t, 4, rows[0].Votes)
	assert.Equal(t, b.ID, rows[1].ID)
}

func TestBacklogStatusSteps(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	_, err := store.CreateSprint(ctx, models.SprintInput{Number: 1, Status: models.SprintActive})
	require.NoError(t, err)
	scrum := newLoadedScrum(t, store)

	item, err := scrum.CreateBacklogItem(ctx, models.BacklogItemInput{Title: "search"})
	require.NoError(t, err)

	_, err = scrum.RevertBacklogItem(ctx, item.ID)
	assert.ErrorIs(t, err, ErrNoTransition)

	item, err = scrum.AdvanceBacklogItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BacklogInProgress, item.Status)

	item, err = scrum.AdvanceBacklogItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BacklogDone, item.Status)

	_, err = scrum.AdvanceBacklogItem(ctx, item.ID)
	assert.ErrorIs(t, err, ErrNoTransition)

	item, err = scrum.RevertBacklogItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BacklogInProgress, item.Status)
}

func TestScrumStats(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	_, err := store.CreateSprint(ctx, models.SprintInput{Number: 1, Status: models.SprintActive})
	require.NoError(t, err)
	scrum := newLoadedScrum(t, store)

	_, err = scrum.CreateBacklogItem(ctx, models.BacklogItemInput{Title: "a", StoryPoints: 5, Status: models.BacklogDone})
	require.NoError(t, err)
	_, err = scrum.CreateBacklogItem(ctx, models.BacklogItemInput{Title: "b", StoryPoints: 8})
	require.NoError(t, err)
	_, err = scrum.CreateBacklogItem(ctx, models.BacklogItemInput{Title: "c", StoryPoints: 2, Status: models.BacklogInProgress})
	require.NoError(t, err)
	_, err = scrum.CreateDailyUpdate(ctx, models.DailyUpdateInput{Member: "Sora", Today: "stats"})
	require.NoError(t, err)
	_, err = scrum.CreateRetroItem(ctx, models.RetroItemInput{Type: models.RetroImprove, Content: "docs"})
	require.NoError(t, err)

	want := ScrumStats{
		Backlog:      BacklogCounts{Total: 3, Todo: 1, InProgress: 1, Done: 1},
		StoryPoints:  StoryPointTotals{Total: 15, Completed: 5, Remaining: 10},
		DailyUpdates: 1,
		Retro:        RetroCounts{Total: 1, Improve: 1},
	}
	assert.Equal(t, want, scrum.Stats())
	assert.Equal(t, want, scrum.Stats())

	_, err = scrum.CreateRetroItem(ctx, models.RetroItemInput{Type: models.RetroGood, Content: "pairing"})
	require.NoError(t, err)
	assert.Equal(t, 1, scrum.Stats().Retro.Good)
	assert.Equal(t, 2, scrum.Stats().Retro.Total)
}
