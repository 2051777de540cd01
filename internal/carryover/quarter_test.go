package carryover

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/conradkoh/goals-sub001/internal/models"
	"github.com/conradkoh/goals-sub001/internal/period"
)

func TestMoveQuarterlyGoalMigratesLastWeekSnapshot(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	user := uuid.New()
	actor := Actor{UserID: user}

	q := mustGoal(t, st, quarterlyGoal(user, 2025, 1, "Launch the product"))
	qs := weekState(user, q.ID, 2025, 1, 10)
	qs.IsStarred = true
	mustState(t, st, qs)

	w := mustGoal(t, st, childGoal(q, models.DepthWeekly, "Beta feedback round"))
	mustState(t, st, weekState(user, w.ID, 2025, 1, 10))
	d := mustGoal(t, st, childGoal(w, models.DepthDaily, "Call three users"))
	ds := weekState(user, d.ID, 2025, 1, 10)
	ds.DayOfWeek = intPtr(3)
	mustState(t, st, ds)

	res, err := svc.MoveQuarterlyGoal(ctx, actor, q.ID,
		QuarterPeriod{Year: 2025, Quarter: 1},
		QuarterPeriod{Year: 2025, Quarter: 2})
	require.NoError(t, err)
	assert.True(t, res.QuarterlyGoalWasCreated)
	assert.NotEqual(t, q.ID, res.NewGoalID)
	assert.Equal(t, 1, res.WeeklyGoalsMigrated)
	assert.Equal(t, 1, res.DailyGoalsMigrated)

	// A state row was seeded for every week of the target quarter.
	qWeeks, firstWeek := period.WeeksOf(2025, 2)
	states, err := st.StatesByGoals(ctx, []uuid.UUID{res.NewGoalID}, 2025, 2)
	require.NoError(t, err)
	assert.Len(t, states, len(qWeeks))

	// Starred carries only onto the first target week.
	for _, s := range states {
		if s.WeekNumber == firstWeek {
			assert.True(t, s.IsStarred)
		} else {
			assert.False(t, s.IsStarred)
		}
	}

	wdepth := models.DepthWeekly
	weeklies, err := st.GoalsByPeriod(ctx, user, 2025, 2, &wdepth)
	require.NoError(t, err)
	require.Len(t, weeklies, 1)
	require.NotNil(t, weeklies[0].ParentID)
	assert.Equal(t, res.NewGoalID, *weeklies[0].ParentID)
	require.NotNil(t, weeklies[0].CarryRootGoalID)
	assert.Equal(t, w.ID, *weeklies[0].CarryRootGoalID)
	ws, err := st.StateFor(ctx, weeklies[0].ID, 2025, 2, firstWeek)
	require.NoError(t, err)
	require.NotNil(t, ws)

	ddepth := models.DepthDaily
	dailies, err := st.GoalsByPeriod(ctx, user, 2025, 2, &ddepth)
	require.NoError(t, err)
	require.Len(t, dailies, 1)
	assert.Equal(t, weeklies[0].ID, *dailies[0].ParentID)
	dstate, err := st.StateFor(ctx, dailies[0].ID, 2025, 2, firstWeek)
	require.NoError(t, err)
	require.NotNil(t, dstate)
	require.NotNil(t, dstate.DayOfWeek)
	assert.Equal(t, 3, *dstate.DayOfWeek)
}

func TestMoveQuarterlyGoalIsIdempotent(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	user := uuid.New()
	actor := Actor{UserID: user}

	q := mustGoal(t, st, quarterlyGoal(user, 2025, 1, "Grow revenue"))
	w := mustGoal(t, st, childGoal(q, models.DepthWeekly, "Ten outreach calls"))
	mustState(t, st, weekState(user, w.ID, 2025, 1, 12))
	d := mustGoal(t, st, childGoal(w, models.DepthDaily, "Two calls"))
	mustState(t, st, weekState(user, d.ID, 2025, 1, 12))

	from := QuarterPeriod{Year: 2025, Quarter: 1}
	to := QuarterPeriod{Year: 2025, Quarter: 2}
	first, err := svc.MoveQuarterlyGoal(ctx, actor, q.ID, from, to)
	require.NoError(t, err)
	second, err := svc.MoveQuarterlyGoal(ctx, actor, q.ID, from, to)
	require.NoError(t, err)

	assert.False(t, second.QuarterlyGoalWasCreated)
	assert.Equal(t, first.NewGoalID, second.NewGoalID)
	assert.Equal(t, 0, second.WeeklyGoalsMigrated)
	assert.Equal(t, 1, second.WeeklyGoalsReused)
	assert.Equal(t, 0, second.DailyGoalsMigrated)
	assert.Equal(t, 1, second.DailyGoalsReused)

	qdepth := models.DepthQuarterly
	quarterlies, err := st.GoalsByPeriod(ctx, user, 2025, 2, &qdepth)
	require.NoError(t, err)
	assert.Len(t, quarterlies, 1)
	wdepth := models.DepthWeekly
	weeklies, err := st.GoalsByPeriod(ctx, user, 2025, 2, &wdepth)
	require.NoError(t, err)
	assert.Len(t, weeklies, 1)
}

func TestMoveQuarterSkipsCompleteAndMovesAdhoc(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	user := uuid.New()
	actor := Actor{UserID: user}

	open := mustGoal(t, st, quarterlyGoal(user, 2025, 1, "Still going"))
	w := mustGoal(t, st, childGoal(open, models.DepthWeekly, "Keep at it"))
	mustState(t, st, weekState(user, w.ID, 2025, 1, 8))

	closed := quarterlyGoal(user, 2025, 1, "Already done")
	closed.IsComplete = true
	mustGoal(t, st, closed)

	adhocOpen := mustGoal(t, st, adhocGoal(user, 2025, 5, "Renew passport"))
	adhocDone := adhocGoal(user, 2025, 5, "File taxes")
	adhocDone.IsComplete = true
	mustGoal(t, st, adhocDone)

	res, err := svc.MoveQuarter(ctx, actor, QuarterMoveRequest{
		From: QuarterPeriod{Year: 2025, Quarter: 1},
		To:   QuarterPeriod{Year: 2025, Quarter: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.QuarterlyGoalsCopied)
	require.Len(t, res.Results, 1)
	assert.Equal(t, open.ID, res.Results[0].GoalID)
	assert.Empty(t, res.Results[0].Error)
	assert.Equal(t, 1, res.AdhocGoalsMoved)

	// The incomplete adhoc goal landed on the first week of the target
	// quarter; the completed one stayed put.
	firstWeek := period.FirstWeekOf(2025, 2)
	moved, err := st.GetGoal(ctx, adhocOpen.ID)
	require.NoError(t, err)
	require.NotNil(t, moved.WeekNumber)
	assert.Equal(t, firstWeek.WeekNumber, *moved.WeekNumber)
	assert.Equal(t, 2, moved.Quarter)

	stayed, err := st.GetGoal(ctx, adhocDone.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, *stayed.WeekNumber)
}

func TestMoveQuarterSelectionFilters(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	user := uuid.New()
	actor := Actor{UserID: user}

	a := mustGoal(t, st, quarterlyGoal(user, 2025, 1, "Goal A"))
	mustGoal(t, st, quarterlyGoal(user, 2025, 1, "Goal B"))

	res, err := svc.MoveQuarter(ctx, actor, QuarterMoveRequest{
		From:                     QuarterPeriod{Year: 2025, Quarter: 1},
		To:                       QuarterPeriod{Year: 2025, Quarter: 2},
		SelectedQuarterlyGoalIDs: []uuid.UUID{a.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.QuarterlyGoalsCopied)
	require.Len(t, res.Results, 1)
	assert.Equal(t, a.ID, res.Results[0].GoalID)
}

func TestMoveQuarterKeepsResultsWhenAdhocMoveFails(t *testing.T) {
	svc, st, db := newTestServiceDB(t)
	ctx := context.Background()
	user := uuid.New()
	actor := Actor{UserID: user}

	q := mustGoal(t, st, quarterlyGoal(user, 2025, 1, "Keep shipping"))
	mustGoal(t, st, adhocGoal(user, 2025, 5, "Doomed errand"))

	// Quarterly migration only inserts goals; the adhoc phase is the one
	// code path that updates them, so failing goal updates breaks exactly
	// the adhoc move.
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register("goals_update_fails", func(d *gorm.DB) {
		if d.Statement.Table == "goals" {
			d.AddError(errors.New("simulated write failure"))
		}
	}))

	res, err := svc.MoveQuarter(ctx, actor, QuarterMoveRequest{
		From: QuarterPeriod{Year: 2025, Quarter: 1},
		To:   QuarterPeriod{Year: 2025, Quarter: 2},
	})
	require.Error(t, err)

	// The committed per-goal outcomes survive the adhoc failure.
	require.NotNil(t, res)
	assert.Equal(t, 1, res.QuarterlyGoalsCopied)
	require.Len(t, res.Results, 1)
	assert.Equal(t, q.ID, res.Results[0].GoalID)
	assert.Equal(t, 0, res.AdhocGoalsMoved)
}

func TestMoveQuarterRejectsSamePeriod(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.MoveQuarter(context.Background(), Actor{UserID: uuid.New()}, QuarterMoveRequest{
		From: QuarterPeriod{Year: 2025, Quarter: 1},
		To:   QuarterPeriod{Year: 2025, Quarter: 1},
	})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestMoveQuarterlyGoalRejectsNonQuarterly(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	user := uuid.New()
	actor := Actor{UserID: user}

	q := mustGoal(t, st, quarterlyGoal(user, 2025, 1, "Parent"))
	w := mustGoal(t, st, childGoal(q, models.DepthWeekly, "Child"))

	_, err := svc.MoveQuarterlyGoal(ctx, actor, w.ID,
		QuarterPeriod{Year: 2025, Quarter: 1},
		QuarterPeriod{Year: 2025, Quarter: 2})
	require.ErrorIs(t, err, ErrInvalidArgument)
}
