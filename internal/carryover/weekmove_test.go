package carryover

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conradkoh/goals-sub001/internal/models"
)

func TestMoveWeekCarriesIncompleteTree(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	user := uuid.New()
	actor := Actor{UserID: user}

	q := mustGoal(t, st, quarterlyGoal(user, 2025, 1, "Run a marathon"))
	qs := weekState(user, q.ID, 2025, 1, 1)
	qs.IsStarred = true
	mustState(t, st, qs)

	w := mustGoal(t, st, childGoal(q, models.DepthWeekly, "Long run"))
	mustState(t, st, weekState(user, w.ID, 2025, 1, 1))

	d := mustGoal(t, st, childGoal(w, models.DepthDaily, "Interval session"))
	ds := weekState(user, d.ID, 2025, 1, 1)
	ds.DayOfWeek = intPtr(2)
	mustState(t, st, ds)

	res, err := svc.MoveWeek(ctx, actor, WeekMoveRequest{
		From: Period{Year: 2025, Quarter: 1, WeekNumber: 1},
		To:   Period{Year: 2025, Quarter: 1, WeekNumber: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.WeekStatesCopied)
	assert.Equal(t, 1, res.DailyGoalsMoved)
	assert.Equal(t, 1, res.QuarterlyGoalsUpdated)

	depth := models.DepthWeekly
	weeklies, err := st.GoalsByPeriod(ctx, user, 2025, 1, &depth)
	require.NoError(t, err)
	require.Len(t, weeklies, 2)
	var carried *models.Goal
	for i := range weeklies {
		if weeklies[i].ID != w.ID {
			carried = &weeklies[i]
		}
	}
	require.NotNil(t, carried)
	require.NotNil(t, carried.CarryNumWeeks)
	assert.Equal(t, 1, *carried.CarryNumWeeks)
	assert.Equal(t, w.ID, *carried.CarryRootGoalID)
	assert.Equal(t, w.ID, *carried.CarryPreviousGoalID)
	require.NotNil(t, carried.ParentID)
	assert.Equal(t, q.ID, *carried.ParentID)

	cs, err := st.StateFor(ctx, carried.ID, 2025, 1, 2)
	require.NoError(t, err)
	require.NotNil(t, cs)
	require.NotNil(t, cs.CarryRootGoalID)
	assert.Equal(t, w.ID, *cs.CarryRootGoalID)

	// The daily child is reparented and its state travels to week 2.
	moved, err := st.GetGoal(ctx, d.ID)
	require.NoError(t, err)
	require.NotNil(t, moved.ParentID)
	assert.Equal(t, carried.ID, *moved.ParentID)

	old, err := st.StateFor(ctx, d.ID, 2025, 1, 1)
	require.NoError(t, err)
	assert.Nil(t, old)
	ns, err := st.StateFor(ctx, d.ID, 2025, 1, 2)
	require.NoError(t, err)
	require.NotNil(t, ns)
	require.NotNil(t, ns.DayOfWeek)
	assert.Equal(t, 2, *ns.DayOfWeek)

	// Quarterly flags land on the target week, starred winning over pinned.
	qws, err := st.StateFor(ctx, q.ID, 2025, 1, 2)
	require.NoError(t, err)
	require.NotNil(t, qws)
	assert.True(t, qws.IsStarred)
	assert.False(t, qws.IsPinned)
}

func TestMoveWeekDryRunWritesNothing(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	user := uuid.New()
	actor := Actor{UserID: user}

	q := mustGoal(t, st, quarterlyGoal(user, 2025, 1, "Read more"))
	w := mustGoal(t, st, childGoal(q, models.DepthWeekly, "Finish a chapter"))
	mustState(t, st, weekState(user, w.ID, 2025, 1, 1))

	res, err := svc.MoveWeek(ctx, actor, WeekMoveRequest{
		From:   Period{Year: 2025, Quarter: 1, WeekNumber: 1},
		To:     Period{Year: 2025, Quarter: 1, WeekNumber: 2},
		DryRun: true,
	})
	require.NoError(t, err)
	assert.True(t, res.Preview.CanPull)
	require.Len(t, res.Preview.WeekStatesToCopy, 1)
	assert.Equal(t, w.ID, res.Preview.WeekStatesToCopy[0].Goal.ID)
	assert.Equal(t, 0, res.WeekStatesCopied)

	depth := models.DepthWeekly
	weeklies, err := st.GoalsByPeriod(ctx, user, 2025, 1, &depth)
	require.NoError(t, err)
	assert.Len(t, weeklies, 1)
	st2, err := st.StateFor(ctx, w.ID, 2025, 1, 2)
	require.NoError(t, err)
	assert.Nil(t, st2)
}

func TestMoveWeekSelectsOnlyIncomplete(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	user := uuid.New()
	actor := Actor{UserID: user}

	q := mustGoal(t, st, quarterlyGoal(user, 2025, 1, "Ship the feature"))

	done := mustGoal(t, st, childGoal(q, models.DepthWeekly, "Write the design"))
	dst := weekState(user, done.ID, 2025, 1, 1)
	dst.IsComplete = true
	mustState(t, st, dst)

	open := mustGoal(t, st, childGoal(q, models.DepthWeekly, "Implement it"))
	mustState(t, st, weekState(user, open.ID, 2025, 1, 1))

	dOpen := mustGoal(t, st, childGoal(open, models.DepthDaily, "Write tests"))
	mustState(t, st, weekState(user, dOpen.ID, 2025, 1, 1))
	dDone := mustGoal(t, st, childGoal(open, models.DepthDaily, "Scaffold repo"))
	dds := weekState(user, dDone.ID, 2025, 1, 1)
	dds.IsComplete = true
	mustState(t, st, dds)

	res, err := svc.MoveWeek(ctx, actor, WeekMoveRequest{
		From: Period{Year: 2025, Quarter: 1, WeekNumber: 1},
		To:   Period{Year: 2025, Quarter: 1, WeekNumber: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.WeekStatesCopied)
	assert.Equal(t, 1, res.DailyGoalsMoved)

	// The completed weekly goal was not carried.
	depth := models.DepthWeekly
	weeklies, err := st.GoalsByPeriod(ctx, user, 2025, 1, &depth)
	require.NoError(t, err)
	assert.Len(t, weeklies, 3)

	// The completed daily stays under the source weekly goal, in week 1.
	stay, err := st.GetGoal(ctx, dDone.ID)
	require.NoError(t, err)
	assert.Equal(t, open.ID, *stay.ParentID)
	ss, err := st.StateFor(ctx, dDone.ID, 2025, 1, 1)
	require.NoError(t, err)
	require.NotNil(t, ss)
	assert.True(t, ss.IsComplete)

	// The incomplete daily moved.
	ms, err := st.StateFor(ctx, dOpen.ID, 2025, 1, 2)
	require.NoError(t, err)
	assert.NotNil(t, ms)
}

func TestMoveWeekDuplicateSourceStatesCollapse(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	user := uuid.New()
	actor := Actor{UserID: user}

	q := mustGoal(t, st, quarterlyGoal(user, 2025, 1, "Declutter"))
	w := mustGoal(t, st, childGoal(q, models.DepthWeekly, "One room"))
	// Two state rows for the same weekly goal in the source week.
	mustState(t, st, weekState(user, w.ID, 2025, 1, 1))
	mustState(t, st, weekState(user, w.ID, 2025, 1, 1))
	d := mustGoal(t, st, childGoal(w, models.DepthDaily, "The closet"))
	mustState(t, st, weekState(user, d.ID, 2025, 1, 1))

	req := WeekMoveRequest{
		From: Period{Year: 2025, Quarter: 1, WeekNumber: 1},
		To:   Period{Year: 2025, Quarter: 1, WeekNumber: 2},
	}
	preview, err := svc.MoveWeek(ctx, actor, WeekMoveRequest{From: req.From, To: req.To, DryRun: true})
	require.NoError(t, err)
	assert.Len(t, preview.Preview.WeekStatesToCopy, 1)
	assert.Len(t, preview.Preview.DailyGoalsToMove, 1)

	res, err := svc.MoveWeek(ctx, actor, req)
	require.NoError(t, err)
	assert.Equal(t, 1, res.WeekStatesCopied)
	assert.Equal(t, 1, res.DailyGoalsMoved)

	states, err := st.StatesByGoal(ctx, d.ID)
	require.NoError(t, err)
	assert.Len(t, states, 1)
}

func TestMoveWeekIsIdempotent(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	user := uuid.New()
	actor := Actor{UserID: user}

	q := mustGoal(t, st, quarterlyGoal(user, 2025, 1, "Learn Spanish"))
	qs := weekState(user, q.ID, 2025, 1, 1)
	qs.IsStarred = true
	mustState(t, st, qs)
	w := mustGoal(t, st, childGoal(q, models.DepthWeekly, "Vocabulary drills"))
	mustState(t, st, weekState(user, w.ID, 2025, 1, 1))

	req := WeekMoveRequest{
		From: Period{Year: 2025, Quarter: 1, WeekNumber: 1},
		To:   Period{Year: 2025, Quarter: 1, WeekNumber: 2},
	}
	_, err := svc.MoveWeek(ctx, actor, req)
	require.NoError(t, err)
	res2, err := svc.MoveWeek(ctx, actor, req)
	require.NoError(t, err)
	assert.Equal(t, 1, res2.WeekStatesCopied)

	// Re-running reuses the carried goal instead of duplicating it.
	depth := models.DepthWeekly
	weeklies, err := st.GoalsByPeriod(ctx, user, 2025, 1, &depth)
	require.NoError(t, err)
	require.Len(t, weeklies, 2)
	for i := range weeklies {
		if weeklies[i].ID == w.ID {
			continue
		}
		states, err := st.StatesByGoal(ctx, weeklies[i].ID)
		require.NoError(t, err)
		assert.Len(t, states, 1)
	}
}

func TestMoveWeekExistingStarredTargetWins(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	user := uuid.New()
	actor := Actor{UserID: user}

	q := mustGoal(t, st, quarterlyGoal(user, 2025, 1, "Get stronger"))
	src := weekState(user, q.ID, 2025, 1, 1)
	src.IsPinned = true
	mustState(t, st, src)
	tgt := weekState(user, q.ID, 2025, 1, 2)
	tgt.IsStarred = true
	mustState(t, st, tgt)

	w := mustGoal(t, st, childGoal(q, models.DepthWeekly, "Three gym sessions"))
	mustState(t, st, weekState(user, w.ID, 2025, 1, 1))

	_, err := svc.MoveWeek(ctx, actor, WeekMoveRequest{
		From: Period{Year: 2025, Quarter: 1, WeekNumber: 1},
		To:   Period{Year: 2025, Quarter: 1, WeekNumber: 2},
	})
	require.NoError(t, err)

	got, err := st.StateFor(ctx, q.ID, 2025, 1, 2)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsStarred)
	assert.False(t, got.IsPinned)
}

func TestMoveWeekKeepsFireOnCarriedGoal(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	user := uuid.New()
	actor := Actor{UserID: user}

	q := mustGoal(t, st, quarterlyGoal(user, 2025, 1, "Pay off debt"))
	w := mustGoal(t, st, childGoal(q, models.DepthWeekly, "Transfer savings"))
	mustState(t, st, weekState(user, w.ID, 2025, 1, 1))
	require.NoError(t, st.SetFireFlag(ctx, user, w.ID))

	_, err := svc.MoveWeek(ctx, actor, WeekMoveRequest{
		From: Period{Year: 2025, Quarter: 1, WeekNumber: 1},
		To:   Period{Year: 2025, Quarter: 1, WeekNumber: 2},
	})
	require.NoError(t, err)

	depth := models.DepthWeekly
	weeklies, err := st.GoalsByPeriod(ctx, user, 2025, 1, &depth)
	require.NoError(t, err)
	require.Len(t, weeklies, 2)
	var carriedID uuid.UUID
	for i := range weeklies {
		if weeklies[i].ID != w.ID {
			carriedID = weeklies[i].ID
		}
	}

	flagged, err := st.FireFlagged(ctx, user, []uuid.UUID{w.ID, carriedID})
	require.NoError(t, err)
	assert.False(t, flagged[w.ID])
	assert.True(t, flagged[carriedID])
}

func TestMoveWeekAcrossQuarterCreatesQuarterlyTarget(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	user := uuid.New()
	actor := Actor{UserID: user}

	q := mustGoal(t, st, quarterlyGoal(user, 2025, 1, "Quarterly OKRs"))
	w := mustGoal(t, st, childGoal(q, models.DepthWeekly, "Weekly review"))
	mustState(t, st, weekState(user, w.ID, 2025, 1, 13))

	res, err := svc.MoveWeek(ctx, actor, WeekMoveRequest{
		From: Period{Year: 2025, Quarter: 1, WeekNumber: 13},
		To:   Period{Year: 2025, Quarter: 2, WeekNumber: 14},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.WeekStatesCopied)

	depth := models.DepthQuarterly
	q2goals, err := st.GoalsByPeriod(ctx, user, 2025, 2, &depth)
	require.NoError(t, err)
	require.Len(t, q2goals, 1)
	require.NotNil(t, q2goals[0].CarryRootGoalID)
	assert.Equal(t, q.ID, *q2goals[0].CarryRootGoalID)

	wdepth := models.DepthWeekly
	w2goals, err := st.GoalsByPeriod(ctx, user, 2025, 2, &wdepth)
	require.NoError(t, err)
	require.Len(t, w2goals, 1)
	require.NotNil(t, w2goals[0].ParentID)
	assert.Equal(t, q2goals[0].ID, *w2goals[0].ParentID)
}

func TestMoveWeekRejectsInvalidPeriod(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.MoveWeek(context.Background(), Actor{UserID: uuid.New()}, WeekMoveRequest{
		From: Period{Year: 2025, Quarter: 5, WeekNumber: 1},
		To:   Period{Year: 2025, Quarter: 1, WeekNumber: 2},
	})
	require.ErrorIs(t, err, ErrInvalidArgument)
}
