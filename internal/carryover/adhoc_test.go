package carryover

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conradkoh/goals-sub001/internal/models"
)

func TestCreateAdhocGoalInheritsFromParent(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	user := uuid.New()
	actor := Actor{UserID: user}

	domain := uuid.New()
	parent := adhocGoal(user, 2025, 5, "Home admin")
	parent.DomainID = &domain
	mustGoal(t, st, parent)

	child, err := svc.CreateAdhocGoal(ctx, actor, models.CreateAdhocGoalRequest{
		Title:    "Sort paperwork",
		ParentID: &parent.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, parent.ID, *child.ParentID)
	require.NotNil(t, child.DomainID)
	assert.Equal(t, domain, *child.DomainID)
	require.NotNil(t, child.WeekNumber)
	assert.Equal(t, 5, *child.WeekNumber)
	assert.Equal(t, 2025, child.Year)
	assert.Equal(t, 1, child.Quarter)
	assert.Equal(t, models.DepthAdhoc, child.Depth)
}

func TestCreateAdhocGoalEnforcesNestingDepth(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	user := uuid.New()
	actor := Actor{UserID: user}

	level1 := mustGoal(t, st, adhocGoal(user, 2025, 5, "Level 1"))
	level2, err := svc.CreateAdhocGoal(ctx, actor, models.CreateAdhocGoalRequest{
		Title:    "Level 2",
		ParentID: &level1.ID,
	})
	require.NoError(t, err)
	level3, err := svc.CreateAdhocGoal(ctx, actor, models.CreateAdhocGoalRequest{
		Title:    "Level 3",
		ParentID: &level2.ID,
	})
	require.NoError(t, err)

	_, err = svc.CreateAdhocGoal(ctx, actor, models.CreateAdhocGoalRequest{
		Title:    "Level 4",
		ParentID: &level3.ID,
	})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCreateAdhocGoalValidation(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	user := uuid.New()
	actor := Actor{UserID: user}

	_, err := svc.CreateAdhocGoal(ctx, actor, models.CreateAdhocGoalRequest{Title: "  "})
	require.ErrorIs(t, err, ErrInvalidArgument)

	year := 2025
	_, err = svc.CreateAdhocGoal(ctx, actor, models.CreateAdhocGoalRequest{
		Title: "No week",
		Year:  &year,
	})
	require.ErrorIs(t, err, ErrInvalidArgument)

	// Only adhoc goals can parent adhoc goals.
	q := mustGoal(t, st, quarterlyGoal(user, 2025, 1, "Tree goal"))
	wk := 5
	_, err = svc.CreateAdhocGoal(ctx, actor, models.CreateAdhocGoalRequest{
		Title:      "Wrong lane",
		ParentID:   &q.ID,
		Year:       &year,
		WeekNumber: &wk,
	})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestMoveAdhocWeek(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	user := uuid.New()
	actor := Actor{UserID: user}

	open := mustGoal(t, st, adhocGoal(user, 2025, 13, "Book dentist"))
	done := adhocGoal(user, 2025, 13, "Water plants")
	done.IsComplete = true
	mustGoal(t, st, done)

	// Dry run lists candidates without writing.
	preview, err := svc.MoveAdhocWeek(ctx, actor, AdhocMoveRequest{
		From:   AdhocWeek{Year: 2025, WeekNumber: 13},
		To:     AdhocWeek{Year: 2025, WeekNumber: 14},
		DryRun: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, preview.GoalsMoved)
	require.Len(t, preview.Goals, 1)
	assert.Equal(t, open.ID, preview.Goals[0].ID)

	res, err := svc.MoveAdhocWeek(ctx, actor, AdhocMoveRequest{
		From: AdhocWeek{Year: 2025, WeekNumber: 13},
		To:   AdhocWeek{Year: 2025, WeekNumber: 14},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.GoalsMoved)

	moved, err := st.GetGoal(ctx, open.ID)
	require.NoError(t, err)
	assert.Equal(t, 14, *moved.WeekNumber)
	// Week 14 of 2025 is in Q2; the quarter column follows the week.
	assert.Equal(t, 2, moved.Quarter)

	stayed, err := st.GetGoal(ctx, done.ID)
	require.NoError(t, err)
	assert.Equal(t, 13, *stayed.WeekNumber)
}

func TestMoveAdhocWeekRejectsInvalidWeek(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.MoveAdhocWeek(context.Background(), Actor{UserID: uuid.New()}, AdhocMoveRequest{
		From: AdhocWeek{Year: 2025, WeekNumber: 54},
		To:   AdhocWeek{Year: 2025, WeekNumber: 1},
	})
	require.ErrorIs(t, err, ErrInvalidArgument)
}
