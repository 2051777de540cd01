package carryover

import (
	"context"

	"github.com/google/uuid"

	"github.com/conradkoh/goals-sub001/internal/models"
	"github.com/conradkoh/goals-sub001/internal/store"
)

// planWeekMove is the read phase of a week move: it classifies every goal
// with a state in the source week and produces the move/copy plan. It never
// writes.
func (s *Service) planWeekMove(ctx context.Context, tx *store.Store, actor Actor, from Period) (*WeekMovePreview, error) {
	states, err := tx.StatesByWeek(ctx, actor.UserID, from.Year, from.Quarter, from.WeekNumber)
	if err != nil {
		return nil, err
	}

	// One state per goal; on collision keep the most recently created row.
	stateByGoal := make(map[uuid.UUID]models.GoalState, len(states))
	for _, st := range states {
		prev, ok := stateByGoal[st.GoalID]
		if !ok || st.CreatedAt.After(prev.CreatedAt) {
			stateByGoal[st.GoalID] = st
		}
	}

	goalIDs := make([]uuid.UUID, 0, len(stateByGoal))
	for id := range stateByGoal {
		goalIDs = append(goalIDs, id)
	}
	goals, err := tx.GoalsByIDs(ctx, actor.UserID, goalIDs)
	if err != nil {
		return nil, err
	}
	goalByID := make(map[uuid.UUID]models.Goal, len(goals))
	var weeklyIDs []uuid.UUID
	for _, g := range goals {
		goalByID[g.ID] = g
		if g.Depth == models.DepthWeekly {
			weeklyIDs = append(weeklyIDs, g.ID)
		}
	}

	// Daily children of all weekly goals, fetched once.
	children, err := tx.ChildrenOf(ctx, actor.UserID, weeklyIDs)
	if err != nil {
		return nil, err
	}
	childrenByParent := make(map[uuid.UUID][]models.Goal)
	for _, c := range children {
		if c.Depth != models.DepthDaily || c.ParentID == nil {
			continue
		}
		childrenByParent[*c.ParentID] = append(childrenByParent[*c.ParentID], c)
	}

	preview := &WeekMovePreview{CanPull: true}
	quarterlyHasIncompleteWeekly := make(map[uuid.UUID]bool)

	// Weekly goals: carried when incomplete themselves or when at least one
	// daily child is incomplete this week. Daily goals are never processed
	// independently; they travel with their weekly parent.
	for _, st := range states {
		g, ok := goalByID[st.GoalID]
		if !ok || g.Depth != models.DepthWeekly {
			continue
		}
		if stateByGoal[g.ID].ID != st.ID {
			continue // superseded duplicate
		}

		var dailies []DailyGoalToMove
		for _, child := range childrenByParent[g.ID] {
			cs, ok := stateByGoal[child.ID]
			if !ok || cs.IsComplete {
				continue
			}
			dailies = append(dailies, DailyGoalToMove{Goal: child, State: cs})
		}

		if st.IsComplete && len(dailies) == 0 {
			continue
		}

		if g.ParentID != nil && !st.IsComplete {
			quarterlyHasIncompleteWeekly[*g.ParentID] = true
		}

		entry := WeekStateToCopy{
			Goal:       g,
			State:      st,
			CarryOver:  g.BumpCarryOver(),
			DailyGoals: dailies,
		}
		if g.ParentID != nil {
			entry.QuarterlyGoalID = *g.ParentID
		}
		preview.WeekStatesToCopy = append(preview.WeekStatesToCopy, entry)
		preview.DailyGoalsToMove = append(preview.DailyGoalsToMove, dailies...)
	}

	// Quarterly goals: flags travel only when the goal is starred or pinned
	// in the source week and still has an incomplete weekly descendant.
	for _, st := range states {
		g, ok := goalByID[st.GoalID]
		if !ok || g.Depth != models.DepthQuarterly {
			continue
		}
		if stateByGoal[g.ID].ID != st.ID {
			continue
		}
		if !st.IsStarred && !st.IsPinned {
			continue
		}
		if !quarterlyHasIncompleteWeekly[g.ID] {
			continue
		}
		preview.QuarterlyGoalsToUpdate = append(preview.QuarterlyGoalsToUpdate, QuarterlyGoalToUpdate{
			GoalID:    g.ID,
			Title:     g.Title,
			IsStarred: st.IsStarred,
			IsPinned:  st.IsPinned && !st.IsStarred,
		})
	}

	return preview, nil
}
