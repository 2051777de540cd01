package carryover

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/conradkoh/goals-sub001/internal/metrics"
	"github.com/conradkoh/goals-sub001/internal/models"
	"github.com/conradkoh/goals-sub001/internal/store"
)

// MoveWeek carries the incomplete goals of one week into another. With
// DryRun set it returns the plan without writing; otherwise all writes are
// applied in a single transaction, so no caller ever observes a
// partially-moved week.
func (s *Service) MoveWeek(ctx context.Context, actor Actor, req WeekMoveRequest) (*WeekMoveResult, error) {
	if err := validatePeriod(req.From); err != nil {
		return nil, err
	}
	if err := validatePeriod(req.To); err != nil {
		return nil, err
	}
	if req.ToDayOfWeek != nil {
		if err := validateDay(*req.ToDayOfWeek); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	var result *WeekMoveResult
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		plan, err := s.planWeekMove(ctx, tx, actor, req.From)
		if err != nil {
			return err
		}
		if req.DryRun {
			result = &WeekMoveResult{Preview: *plan}
			return nil
		}
		result, err = s.executeWeekMove(ctx, tx, actor, plan, req.To, req.ToDayOfWeek)
		return err
	})
	if err != nil {
		metrics.MovesTotal.WithLabelValues("week", "error").Inc()
		return nil, err
	}
	if !req.DryRun {
		metrics.MovesTotal.WithLabelValues("week", "ok").Inc()
		metrics.MoveDuration.WithLabelValues("week").Observe(time.Since(start).Seconds())
	}
	return result, nil
}

// executeWeekMove is the write phase: for the unique set of weekly goals to
// copy it reuses or creates target-week goals and states, reparents daily
// children, applies the quarterly precedence rule, and keeps fire flags on
// the carried ids.
func (s *Service) executeWeekMove(ctx context.Context, tx *store.Store, actor Actor, plan *WeekMovePreview, to Period, toDay *int) (*WeekMoveResult, error) {
	res := &WeekMoveResult{Preview: *plan}

	// Deduplicate by goal id, keeping the most recently created state.
	unique := make(map[uuid.UUID]WeekStateToCopy, len(plan.WeekStatesToCopy))
	var order []uuid.UUID
	for _, e := range plan.WeekStatesToCopy {
		prev, ok := unique[e.Goal.ID]
		if !ok {
			order = append(order, e.Goal.ID)
			unique[e.Goal.ID] = e
			continue
		}
		if e.State.CreatedAt.After(prev.State.CreatedAt) {
			unique[e.Goal.ID] = e
		}
	}

	// Source quarterly id -> its goal in the target period.
	quarterlyTargets := make(map[uuid.UUID]*models.Goal)
	ensureQuarterly := func(sourceID uuid.UUID) (*models.Goal, error) {
		if qt, ok := quarterlyTargets[sourceID]; ok {
			return qt, nil
		}
		qt, err := s.ensureQuarterlyTarget(ctx, tx, actor, sourceID, to)
		if err != nil {
			return nil, err
		}
		quarterlyTargets[sourceID] = qt
		return qt, nil
	}

	for _, id := range order {
		e := unique[id]

		var qTarget *models.Goal
		if e.QuarterlyGoalID != uuid.Nil {
			var err error
			qTarget, err = ensureQuarterly(e.QuarterlyGoalID)
			if err != nil {
				return nil, err
			}
		}

		target, err := s.ensureWeeklyTarget(ctx, tx, actor, e, qTarget, to)
		if err != nil {
			return nil, err
		}

		st, err := tx.StateFor(ctx, target.ID, to.Year, to.Quarter, to.WeekNumber)
		if err != nil {
			return nil, err
		}
		if st == nil {
			// Carried weekly goals start unflagged; only quarterly states
			// carry starred/pinned.
			st = &models.GoalState{
				UserID:     actor.UserID,
				GoalID:     target.ID,
				Year:       to.Year,
				Quarter:    to.Quarter,
				WeekNumber: to.WeekNumber,
			}
			st.SetCarryOver(e.CarryOver)
			if err := tx.InsertState(ctx, st); err != nil {
				return nil, err
			}
		}

		// Fire continuity: the carried id ends up flagged, not the old one.
		if target.ID != e.Goal.ID {
			if err := tx.MoveFireFlag(ctx, actor.UserID, e.Goal.ID, target.ID); err != nil {
				return nil, err
			}
		}
		res.WeekStatesCopied++
		metrics.GoalsCarriedTotal.WithLabelValues("weekly").Inc()

		for _, d := range e.DailyGoals {
			if err := s.moveDailyChild(ctx, tx, actor, d, target, to, toDay); err != nil {
				return nil, err
			}
			res.DailyGoalsMoved++
			metrics.GoalsCarriedTotal.WithLabelValues("daily").Inc()
		}
	}

	for _, qu := range plan.QuarterlyGoalsToUpdate {
		target, err := ensureQuarterly(qu.GoalID)
		if err != nil {
			return nil, err
		}
		if err := s.applyQuarterlyUpdate(ctx, tx, actor, qu, target, to); err != nil {
			return nil, err
		}
		res.QuarterlyGoalsUpdated++
	}

	return res, nil
}

// ensureQuarterlyTarget resolves the quarterly goal a carried weekly goal
// hangs under in the target period. Within the same quarter that is the
// source goal itself; across quarters an existing goal with the same lineage
// root is reused, else a new one is created.
func (s *Service) ensureQuarterlyTarget(ctx context.Context, tx *store.Store, actor Actor, sourceID uuid.UUID, to Period) (*models.Goal, error) {
	src, err := tx.GetOwnedGoal(ctx, actor.UserID, sourceID)
	if err != nil {
		return nil, err
	}
	if src.Year == to.Year && src.Quarter == to.Quarter {
		return src, nil
	}

	root := src.LineageRoot()
	candidates, err := tx.GoalsByLineageRoot(ctx, actor.UserID, to.Year, to.Quarter, models.DepthQuarterly, root, src.ID)
	if err != nil {
		return nil, err
	}
	if len(candidates) > 0 {
		return &candidates[0], nil
	}

	ng := &models.Goal{
		UserID:  actor.UserID,
		Year:    to.Year,
		Quarter: to.Quarter,
		Title:   src.Title,
		Details: src.Details,
		DueDate: src.DueDate,
		Depth:   models.DepthQuarterly,
		InPath:  store.RootPath,
	}
	ng.SetCarryOver(src.BumpCarryOver())
	if err := tx.InsertGoal(ctx, ng); err != nil {
		return nil, err
	}
	return ng, nil
}

// ensureWeeklyTarget reuses a target-week goal whose lineage root matches
// (idempotent re-run) or creates a new one with the bumped carry-over under
// the resolved quarterly parent.
func (s *Service) ensureWeeklyTarget(ctx context.Context, tx *store.Store, actor Actor, e WeekStateToCopy, qTarget *models.Goal, to Period) (*models.Goal, error) {
	root := e.Goal.LineageRoot()
	candidates, err := tx.GoalsByLineageRoot(ctx, actor.UserID, to.Year, to.Quarter, models.DepthWeekly, root, e.Goal.ID)
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		st, err := tx.StateFor(ctx, candidates[i].ID, to.Year, to.Quarter, to.WeekNumber)
		if err != nil {
			return nil, err
		}
		if st != nil {
			return &candidates[i], nil
		}
	}

	inPath := store.RootPath
	var parentID *uuid.UUID
	if qTarget != nil {
		inPath = store.JoinPath(qTarget.InPath, qTarget.ID)
		parentID = &qTarget.ID
	}
	if err := store.ValidatePath(inPath); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	ng := &models.Goal{
		UserID:   actor.UserID,
		Year:     to.Year,
		Quarter:  to.Quarter,
		Title:    e.Goal.Title,
		Details:  e.Goal.Details,
		DueDate:  e.Goal.DueDate,
		Depth:    models.DepthWeekly,
		ParentID: parentID,
		InPath:   inPath,
	}
	ng.SetCarryOver(e.CarryOver)
	if err := tx.InsertGoal(ctx, ng); err != nil {
		return nil, err
	}
	return ng, nil
}

// moveDailyChild reparents a daily goal under the carried weekly goal,
// deletes its old week state, and inserts the target-week state with the
// day-of-week overridden when the move targets a specific day.
func (s *Service) moveDailyChild(ctx context.Context, tx *store.Store, actor Actor, d DailyGoalToMove, targetWeekly *models.Goal, to Period, toDay *int) error {
	g := d.Goal
	g.ParentID = &targetWeekly.ID
	g.InPath = store.JoinPath(targetWeekly.InPath, targetWeekly.ID)
	if err := store.ValidatePath(g.InPath); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	g.Year = to.Year
	g.Quarter = to.Quarter
	if err := tx.SaveGoal(ctx, &g); err != nil {
		return err
	}

	if err := tx.DeleteStates(ctx, []uuid.UUID{d.State.ID}); err != nil {
		return err
	}

	var day *int
	if toDay != nil {
		v := *toDay
		day = &v
	} else if d.State.DayOfWeek != nil {
		v := *d.State.DayOfWeek
		day = &v
	}

	st, err := tx.StateFor(ctx, g.ID, to.Year, to.Quarter, to.WeekNumber)
	if err != nil {
		return err
	}
	if st == nil {
		st = &models.GoalState{
			UserID:     actor.UserID,
			GoalID:     g.ID,
			Year:       to.Year,
			Quarter:    to.Quarter,
			WeekNumber: to.WeekNumber,
			DayOfWeek:  day,
		}
		return tx.InsertState(ctx, st)
	}
	st.DayOfWeek = day
	return tx.SaveState(ctx, st)
}

// applyQuarterlyUpdate applies the precedence rule: a goal already starred
// in the target week stays starred (pinned forced false); otherwise the
// carried flags are adopted, still with starred winning over pinned.
func (s *Service) applyQuarterlyUpdate(ctx context.Context, tx *store.Store, actor Actor, qu QuarterlyGoalToUpdate, target *models.Goal, to Period) error {
	st, err := tx.StateFor(ctx, target.ID, to.Year, to.Quarter, to.WeekNumber)
	if err != nil {
		return err
	}
	if st == nil {
		st = &models.GoalState{
			UserID:     actor.UserID,
			GoalID:     target.ID,
			Year:       to.Year,
			Quarter:    to.Quarter,
			WeekNumber: to.WeekNumber,
			IsStarred:  qu.IsStarred,
			IsPinned:   qu.IsPinned && !qu.IsStarred,
		}
		return tx.InsertState(ctx, st)
	}
	if st.IsStarred {
		st.IsPinned = false
	} else {
		st.IsStarred = qu.IsStarred
		st.IsPinned = qu.IsPinned && !qu.IsStarred
	}
	return tx.SaveState(ctx, st)
}
