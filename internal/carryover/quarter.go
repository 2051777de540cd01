package carryover

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/conradkoh/goals-sub001/internal/metrics"
	"github.com/conradkoh/goals-sub001/internal/models"
	"github.com/conradkoh/goals-sub001/internal/period"
	"github.com/conradkoh/goals-sub001/internal/store"
)

// MoveQuarter migrates the incomplete quarterly goals of one quarter into
// another, each in its own transaction: a failure on one goal is recorded as
// an {error} entry and does not abort the rest. Adhoc goals of the source
// quarter's weeks are moved (not copied) to the first target week afterwards.
// Callers needing strict atomicity run it with a single selected goal.
func (s *Service) MoveQuarter(ctx context.Context, actor Actor, req QuarterMoveRequest) (*QuarterMoveResult, error) {
	if err := validateQuarter(req.From); err != nil {
		return nil, err
	}
	if err := validateQuarter(req.To); err != nil {
		return nil, err
	}
	if req.From == req.To {
		return nil, fmt.Errorf("%w: source and target quarter are the same", ErrInvalidArgument)
	}

	start := time.Now()
	depth := models.DepthQuarterly
	quarterlies, err := s.store.GoalsByPeriod(ctx, actor.UserID, req.From.Year, req.From.Quarter, &depth)
	if err != nil {
		return nil, err
	}

	selected := make(map[uuid.UUID]bool, len(req.SelectedQuarterlyGoalIDs))
	for _, id := range req.SelectedQuarterlyGoalIDs {
		selected[id] = true
	}

	res := &QuarterMoveResult{}
	for _, q := range quarterlies {
		if q.IsComplete {
			continue
		}
		if len(selected) > 0 && !selected[q.ID] {
			continue
		}
		entry := QuarterMoveEntry{GoalID: q.ID}
		r, err := s.MoveQuarterlyGoal(ctx, actor, q.ID, req.From, req.To)
		if err != nil {
			s.log.Warn("quarterly goal migration failed",
				zap.String("goalId", q.ID.String()),
				zap.Error(err))
			entry.Error = err.Error()
		} else {
			id := r.NewGoalID
			entry.NewGoalID = &id
			entry.WeeklyGoalsMigrated = r.WeeklyGoalsMigrated
			entry.WeeklyGoalsReused = r.WeeklyGoalsReused
			entry.DailyGoalsMigrated = r.DailyGoalsMigrated
			entry.DailyGoalsReused = r.DailyGoalsReused
			entry.QuarterlyGoalWasCreated = r.QuarterlyGoalWasCreated
			res.QuarterlyGoalsCopied++
		}
		res.Results = append(res.Results, entry)
	}

	moved, err := s.moveAdhocToQuarter(ctx, actor, req)
	if err != nil {
		metrics.MovesTotal.WithLabelValues("quarter", "error").Inc()
		// The per-goal migrations are already committed in their own
		// transactions; hand their outcomes back with the error.
		return res, err
	}
	res.AdhocGoalsMoved = moved

	metrics.MovesTotal.WithLabelValues("quarter", "ok").Inc()
	metrics.MoveDuration.WithLabelValues("quarter").Observe(time.Since(start).Seconds())
	return res, nil
}

// MoveQuarterlyGoal migrates one quarterly goal and its last-week snapshot
// of weekly/daily goals into the target quarter, in a single transaction.
func (s *Service) MoveQuarterlyGoal(ctx context.Context, actor Actor, goalID uuid.UUID, from, to QuarterPeriod) (*MoveQuarterlyGoalResult, error) {
	if err := validateQuarter(from); err != nil {
		return nil, err
	}
	if err := validateQuarter(to); err != nil {
		return nil, err
	}
	if from == to {
		return nil, fmt.Errorf("%w: source and target quarter are the same", ErrInvalidArgument)
	}

	var result *MoveQuarterlyGoalResult
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		r, err := s.migrateQuarterlyGoal(ctx, tx, actor, goalID, from, to)
		result = r
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) migrateQuarterlyGoal(ctx context.Context, tx *store.Store, actor Actor, goalID uuid.UUID, from, to QuarterPeriod) (*MoveQuarterlyGoalResult, error) {
	g, err := tx.GetOwnedGoal(ctx, actor.UserID, goalID)
	if err != nil {
		return nil, err
	}
	if g.Depth != models.DepthQuarterly {
		return nil, fmt.Errorf("%w: goal %s is not a quarterly goal", ErrInvalidArgument, goalID)
	}
	if g.Year != from.Year || g.Quarter != from.Quarter {
		return nil, fmt.Errorf("%w: goal %s is not in %d-Q%d", ErrInvalidArgument, goalID, from.Year, from.Quarter)
	}

	weeklies, err := tx.ChildrenOf(ctx, actor.UserID, []uuid.UUID{g.ID})
	if err != nil {
		return nil, err
	}
	var weeklyIDs []uuid.UUID
	for _, w := range weeklies {
		if w.Depth == models.DepthWeekly {
			weeklyIDs = append(weeklyIDs, w.ID)
		}
	}
	wstates, err := tx.StatesByGoals(ctx, weeklyIDs, from.Year, from.Quarter)
	if err != nil {
		return nil, err
	}

	// Last non-empty week of the source quarter for this goal's weekly
	// children; fall back to the last calendar week when no state exists.
	lastWeek := 0
	for _, st := range wstates {
		if st.WeekNumber > lastWeek {
			lastWeek = st.WeekNumber
		}
	}
	if lastWeek == 0 {
		weeks, _ := period.WeeksOf(from.Year, from.Quarter)
		lastWeek = weeks[len(weeks)-1]
	}

	// Build or reuse the target quarterly goal.
	root := g.LineageRoot()
	candidates, err := tx.GoalsByLineageRoot(ctx, actor.UserID, to.Year, to.Quarter, models.DepthQuarterly, root, g.ID)
	if err != nil {
		return nil, err
	}
	res := &MoveQuarterlyGoalResult{}
	var tq *models.Goal
	if len(candidates) > 0 {
		tq = &candidates[0]
	} else {
		tq = &models.Goal{
			UserID:  actor.UserID,
			Year:    to.Year,
			Quarter: to.Quarter,
			Title:   g.Title,
			Details: g.Details,
			DueDate: g.DueDate,
			Depth:   models.DepthQuarterly,
			InPath:  store.RootPath,
		}
		tq.SetCarryOver(g.BumpCarryOver())
		if err := tx.InsertGoal(ctx, tq); err != nil {
			return nil, err
		}
		res.QuarterlyGoalWasCreated = true
	}
	res.NewGoalID = tq.ID

	if err := tx.MoveFireFlag(ctx, actor.UserID, g.ID, tq.ID); err != nil {
		return nil, err
	}

	// Source starred/pinned from the goal's latest state in the source
	// quarter; carried only onto the first target week.
	gStates, err := tx.StatesByGoals(ctx, []uuid.UUID{g.ID}, from.Year, from.Quarter)
	if err != nil {
		return nil, err
	}
	srcStar, srcPin, srcWeek := false, false, 0
	for _, st := range gStates {
		if st.WeekNumber > srcWeek {
			srcWeek = st.WeekNumber
			srcStar = st.IsStarred
			srcPin = st.IsPinned
		}
	}

	// Seed a state row for every week of the target quarter.
	qWeeks, firstWeek := period.WeeksOf(to.Year, to.Quarter)
	for _, wk := range qWeeks {
		st, err := tx.StateFor(ctx, tq.ID, to.Year, to.Quarter, wk)
		if err != nil {
			return nil, err
		}
		if st == nil {
			st = &models.GoalState{
				UserID:     actor.UserID,
				GoalID:     tq.ID,
				Year:       to.Year,
				Quarter:    to.Quarter,
				WeekNumber: wk,
			}
			if wk == firstWeek {
				st.IsStarred = srcStar
				st.IsPinned = srcPin && !srcStar
			}
			if c := tq.CarryOver(); c != nil {
				st.SetCarryOver(*c)
			}
			if err := tx.InsertState(ctx, st); err != nil {
				return nil, err
			}
		} else if wk == firstWeek && !st.IsStarred && (srcStar || srcPin) {
			st.IsStarred = srcStar
			st.IsPinned = srcPin && !srcStar
			if err := tx.SaveState(ctx, st); err != nil {
				return nil, err
			}
		}
	}

	// Snapshot: weekly goals present in the last non-empty week and still
	// incomplete, deduplicated by lineage root.
	stateAtLast := make(map[uuid.UUID]models.GoalState)
	for _, st := range wstates {
		if st.WeekNumber == lastWeek {
			stateAtLast[st.GoalID] = st
		}
	}
	byRoot := make(map[uuid.UUID]models.Goal)
	var rootOrder []uuid.UUID
	for _, w := range weeklies {
		if w.Depth != models.DepthWeekly || w.IsComplete {
			continue
		}
		if _, ok := stateAtLast[w.ID]; !ok {
			continue
		}
		wroot := w.LineageRoot()
		prev, ok := byRoot[wroot]
		if !ok {
			rootOrder = append(rootOrder, wroot)
			byRoot[wroot] = w
			continue
		}
		if w.CreatedAt.After(prev.CreatedAt) {
			byRoot[wroot] = w
		}
	}

	snapshotIDs := make([]uuid.UUID, 0, len(byRoot))
	for _, wroot := range rootOrder {
		snapshotIDs = append(snapshotIDs, byRoot[wroot].ID)
	}
	dailies, err := tx.ChildrenOf(ctx, actor.UserID, snapshotIDs)
	if err != nil {
		return nil, err
	}
	var dailyIDs []uuid.UUID
	dailiesByParent := make(map[uuid.UUID][]models.Goal)
	for _, d := range dailies {
		if d.Depth != models.DepthDaily || d.ParentID == nil {
			continue
		}
		dailyIDs = append(dailyIDs, d.ID)
		dailiesByParent[*d.ParentID] = append(dailiesByParent[*d.ParentID], d)
	}
	dstates, err := tx.StatesByGoals(ctx, dailyIDs, from.Year, from.Quarter)
	if err != nil {
		return nil, err
	}
	dailyStateAtLast := make(map[uuid.UUID]models.GoalState)
	for _, st := range dstates {
		if st.WeekNumber == lastWeek {
			dailyStateAtLast[st.GoalID] = st
		}
	}

	for _, wroot := range rootOrder {
		w := byRoot[wroot]
		tw, reused, err := s.migrateTreeGoal(ctx, tx, actor, &w, tq, to, firstWeek, nil)
		if err != nil {
			return nil, err
		}
		if reused {
			res.WeeklyGoalsReused++
		} else {
			res.WeeklyGoalsMigrated++
		}

		for _, d := range dailiesByParent[w.ID] {
			ds, ok := dailyStateAtLast[d.ID]
			if !ok || d.IsComplete {
				continue
			}
			// Daily goals default to Monday when no day-of-week state is
			// recorded; a known limitation, not an error.
			day := 1
			if ds.DayOfWeek != nil {
				day = *ds.DayOfWeek
			}
			_, dreused, err := s.migrateTreeGoal(ctx, tx, actor, &d, tw, to, firstWeek, &day)
			if err != nil {
				return nil, err
			}
			if dreused {
				res.DailyGoalsReused++
			} else {
				res.DailyGoalsMigrated++
			}
		}
	}

	return res, nil
}

// migrateTreeGoal copies one weekly or daily goal into the target quarter
// under the given parent, reusing an existing goal with the same lineage
// root when its parent matches. Parent drift is logged and the goal is
// recreated instead.
func (s *Service) migrateTreeGoal(ctx context.Context, tx *store.Store, actor Actor, src *models.Goal, parent *models.Goal, to QuarterPeriod, firstWeek int, dayOfWeek *int) (*models.Goal, bool, error) {
	root := src.LineageRoot()
	candidates, err := tx.GoalsByLineageRoot(ctx, actor.UserID, to.Year, to.Quarter, src.Depth, root, src.ID)
	if err != nil {
		return nil, false, err
	}

	var target *models.Goal
	reused := false
	if len(candidates) > 0 {
		cand := candidates[0]
		if cand.ParentID != nil && parent != nil && *cand.ParentID == parent.ID {
			target = &cand
			reused = true
		} else {
			s.log.Warn("lineage match under a different parent, recreating",
				zap.String("goalId", src.ID.String()),
				zap.String("existingId", cand.ID.String()),
				zap.String("root", root.String()))
		}
	}

	if target == nil {
		inPath := store.RootPath
		var parentID *uuid.UUID
		if parent != nil {
			inPath = store.JoinPath(parent.InPath, parent.ID)
			parentID = &parent.ID
		}
		if err := store.ValidatePath(inPath); err != nil {
			return nil, false, fmt.Errorf("%w: %v", ErrInvalidState, err)
		}
		target = &models.Goal{
			UserID:   actor.UserID,
			Year:     to.Year,
			Quarter:  to.Quarter,
			Title:    src.Title,
			Details:  src.Details,
			DueDate:  src.DueDate,
			Depth:    src.Depth,
			ParentID: parentID,
			InPath:   inPath,
		}
		target.SetCarryOver(src.BumpCarryOver())
		if err := tx.InsertGoal(ctx, target); err != nil {
			return nil, false, err
		}
		if err := tx.MoveFireFlag(ctx, actor.UserID, src.ID, target.ID); err != nil {
			return nil, false, err
		}
	}

	st, err := tx.StateFor(ctx, target.ID, to.Year, to.Quarter, firstWeek)
	if err != nil {
		return nil, false, err
	}
	if st == nil {
		st = &models.GoalState{
			UserID:     actor.UserID,
			GoalID:     target.ID,
			Year:       to.Year,
			Quarter:    to.Quarter,
			WeekNumber: firstWeek,
			DayOfWeek:  dayOfWeek,
		}
		if c := target.CarryOver(); c != nil {
			st.SetCarryOver(*c)
		}
		if err := tx.InsertState(ctx, st); err != nil {
			return nil, false, err
		}
	}
	return target, reused, nil
}

// moveAdhocToQuarter moves (not copies) the source quarter's adhoc goals to
// the first week of the target quarter, keeping their domain association.
func (s *Service) moveAdhocToQuarter(ctx context.Context, actor Actor, req QuarterMoveRequest) (int, error) {
	weeks, _ := period.WeeksOf(req.From.Year, req.From.Quarter)
	first := period.FirstWeekOf(req.To.Year, req.To.Quarter)

	selected := make(map[uuid.UUID]bool, len(req.SelectedAdhocGoalIDs))
	for _, id := range req.SelectedAdhocGoalIDs {
		selected[id] = true
	}

	moved := 0
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		adhocs, err := tx.AdhocByWeeks(ctx, actor.UserID, req.From.Year, weeks)
		if err != nil {
			return err
		}
		for i := range adhocs {
			g := adhocs[i]
			if len(selected) > 0 {
				if !selected[g.ID] {
					continue
				}
			} else if g.IsComplete {
				continue
			}
			wk := first.WeekNumber
			g.Year = first.Year
			g.Quarter = req.To.Quarter
			g.WeekNumber = &wk
			if err := tx.SaveGoal(ctx, &g); err != nil {
				return err
			}
			moved++
			metrics.GoalsCarriedTotal.WithLabelValues("adhoc").Inc()
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return moved, nil
}
