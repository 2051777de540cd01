package carryover

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/conradkoh/goals-sub001/internal/metrics"
	"github.com/conradkoh/goals-sub001/internal/models"
	"github.com/conradkoh/goals-sub001/internal/store"
)

// MoveDay moves the daily tasks of one day to another. Same-week moves patch
// only the day of week; cross-week moves merge into the goal's target-week
// state when one exists, else repoint the source row, so a goal keeps one
// state per week. Completed tasks stay put unless MoveOnlyIncomplete is
// explicitly false.
func (s *Service) MoveDay(ctx context.Context, actor Actor, req DayMoveRequest) (*DayMoveResult, error) {
	if err := validateDayPeriod(req.From); err != nil {
		return nil, err
	}
	if err := validateDayPeriod(req.To); err != nil {
		return nil, err
	}
	onlyIncomplete := true
	if req.MoveOnlyIncomplete != nil {
		onlyIncomplete = *req.MoveOnlyIncomplete
	}

	start := time.Now()
	var result *DayMoveResult
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		states, err := tx.StatesByWeek(ctx, actor.UserID, req.From.Year, req.From.Quarter, req.From.WeekNumber)
		if err != nil {
			return err
		}
		stateByGoal := make(map[uuid.UUID]models.GoalState, len(states))
		for _, st := range states {
			stateByGoal[st.GoalID] = st
		}

		var selected []models.GoalState
		var selectedIDs []uuid.UUID
		for _, st := range states {
			if st.DayOfWeek == nil || *st.DayOfWeek != req.From.DayOfWeek {
				continue
			}
			if onlyIncomplete && st.IsComplete {
				continue
			}
			selected = append(selected, st)
			selectedIDs = append(selectedIDs, st.GoalID)
		}

		goals, err := tx.GoalsByIDs(ctx, actor.UserID, selectedIDs)
		if err != nil {
			return err
		}
		goalByID := make(map[uuid.UUID]models.Goal, len(goals))
		var parentIDs []uuid.UUID
		for _, g := range goals {
			if g.Depth != models.DepthDaily {
				continue
			}
			goalByID[g.ID] = g
			if g.ParentID != nil {
				parentIDs = append(parentIDs, *g.ParentID)
			}
		}

		// Weekly parents, then their quarterly parents, batch-fetched.
		weeklies, err := tx.GoalsByIDs(ctx, actor.UserID, parentIDs)
		if err != nil {
			return err
		}
		weeklyByID := make(map[uuid.UUID]models.Goal, len(weeklies))
		var quarterlyIDs []uuid.UUID
		for _, w := range weeklies {
			weeklyByID[w.ID] = w
			if w.ParentID != nil {
				quarterlyIDs = append(quarterlyIDs, *w.ParentID)
			}
		}
		quarterlies, err := tx.GoalsByIDs(ctx, actor.UserID, quarterlyIDs)
		if err != nil {
			return err
		}
		quarterlyByID := make(map[uuid.UUID]models.Goal, len(quarterlies))
		for _, q := range quarterlies {
			quarterlyByID[q.ID] = q
		}

		result = &DayMoveResult{}
		for _, st := range selected {
			g, ok := goalByID[st.GoalID]
			if !ok {
				continue
			}
			task := TaskSummary{ID: g.ID, Title: g.Title}
			if g.ParentID != nil {
				if w, ok := weeklyByID[*g.ParentID]; ok {
					task.WeeklyGoal = &GoalRef{ID: w.ID, Title: w.Title}
					if w.ParentID != nil {
						if q, ok := quarterlyByID[*w.ParentID]; ok {
							ref := &QuarterlyGoalRef{ID: q.ID, Title: q.Title}
							if qs, ok := stateByGoal[q.ID]; ok {
								ref.IsStarred = qs.IsStarred
								ref.IsPinned = qs.IsPinned
							}
							task.QuarterlyGoal = ref
						}
					}
				}
			}
			result.Tasks = append(result.Tasks, task)

			if req.DryRun {
				continue
			}

			day := req.To.DayOfWeek
			sameWeek := req.From.Year == req.To.Year &&
				req.From.Quarter == req.To.Quarter &&
				req.From.WeekNumber == req.To.WeekNumber
			if sameWeek {
				st.DayOfWeek = &day
				if err := tx.SaveState(ctx, &st); err != nil {
					return err
				}
			} else {
				// The goal may already hold a state in the target week; merge
				// into it so a goal never has two rows for one week.
				existing, err := tx.StateFor(ctx, st.GoalID, req.To.Year, req.To.Quarter, req.To.WeekNumber)
				if err != nil {
					return err
				}
				if existing != nil {
					existing.DayOfWeek = &day
					if st.IsComplete {
						existing.IsComplete = true
					}
					if err := tx.SaveState(ctx, existing); err != nil {
						return err
					}
					if err := tx.DeleteStates(ctx, []uuid.UUID{st.ID}); err != nil {
						return err
					}
				} else {
					st.DayOfWeek = &day
					st.Year = req.To.Year
					st.Quarter = req.To.Quarter
					st.WeekNumber = req.To.WeekNumber
					if err := tx.SaveState(ctx, &st); err != nil {
						return err
					}
				}
			}
			result.TasksMoved++
			metrics.GoalsCarriedTotal.WithLabelValues("daily").Inc()
		}
		return nil
	})
	if err != nil {
		metrics.MovesTotal.WithLabelValues("day", "error").Inc()
		return nil, err
	}
	if !req.DryRun {
		metrics.MovesTotal.WithLabelValues("day", "ok").Inc()
		metrics.MoveDuration.WithLabelValues("day").Observe(time.Since(start).Seconds())
	}
	return result, nil
}
