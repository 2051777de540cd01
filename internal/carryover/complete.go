package carryover

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/conradkoh/goals-sub001/internal/models"
	"github.com/conradkoh/goals-sub001/internal/store"
)

// CompleteGoal marks a goal complete or incomplete, mirrors the flag into
// its state for the given week, and clears the fire flag on completion.
func (s *Service) CompleteGoal(ctx context.Context, actor Actor, goalID uuid.UUID, week Period, isComplete bool) (*models.Goal, error) {
	if err := validatePeriod(week); err != nil {
		return nil, err
	}

	var updated *models.Goal
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		g, err := tx.GetOwnedGoal(ctx, actor.UserID, goalID)
		if err != nil {
			return err
		}
		g.IsComplete = isComplete
		if isComplete {
			now := time.Now()
			g.CompletedAt = &now
		} else {
			g.CompletedAt = nil
		}
		if err := tx.SaveGoal(ctx, g); err != nil {
			return err
		}

		st, err := tx.StateFor(ctx, g.ID, week.Year, week.Quarter, week.WeekNumber)
		if err != nil {
			return err
		}
		if st == nil {
			st = &models.GoalState{
				UserID:     actor.UserID,
				GoalID:     g.ID,
				Year:       week.Year,
				Quarter:    week.Quarter,
				WeekNumber: week.WeekNumber,
				IsComplete: isComplete,
			}
			if err := tx.InsertState(ctx, st); err != nil {
				return err
			}
		} else {
			st.IsComplete = isComplete
			if err := tx.SaveState(ctx, st); err != nil {
				return err
			}
		}

		// A completed goal is no longer urgent.
		if isComplete {
			if err := tx.ClearFireFlag(ctx, actor.UserID, g.ID); err != nil {
				return err
			}
		}
		updated = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SetFireFlag marks a goal as urgent.
func (s *Service) SetFireFlag(ctx context.Context, actor Actor, goalID uuid.UUID) error {
	return s.store.WithTx(ctx, func(tx *store.Store) error {
		g, err := tx.GetOwnedGoal(ctx, actor.UserID, goalID)
		if err != nil {
			return err
		}
		return tx.SetFireFlag(ctx, actor.UserID, g.ID)
	})
}

// ClearFireFlag removes the urgent marker from a goal.
func (s *Service) ClearFireFlag(ctx context.Context, actor Actor, goalID uuid.UUID) error {
	return s.store.WithTx(ctx, func(tx *store.Store) error {
		g, err := tx.GetOwnedGoal(ctx, actor.UserID, goalID)
		if err != nil {
			return err
		}
		return tx.ClearFireFlag(ctx, actor.UserID, g.ID)
	})
}
