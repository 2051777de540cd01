package carryover

import (
	"context"
	"fmt"
	"strings"

	"github.com/conradkoh/goals-sub001/internal/metrics"
	"github.com/conradkoh/goals-sub001/internal/models"
	"github.com/conradkoh/goals-sub001/internal/period"
	"github.com/conradkoh/goals-sub001/internal/store"
)

// Adhoc goals may nest under another adhoc goal up to this depth.
const maxAdhocDepth = 3

// The parent walk gives up after this many hops; the tree is at most three
// levels deep, so exceeding it means corrupted data.
const adhocWalkLimit = 10

// CreateAdhocGoal creates a week-scoped adhoc goal, optionally nested under
// another adhoc goal. Domain and week are inherited from the parent when not
// given explicitly.
func (s *Service) CreateAdhocGoal(ctx context.Context, actor Actor, req models.CreateAdhocGoalRequest) (*models.Goal, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidArgument)
	}

	var created *models.Goal
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		g := &models.Goal{
			UserID:     actor.UserID,
			Title:      req.Title,
			Details:    req.Details,
			DueDate:    req.DueDate,
			Depth:      models.DepthAdhoc,
			InPath:     store.RootPath,
			DomainID:   req.DomainID,
			WeekNumber: req.WeekNumber,
		}
		if req.Year != nil {
			g.Year = *req.Year
		}

		if req.ParentID != nil {
			parent, err := tx.GetOwnedGoal(ctx, actor.UserID, *req.ParentID)
			if err != nil {
				return err
			}
			if parent.Depth != models.DepthAdhoc {
				return fmt.Errorf("%w: adhoc goals may only nest under adhoc goals", ErrInvalidArgument)
			}
			depth, err := s.adhocDepth(ctx, tx, actor, parent)
			if err != nil {
				return err
			}
			if depth+1 > maxAdhocDepth {
				return fmt.Errorf("%w: adhoc nesting exceeds depth %d", ErrInvalidArgument, maxAdhocDepth)
			}
			g.ParentID = &parent.ID
			g.InPath = store.JoinPath(parent.InPath, parent.ID)
			if g.DomainID == nil {
				g.DomainID = parent.DomainID
			}
			if g.WeekNumber == nil {
				g.WeekNumber = parent.WeekNumber
			}
			if req.Year == nil {
				g.Year = parent.Year
			}
		}

		if g.WeekNumber == nil || g.Year == 0 {
			return fmt.Errorf("%w: adhoc goals need a year and week number", ErrInvalidArgument)
		}
		// Keep the quarter column consistent with the week for partition
		// queries that span both lanes.
		g.Quarter = period.QuarterOfWeek(g.Year, *g.WeekNumber)

		if err := store.ValidatePath(g.InPath); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidState, err)
		}
		created = g
		return tx.InsertGoal(ctx, g)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// adhocDepth counts how deep the parent chain of a goal already is (a goal
// with no parent has depth 1).
func (s *Service) adhocDepth(ctx context.Context, tx *store.Store, actor Actor, g *models.Goal) (int, error) {
	depth := 1
	cur := g
	for i := 0; cur.ParentID != nil; i++ {
		if i >= adhocWalkLimit {
			return 0, fmt.Errorf("%w: adhoc parent chain exceeds %d hops", ErrInvalidState, adhocWalkLimit)
		}
		parent, err := tx.GetOwnedGoal(ctx, actor.UserID, *cur.ParentID)
		if err != nil {
			return 0, err
		}
		depth++
		cur = parent
	}
	return depth, nil
}

// MoveAdhocWeek moves the adhoc goals of one (year, week) partition to
// another, incomplete-only by default, with the same dry-run/commit pattern
// as goal moves.
func (s *Service) MoveAdhocWeek(ctx context.Context, actor Actor, req AdhocMoveRequest) (*AdhocMoveResult, error) {
	for _, w := range []AdhocWeek{req.From, req.To} {
		if w.Year < 1 || w.WeekNumber < 1 || w.WeekNumber > 53 {
			return nil, fmt.Errorf("%w: invalid week %d-W%d", ErrInvalidArgument, w.Year, w.WeekNumber)
		}
	}
	onlyIncomplete := true
	if req.MoveOnlyIncomplete != nil {
		onlyIncomplete = *req.MoveOnlyIncomplete
	}

	var result *AdhocMoveResult
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		adhocs, err := tx.AdhocByWeek(ctx, actor.UserID, req.From.Year, req.From.WeekNumber)
		if err != nil {
			return err
		}
		result = &AdhocMoveResult{}
		for i := range adhocs {
			g := adhocs[i]
			if onlyIncomplete && g.IsComplete {
				continue
			}
			result.Goals = append(result.Goals, GoalRef{ID: g.ID, Title: g.Title})
			if req.DryRun {
				continue
			}
			wk := req.To.WeekNumber
			g.Year = req.To.Year
			g.WeekNumber = &wk
			g.Quarter = period.QuarterOfWeek(req.To.Year, wk)
			if err := tx.SaveGoal(ctx, &g); err != nil {
				return err
			}
			result.GoalsMoved++
			metrics.GoalsCarriedTotal.WithLabelValues("adhoc").Inc()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
