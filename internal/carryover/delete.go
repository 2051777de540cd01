package carryover

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/conradkoh/goals-sub001/internal/metrics"
	"github.com/conradkoh/goals-sub001/internal/models"
	"github.com/conradkoh/goals-sub001/internal/store"
)

// PreviewDelete returns the subtree that DeleteGoal would remove, as a tree
// rooted at the requested goal with the week numbers each node has states in.
func (s *Service) PreviewDelete(ctx context.Context, actor Actor, goalID uuid.UUID) (*DeletePreviewNode, error) {
	var node *DeletePreviewNode
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		root, goals, err := s.collectSubtree(ctx, tx, actor, goalID)
		if err != nil {
			return err
		}
		node, err = s.buildPreviewTree(ctx, tx, root, goals)
		return err
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

// DeleteGoal removes a goal and every inPath-prefixed descendant together
// with all their state rows and fire flags: states first, then goals, in two
// batched passes. Deleting a missing or foreign goal is an error, never a
// no-op. Returns the deleted root id.
func (s *Service) DeleteGoal(ctx context.Context, actor Actor, goalID uuid.UUID) (uuid.UUID, error) {
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		_, goals, err := s.collectSubtree(ctx, tx, actor, goalID)
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, len(goals))
		for i, g := range goals {
			ids[i] = g.ID
		}
		if err := tx.DeleteStatesByGoals(ctx, ids); err != nil {
			return err
		}
		if err := tx.ClearFireFlags(ctx, actor.UserID, ids); err != nil {
			return err
		}
		return tx.DeleteGoals(ctx, ids)
	})
	if err != nil {
		metrics.MovesTotal.WithLabelValues("delete", "error").Inc()
		return uuid.Nil, err
	}
	metrics.MovesTotal.WithLabelValues("delete", "ok").Inc()
	return goalID, nil
}

// collectSubtree loads the goal and every descendant whose inPath lies in
// [prefix, NextPrefix(prefix)) within the same (user, year, quarter)
// partition.
func (s *Service) collectSubtree(ctx context.Context, tx *store.Store, actor Actor, goalID uuid.UUID) (*models.Goal, []models.Goal, error) {
	g, err := tx.GetOwnedGoal(ctx, actor.UserID, goalID)
	if err != nil {
		return nil, nil, err
	}
	prefix := store.JoinPath(g.InPath, g.ID)
	if err := store.ValidatePath(prefix); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	descendants, err := tx.SubtreeGoals(ctx, actor.UserID, g.Year, g.Quarter, prefix)
	if err != nil {
		return nil, nil, err
	}
	return g, append([]models.Goal{*g}, descendants...), nil
}

func (s *Service) buildPreviewTree(ctx context.Context, tx *store.Store, root *models.Goal, goals []models.Goal) (*DeletePreviewNode, error) {
	nodes := make(map[uuid.UUID]*DeletePreviewNode, len(goals))
	for _, g := range goals {
		states, err := tx.StatesByGoal(ctx, g.ID)
		if err != nil {
			return nil, err
		}
		weeks := make([]int, 0, len(states))
		for _, st := range states {
			weeks = append(weeks, st.WeekNumber)
		}
		nodes[g.ID] = &DeletePreviewNode{
			ID:    g.ID,
			Title: g.Title,
			Depth: g.Depth,
			Weeks: weeks,
		}
	}
	for _, g := range goals {
		if g.ID == root.ID || g.ParentID == nil {
			continue
		}
		if parent, ok := nodes[*g.ParentID]; ok {
			parent.Children = append(parent.Children, nodes[g.ID])
		}
	}
	return nodes[root.ID], nil
}
