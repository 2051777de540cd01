// Package store is the goal-tree repository: owner-checked access to goals,
// per-week goal states, and fire flags, plus the materialized-path subtree
// scan the deletion cascade is built on. All multi-row lookups are batched
// (`IN` queries) so callers never issue per-goal round trips.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/conradkoh/goals-sub001/internal/models"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithTx runs fn against a transactional store. All reads and writes of one
// planner+executor invocation go through a single call.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// RequireOwner checks that the goal belongs to the user.
func (s *Store) RequireOwner(userID uuid.UUID, g *models.Goal) error {
	if g.UserID != userID {
		return fmt.Errorf("goal %s: %w", g.ID, ErrUnauthorized)
	}
	return nil
}

func (s *Store) GetGoal(ctx context.Context, id uuid.UUID) (*models.Goal, error) {
	var g models.Goal
	if err := s.db.WithContext(ctx).First(&g, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("goal %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &g, nil
}

// GetOwnedGoal loads a goal and verifies ownership.
func (s *Store) GetOwnedGoal(ctx context.Context, userID, id uuid.UUID) (*models.Goal, error) {
	g, err := s.GetGoal(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.RequireOwner(userID, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Store) GoalsByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]models.Goal, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var goals []models.Goal
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Find(&goals).Error
	return goals, err
}

// ChildrenOf batch-loads the direct children of the given parents.
func (s *Store) ChildrenOf(ctx context.Context, userID uuid.UUID, parentIDs []uuid.UUID) ([]models.Goal, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	var goals []models.Goal
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND parent_id IN ?", userID, parentIDs).
		Find(&goals).Error
	return goals, err
}

// GoalsByPeriod lists goals in a (user, year, quarter) partition, optionally
// filtered by depth.
func (s *Store) GoalsByPeriod(ctx context.Context, userID uuid.UUID, year, quarter int, depth *models.GoalDepth) ([]models.Goal, error) {
	q := s.db.WithContext(ctx).
		Where("user_id = ? AND year = ? AND quarter = ?", userID, year, quarter)
	if depth != nil {
		q = q.Where("depth = ?", *depth)
	}
	var goals []models.Goal
	err := q.Order("created_at ASC").Find(&goals).Error
	return goals, err
}

// GoalsByLineageRoot finds goals in a target partition whose carry-over chain
// shares the given root (the root goal itself counts), excluding one id —
// normally the source goal of a move, which must never be its own target.
func (s *Store) GoalsByLineageRoot(ctx context.Context, userID uuid.UUID, year, quarter int, depth models.GoalDepth, root, exclude uuid.UUID) ([]models.Goal, error) {
	var goals []models.Goal
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND year = ? AND quarter = ? AND depth = ?", userID, year, quarter, depth).
		Where("carry_root_goal_id = ? OR id = ?", root, root).
		Where("id <> ?", exclude).
		Order("created_at ASC").
		Find(&goals).Error
	return goals, err
}

func (s *Store) InsertGoal(ctx context.Context, g *models.Goal) error {
	return s.db.WithContext(ctx).Create(g).Error
}

// SaveGoal persists all fields of the goal. Patches go through here so GORM
// hooks always run.
func (s *Store) SaveGoal(ctx context.Context, g *models.Goal) error {
	return s.db.WithContext(ctx).Save(g).Error
}

func (s *Store) DeleteGoals(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Goal{}).Error
}

// SubtreeGoals selects every goal in the same (user, year, quarter) partition
// whose inPath lies in [prefix, NextPrefix(prefix)). The range scan is the
// correctness-critical primitive: the trailing path separator keeps sibling
// subtrees with id string prefixes out of the range.
func (s *Store) SubtreeGoals(ctx context.Context, userID uuid.UUID, year, quarter int, prefix string) ([]models.Goal, error) {
	var goals []models.Goal
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND year = ? AND quarter = ?", userID, year, quarter).
		Where("in_path >= ? AND in_path < ?", prefix, NextPrefix(prefix)).
		Find(&goals).Error
	return goals, err
}

// StatesByWeek loads all goal states for one (user, year, quarter, week).
func (s *Store) StatesByWeek(ctx context.Context, userID uuid.UUID, year, quarter, weekNumber int) ([]models.GoalState, error) {
	var states []models.GoalState
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND year = ? AND quarter = ? AND week_number = ?", userID, year, quarter, weekNumber).
		Find(&states).Error
	return states, err
}

// StatesByGoals loads all states for the given goals in one quarter, across
// all of its weeks.
func (s *Store) StatesByGoals(ctx context.Context, goalIDs []uuid.UUID, year, quarter int) ([]models.GoalState, error) {
	if len(goalIDs) == 0 {
		return nil, nil
	}
	var states []models.GoalState
	err := s.db.WithContext(ctx).
		Where("goal_id IN ? AND year = ? AND quarter = ?", goalIDs, year, quarter).
		Find(&states).Error
	return states, err
}

// StateFor loads the state of one goal in one week, or nil when none exists.
func (s *Store) StateFor(ctx context.Context, goalID uuid.UUID, year, quarter, weekNumber int) (*models.GoalState, error) {
	var st models.GoalState
	err := s.db.WithContext(ctx).
		Where("goal_id = ? AND year = ? AND quarter = ? AND week_number = ?", goalID, year, quarter, weekNumber).
		First(&st).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Store) InsertState(ctx context.Context, st *models.GoalState) error {
	return s.db.WithContext(ctx).Create(st).Error
}

func (s *Store) SaveState(ctx context.Context, st *models.GoalState) error {
	return s.db.WithContext(ctx).Save(st).Error
}

func (s *Store) DeleteStates(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.GoalState{}).Error
}

func (s *Store) DeleteStatesByGoals(ctx context.Context, goalIDs []uuid.UUID) error {
	if len(goalIDs) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Where("goal_id IN ?", goalIDs).Delete(&models.GoalState{}).Error
}

// StatesByGoal loads every state row of one goal, ordered by week.
func (s *Store) StatesByGoal(ctx context.Context, goalID uuid.UUID) ([]models.GoalState, error) {
	var states []models.GoalState
	err := s.db.WithContext(ctx).
		Where("goal_id = ?", goalID).
		Order("year ASC, week_number ASC").
		Find(&states).Error
	return states, err
}

// FireFlagged reports which of the given goals carry a fire flag.
func (s *Store) FireFlagged(ctx context.Context, userID uuid.UUID, goalIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	flagged := make(map[uuid.UUID]bool)
	if len(goalIDs) == 0 {
		return flagged, nil
	}
	var flags []models.FireFlag
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND goal_id IN ?", userID, goalIDs).
		Find(&flags).Error
	if err != nil {
		return nil, err
	}
	for _, f := range flags {
		flagged[f.GoalID] = true
	}
	return flagged, nil
}

func (s *Store) SetFireFlag(ctx context.Context, userID, goalID uuid.UUID) error {
	flag := models.FireFlag{UserID: userID, GoalID: goalID}
	return s.db.WithContext(ctx).
		Where("user_id = ? AND goal_id = ?", userID, goalID).
		FirstOrCreate(&flag).Error
}

func (s *Store) ClearFireFlag(ctx context.Context, userID, goalID uuid.UUID) error {
	return s.db.WithContext(ctx).
		Where("user_id = ? AND goal_id = ?", userID, goalID).
		Delete(&models.FireFlag{}).Error
}

func (s *Store) ClearFireFlags(ctx context.Context, userID uuid.UUID, goalIDs []uuid.UUID) error {
	if len(goalIDs) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Where("user_id = ? AND goal_id IN ?", userID, goalIDs).
		Delete(&models.FireFlag{}).Error
}

// MoveFireFlag transfers a fire flag from one goal to another, so a carried
// goal keeps its urgency and the old id is left unflagged.
func (s *Store) MoveFireFlag(ctx context.Context, userID, fromGoalID, toGoalID uuid.UUID) error {
	flagged, err := s.FireFlagged(ctx, userID, []uuid.UUID{fromGoalID})
	if err != nil {
		return err
	}
	if !flagged[fromGoalID] {
		return nil
	}
	if err := s.ClearFireFlag(ctx, userID, fromGoalID); err != nil {
		return err
	}
	return s.SetFireFlag(ctx, userID, toGoalID)
}

// AdhocByWeek lists adhoc goals in a (user, year, weekNumber) partition.
func (s *Store) AdhocByWeek(ctx context.Context, userID uuid.UUID, year, weekNumber int) ([]models.Goal, error) {
	var goals []models.Goal
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND depth = ? AND year = ? AND week_number = ?", userID, models.DepthAdhoc, year, weekNumber).
		Order("created_at ASC").
		Find(&goals).Error
	return goals, err
}

// AdhocByWeeks lists adhoc goals across several weeks of one year.
func (s *Store) AdhocByWeeks(ctx context.Context, userID uuid.UUID, year int, weekNumbers []int) ([]models.Goal, error) {
	if len(weekNumbers) == 0 {
		return nil, nil
	}
	var goals []models.Goal
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND depth = ? AND year = ? AND week_number IN ?", userID, models.DepthAdhoc, year, weekNumbers).
		Order("created_at ASC").
		Find(&goals).Error
	return goals, err
}
