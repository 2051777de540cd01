package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GoalDepth tags the variant of a goal node. Quarterly/Weekly/Daily form the
// tree; Adhoc goals live in their own week-scoped lane.
type GoalDepth int

const (
	DepthAdhoc     GoalDepth = -1
	DepthQuarterly GoalDepth = 0
	DepthWeekly    GoalDepth = 1
	DepthDaily     GoalDepth = 2
)

// CarryOver is the lineage of a carried goal. RootGoalID is stable across an
// arbitrarily long chain of carry-overs; PreviousGoalID is the immediate
// predecessor.
type CarryOver struct {
	NumWeeks       int       `json:"numWeeks"`
	PreviousGoalID uuid.UUID `json:"previousGoalId"`
	RootGoalID     uuid.UUID `json:"rootGoalId"`
}

type Goal struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID  `json:"userId" gorm:"type:uuid;index:idx_goals_period,priority:1;not null"`
	Year        int        `json:"year" gorm:"index:idx_goals_period,priority:2;not null"`
	Quarter     int        `json:"quarter" gorm:"index:idx_goals_period,priority:3;not null"`
	Title       string     `json:"title" gorm:"not null"`
	Details     *string    `json:"details"`
	DueDate     *time.Time `json:"dueDate"`
	Depth       GoalDepth  `json:"depth" gorm:"index;not null"`
	ParentID    *uuid.UUID `json:"parentId" gorm:"type:uuid;index"`
	InPath      string     `json:"inPath" gorm:"index;not null;default:'/'"`
	IsComplete  bool       `json:"isComplete" gorm:"default:false"`
	CompletedAt *time.Time `json:"completedAt"`

	// Carry-over lineage, flattened for storage. Nil when the goal was
	// created at its origin period and never carried.
	CarryNumWeeks       *int       `json:"-"`
	CarryPreviousGoalID *uuid.UUID `json:"-" gorm:"type:uuid"`
	CarryRootGoalID     *uuid.UUID `json:"-" gorm:"type:uuid;index"`

	// Adhoc-only fields.
	DomainID   *uuid.UUID `json:"domainId,omitempty" gorm:"type:uuid;index"`
	WeekNumber *int       `json:"weekNumber,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (g *Goal) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// CarryOver returns the lineage of this goal, or nil when it was never carried.
func (g *Goal) CarryOver() *CarryOver {
	if g.CarryRootGoalID == nil || g.CarryPreviousGoalID == nil {
		return nil
	}
	numWeeks := 0
	if g.CarryNumWeeks != nil {
		numWeeks = *g.CarryNumWeeks
	}
	return &CarryOver{
		NumWeeks:       numWeeks,
		PreviousGoalID: *g.CarryPreviousGoalID,
		RootGoalID:     *g.CarryRootGoalID,
	}
}

func (g *Goal) SetCarryOver(c CarryOver) {
	g.CarryNumWeeks = &c.NumWeeks
	g.CarryPreviousGoalID = &c.PreviousGoalID
	g.CarryRootGoalID = &c.RootGoalID
}

// LineageRoot is the external identity used for idempotency: the root of the
// carry-over chain, or the goal's own id when the chain is empty.
func (g *Goal) LineageRoot() uuid.UUID {
	if g.CarryRootGoalID != nil {
		return *g.CarryRootGoalID
	}
	return g.ID
}

// BumpCarryOver builds the lineage for the next carried instance of this goal.
func (g *Goal) BumpCarryOver() CarryOver {
	numWeeks := 1
	if g.CarryNumWeeks != nil {
		numWeeks = *g.CarryNumWeeks + 1
	}
	return CarryOver{
		NumWeeks:       numWeeks,
		PreviousGoalID: g.ID,
		RootGoalID:     g.LineageRoot(),
	}
}

// Goal DTOs
type CreateGoalRequest struct {
	Title      string     `json:"title" validate:"required"`
	Details    *string    `json:"details"`
	DueDate    *time.Time `json:"dueDate"`
	ParentID   *uuid.UUID `json:"parentId"`
	Year       int        `json:"year" validate:"required"`
	Quarter    int        `json:"quarter" validate:"required"`
	WeekNumber *int       `json:"weekNumber"`
	DayOfWeek  *int       `json:"dayOfWeek"`
}

type CreateAdhocGoalRequest struct {
	Title      string     `json:"title" validate:"required"`
	Details    *string    `json:"details"`
	DueDate    *time.Time `json:"dueDate"`
	ParentID   *uuid.UUID `json:"parentId"`
	DomainID   *uuid.UUID `json:"domainId"`
	Year       *int       `json:"year"`
	WeekNumber *int       `json:"weekNumber"`
}
