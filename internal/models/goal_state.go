package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GoalState is a per-time-window snapshot of a goal: one row per
// (goal, year, quarter, weekNumber).
type GoalState struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID `json:"userId" gorm:"type:uuid;index:idx_goal_states_week,priority:1;not null"`
	GoalID     uuid.UUID `json:"goalId" gorm:"type:uuid;index;not null"`
	Year       int       `json:"year" gorm:"index:idx_goal_states_week,priority:2;not null"`
	Quarter    int       `json:"quarter" gorm:"index:idx_goal_states_week,priority:3;not null"`
	WeekNumber int       `json:"weekNumber" gorm:"index:idx_goal_states_week,priority:4;not null"`

	// Quarterly goals only. Starred and pinned are mutually exclusive;
	// starred wins (BeforeSave hook).
	IsStarred bool `json:"isStarred" gorm:"default:false"`
	IsPinned  bool `json:"isPinned" gorm:"default:false"`

	IsComplete bool `json:"isComplete" gorm:"default:false"`

	// Daily goals only: 1=Monday .. 7=Sunday.
	DayOfWeek *int `json:"dayOfWeek,omitempty"`

	// Mirrored carry-over lineage for the window this state represents.
	CarryNumWeeks       *int       `json:"-"`
	CarryPreviousGoalID *uuid.UUID `json:"-" gorm:"type:uuid"`
	CarryRootGoalID     *uuid.UUID `json:"-" gorm:"type:uuid"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *GoalState) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// BeforeSave enforces the starred/pinned exclusion at write time so no code
// path can persist both flags.
func (s *GoalState) BeforeSave(tx *gorm.DB) error {
	if s.IsStarred {
		s.IsPinned = false
	}
	return nil
}

func (s *GoalState) SetCarryOver(c CarryOver) {
	s.CarryNumWeeks = &c.NumWeeks
	s.CarryPreviousGoalID = &c.PreviousGoalID
	s.CarryRootGoalID = &c.RootGoalID
}
