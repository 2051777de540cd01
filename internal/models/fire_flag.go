package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FireFlag marks a goal as urgent. Membership follows a goal through
// carry-over (the carried goal id ends up flagged, not the old one) and is
// cleared when the goal is marked complete.
type FireFlag struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;uniqueIndex:idx_fire_flags_user_goal,priority:1;not null"`
	GoalID    uuid.UUID `json:"goalId" gorm:"type:uuid;uniqueIndex:idx_fire_flags_user_goal,priority:2;not null"`
	CreatedAt time.Time `json:"createdAt"`
}

func (f *FireFlag) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
