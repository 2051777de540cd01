package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Domain is a user-scoped category tag for adhoc goals.
type Domain struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;index;not null"`
	Name      string    `json:"name" gorm:"not null"`
	Color     *string   `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (d *Domain) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

type UpsertDomainRequest struct {
	Name  string  `json:"name" validate:"required"`
	Color *string `json:"color"`
}
