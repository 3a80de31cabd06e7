package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company groups contacts and deals. It is a reference target only and has
// no decision trail of its own.
type Company struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	OrgID     string    `json:"org_id" gorm:"index;not null"`
	Name      string    `json:"name" gorm:"not null"`
	Website   string    `json:"website"`
	Industry  string    `json:"industry"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Company) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}
