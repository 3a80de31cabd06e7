package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Contact is a person tracked by the CRM.
type Contact struct {
	ID           string                      `json:"id" gorm:"primaryKey"`
	OrgID        string                      `json:"org_id" gorm:"index;not null"`
	Name         string                      `json:"name" gorm:"not null"`
	Email        string                      `json:"email" gorm:"index"`
	Phone        string                      `json:"phone"`
	Status       string                      `json:"status" gorm:"default:'lead'"` // lead, active, customer, churned
	Revenue      float64                     `json:"revenue"`
	LastContact  *time.Time                  `json:"last_contact,omitempty"`
	Notes        string                      `json:"notes" gorm:"type:text"`
	Tags         datatypes.JSONSlice[string] `json:"tags"`
	CustomFields datatypes.JSONMap           `json:"custom_fields"`
	CompanyID    *string                     `json:"company_id,omitempty" gorm:"index"`
	OwnerID      *string                     `json:"owner_id,omitempty" gorm:"index"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

func (c *Contact) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}
