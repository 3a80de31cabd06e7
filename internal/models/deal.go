package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Deal is a sales opportunity moving through pipeline stages.
type Deal struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	OrgID       string     `json:"org_id" gorm:"index;not null"`
	Title       string     `json:"title" gorm:"not null"`
	Value       float64    `json:"value"`
	Stage       string     `json:"stage" gorm:"default:'prospecting'"`
	Probability int        `json:"probability"` // percent, 0-100
	CloseDate   *time.Time `json:"close_date,omitempty"`
	Notes       string     `json:"notes" gorm:"type:text"`
	ContactID   *string    `json:"contact_id,omitempty" gorm:"index"`
	CompanyID   *string    `json:"company_id,omitempty" gorm:"index"`
	OwnerID     *string    `json:"owner_id,omitempty" gorm:"index"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (d *Deal) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return
}
