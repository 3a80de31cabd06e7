package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Invoice is a bill issued to a client.
type Invoice struct {
	ID         string                              `json:"id" gorm:"primaryKey"`
	OrgID      string                              `json:"org_id" gorm:"index;not null"`
	Number     string                              `json:"number" gorm:"index"`
	ClientName string                              `json:"client_name"`
	Amount     float64                             `json:"amount"`
	Currency   string                              `json:"currency" gorm:"default:'USD'"`
	Status     string                              `json:"status" gorm:"default:'draft'"` // draft, sent, paid, overdue, void
	IssueDate  *time.Time                          `json:"issue_date,omitempty"`
	DueDate    *time.Time                          `json:"due_date,omitempty"`
	PaidAt     *time.Time                          `json:"paid_at,omitempty"`
	Notes      string                              `json:"notes" gorm:"type:text"`
	LineItems  datatypes.JSONSlice[map[string]any] `json:"line_items"`
	ContactID  *string                             `json:"contact_id,omitempty" gorm:"index"`
	CreatedAt  time.Time                           `json:"created_at"`
	UpdatedAt  time.Time                           `json:"updated_at"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return
}
