package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Expense is money spent by the organization.
type Expense struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	OrgID       string     `json:"org_id" gorm:"index;not null"`
	Description string     `json:"description" gorm:"not null"`
	Amount      float64    `json:"amount"`
	Currency    string     `json:"currency" gorm:"default:'USD'"`
	Category    string     `json:"category"`
	Vendor      string     `json:"vendor"`
	Status      string     `json:"status" gorm:"default:'pending'"` // pending, approved, rejected, reimbursed
	IncurredOn  *time.Time `json:"incurred_on,omitempty"`
	ReceiptURL  string     `json:"receipt_url"`
	Notes       string     `json:"notes" gorm:"type:text"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (e *Expense) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return
}
