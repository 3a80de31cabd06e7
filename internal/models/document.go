package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Document is a stored file reference (contract, proposal, receipt scan).
type Document struct {
	ID          string                      `json:"id" gorm:"primaryKey"`
	OrgID       string                      `json:"org_id" gorm:"index;not null"`
	Title       string                      `json:"title" gorm:"not null"`
	Description string                      `json:"description"`
	Category    string                      `json:"category"`
	URL         string                      `json:"url"`
	MimeType    string                      `json:"mime_type"`
	SizeBytes   int64                       `json:"size_bytes"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	OwnerID     *string                     `json:"owner_id,omitempty" gorm:"index"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return
}
