package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GalleryItem is an image in the marketing gallery.
type GalleryItem struct {
	ID          string                      `json:"id" gorm:"primaryKey"`
	OrgID       string                      `json:"org_id" gorm:"index;not null"`
	Title       string                      `json:"title" gorm:"not null"`
	Description string                      `json:"description"`
	ImageURL    string                      `json:"image_url"`
	Album       string                      `json:"album" gorm:"index"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	TakenAt     *time.Time                  `json:"taken_at,omitempty"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

func (g *GalleryItem) BeforeCreate(tx *gorm.DB) (err error) {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	return
}
