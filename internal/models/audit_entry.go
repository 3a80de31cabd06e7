package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrAuditEntryImmutable is returned by the gorm hooks when code attempts to
// change or remove an audit entry after it was written.
var ErrAuditEntryImmutable = errors.New("audit entries are append-only")

// AuditEntry is an immutable record of who did what to which entity.
type AuditEntry struct {
	ID         string            `json:"id" gorm:"primaryKey"`
	OrgID      string            `json:"org_id" gorm:"index;not null"`
	ActorID    *string           `json:"actor_id,omitempty" gorm:"index"`
	Action     string            `json:"action" gorm:"not null"`
	EntityKind string            `json:"entity_kind,omitempty" gorm:"index"`
	EntityID   *string           `json:"entity_id,omitempty" gorm:"index"`
	Metadata   datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at" gorm:"index"`
}

func (a *AuditEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	return
}

func (a *AuditEntry) BeforeUpdate(tx *gorm.DB) error {
	return ErrAuditEntryImmutable
}

func (a *AuditEntry) BeforeDelete(tx *gorm.DB) error {
	return ErrAuditEntryImmutable
}
