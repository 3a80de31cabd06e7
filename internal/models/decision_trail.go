package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DecisionTrail stores the before/after state of a single reversible
// mutation. A nil Before means the mutation created the entity; a nil After
// means it deleted it. RolledBackAt is set exactly once.
type DecisionTrail struct {
	ID           string             `json:"id" gorm:"primaryKey"`
	OrgID        string             `json:"org_id" gorm:"index;not null"`
	ActorID      *string            `json:"actor_id,omitempty"`
	Action       string             `json:"action" gorm:"not null"`
	EntityKind   string             `json:"entity_kind" gorm:"index;not null"`
	EntityID     string             `json:"entity_id" gorm:"index;not null"`
	Before       *datatypes.JSONMap `json:"before"`
	After        *datatypes.JSONMap `json:"after"`
	RolledBackAt *time.Time         `json:"rolled_back_at,omitempty" gorm:"index"`
	RolledBackBy *string            `json:"rolled_back_by,omitempty"`
	CreatedAt    time.Time          `json:"created_at" gorm:"index"`
}

func (t *DecisionTrail) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	return
}

// Consumed reports whether the trail has already been rolled back.
func (t *DecisionTrail) Consumed() bool {
	return t.RolledBackAt != nil
}

// Status returns "active" or "consumed".
func (t *DecisionTrail) Status() string {
	if t.Consumed() {
		return "consumed"
	}
	return "active"
}
