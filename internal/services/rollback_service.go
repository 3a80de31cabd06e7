package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/logger"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/metrics"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/models"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/snapshot"
)

// Rollback operations.
const (
	OperationRestore = "restore"
	OperationDelete  = "delete"
)

// RollbackNotifier is told about every successful rollback.
type RollbackNotifier interface {
	RollbackApplied(ctx context.Context, result *RollbackResult)
}

// RollbackResult describes a completed rollback.
type RollbackResult struct {
	Trail     *models.DecisionTrail `json:"trail"`
	Operation string                `json:"operation"`
	// ClearedReferences lists snapshot keys whose referenced record no
	// longer existed and which were restored as null.
	ClearedReferences []string `json:"cleared_references,omitempty"`
	// AlreadyAbsent is set when a creation was rolled back but the entity
	// had already been removed.
	AlreadyAbsent bool `json:"already_absent,omitempty"`
}

// RollbackService reverses a single recorded mutation.
type RollbackService struct {
	db       *gorm.DB
	trails   *TrailService
	audit    *AuditService
	registry *Registry
	notifier RollbackNotifier
	now      func() time.Time
}

// NewRollbackService wires the dispatcher. notifier may be nil.
func NewRollbackService(db *gorm.DB, trails *TrailService, audit *AuditService, registry *Registry, notifier RollbackNotifier) *RollbackService {
	return &RollbackService{
		db:       db,
		trails:   trails,
		audit:    audit,
		registry: registry,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Rollback restores the entity a trail describes to its prior state, or
// deletes it when the trail recorded a creation, and consumes the trail.
func (s *RollbackService) Rollback(ctx context.Context, orgID, trailID string, actorID *string) (*RollbackResult, error) {
	if strings.TrimSpace(orgID) == "" || strings.TrimSpace(trailID) == "" {
		return nil, ErrInvalidRollbackRequest
	}

	trail, err := s.trails.GetForOrg(ctx, orgID, trailID)
	if err != nil {
		metrics.IncRollback("unknown", outcome(err))
		return nil, err
	}
	if trail.Consumed() {
		metrics.IncRollback(trail.EntityKind, outcome(ErrAlreadyRolledBack))
		return nil, ErrAlreadyRolledBack
	}
	if strings.TrimSpace(trail.EntityID) == "" {
		metrics.IncRollback(trail.EntityKind, outcome(ErrMissingEntityReference))
		return nil, ErrMissingEntityReference
	}
	strategy, ok := s.registry.Lookup(trail.EntityKind)
	if !ok {
		metrics.IncRollback(trail.EntityKind, outcome(ErrUnsupportedEntityKind))
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEntityKind, trail.EntityKind)
	}

	result := &RollbackResult{Trail: trail}
	at := s.now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := strategy.NewStore(tx)

		switch prior := priorOf(trail).(type) {
		case snapshot.Existing:
			result.Operation = OperationRestore
			fields := strategy.Schema.Decode(prior.Snapshot)
			cleared, err := s.clearDanglingReferences(ctx, tx, strategy.Schema, orgID, fields)
			if err != nil {
				return err
			}
			result.ClearedReferences = cleared
			if err := store.Update(ctx, orgID, trail.EntityID, fields); err != nil {
				if errors.Is(err, ErrEntityNotFound) {
					return ErrStaleTarget
				}
				return err
			}
		case snapshot.Missing:
			result.Operation = OperationDelete
			if err := store.Delete(ctx, orgID, trail.EntityID); err != nil {
				if !errors.Is(err, ErrEntityNotFound) {
					return err
				}
				result.AlreadyAbsent = true
			}
		default:
			return fmt.Errorf("services: unhandled prior state %T", prior)
		}

		return s.trails.WithDB(tx).MarkRolledBack(ctx, trail.ID, at, actorID)
	})
	if err != nil {
		metrics.IncRollback(trail.EntityKind, outcome(err))
		logger.ForEntity(orgID, trail.EntityKind, trail.EntityID).
			WithError(err).
			WithField("trail_id", trail.ID).
			Warn("rollback failed")
		return nil, err
	}

	trail.RolledBackAt = &at
	trail.RolledBackBy = actorID
	metrics.IncRollback(trail.EntityKind, "success")

	metadata := map[string]any{
		"trail_id":  trail.ID,
		"operation": result.Operation,
	}
	if len(result.ClearedReferences) > 0 {
		metadata["cleared_references"] = result.ClearedReferences
	}
	if result.AlreadyAbsent {
		metadata["already_absent"] = true
	}
	entityID := trail.EntityID
	s.audit.RecordBestEffort(ctx, AuditInput{
		OrgID:      orgID,
		ActorID:    actorID,
		Action:     "Rolled back " + strategy.Label,
		EntityKind: trail.EntityKind,
		EntityID:   &entityID,
		Metadata:   metadata,
	})

	if s.notifier != nil {
		s.notifier.RollbackApplied(ctx, result)
	}
	return result, nil
}

// clearDanglingReferences nulls reference columns whose target no longer
// exists in the organization and returns the affected snapshot keys.
func (s *RollbackService) clearDanglingReferences(ctx context.Context, tx *gorm.DB, schema *snapshot.Schema, orgID string, fields map[string]any) ([]string, error) {
	var cleared []string
	for _, ref := range schema.References() {
		id, ok := fields[ref.Column].(*string)
		if !ok || id == nil {
			continue
		}
		store, known := s.registry.referenceStore(ref.RefKind, tx)
		if !known {
			continue
		}
		exists, err := store.Exists(ctx, orgID, *id)
		if err != nil {
			return nil, err
		}
		if !exists {
			fields[ref.Column] = (*string)(nil)
			cleared = append(cleared, ref.Key)
		}
	}
	return cleared, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrTrailNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyRolledBack):
		return "already_rolled_back"
	case errors.Is(err, ErrMissingEntityReference):
		return "missing_entity_reference"
	case errors.Is(err, ErrUnsupportedEntityKind):
		return "unsupported"
	case errors.Is(err, ErrStaleTarget):
		return "stale_target"
	case errors.Is(err, ErrStorageUnavailable):
		return "storage_unavailable"
	default:
		return "error"
	}
}
