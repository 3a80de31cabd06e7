package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/logger"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/metrics"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/snapshot"
)

// Actor identifies who performs a mutation. UserID is nil for
// system-triggered actions.
type Actor struct {
	OrgID  string
	UserID *string
}

// MutationResult is returned by EntityService mutations.
type MutationResult struct {
	Entity  any
	TrailID string
}

// EntityService performs create/update/delete on restorable kinds and
// records the matching decision trail and audit entry for each change.
type EntityService struct {
	db       *gorm.DB
	registry *Registry
	trails   *TrailService
	audit    *AuditService
}

// NewEntityService returns an EntityService using the provided DB
func NewEntityService(db *gorm.DB, registry *Registry, trails *TrailService, audit *AuditService) *EntityService {
	return &EntityService{db: db, registry: registry, trails: trails, audit: audit}
}

func (s *EntityService) strategy(kind string) (Strategy, EntityStore, error) {
	strategy, ok := s.registry.Lookup(kind)
	if !ok {
		return Strategy{}, nil, fmt.Errorf("%w: %s", ErrUnsupportedEntityKind, kind)
	}
	return strategy, strategy.NewStore(s.db), nil
}

// List returns a page of kind's entities.
func (s *EntityService) List(ctx context.Context, orgID, kind string, limit, offset int) (any, error) {
	_, store, err := s.strategy(kind)
	if err != nil {
		return nil, err
	}
	return store.List(ctx, orgID, limit, offset)
}

// Get returns one entity.
func (s *EntityService) Get(ctx context.Context, orgID, kind, id string) (any, error) {
	_, store, err := s.strategy(kind)
	if err != nil {
		return nil, err
	}
	return store.Get(ctx, orgID, id)
}

// Create inserts an entity from client values keyed like its snapshot.
func (s *EntityService) Create(ctx context.Context, actor Actor, kind string, payload snapshot.Snapshot) (*MutationResult, error) {
	strategy, store, err := s.strategy(kind)
	if err != nil {
		return nil, err
	}
	fields, err := strategy.Schema.DecodeNew(payload)
	if err != nil {
		return nil, err
	}

	id, err := store.Create(ctx, actor.OrgID, fields)
	if err != nil {
		return nil, err
	}
	entity, after, err := s.load(ctx, strategy, store, actor.OrgID, id)
	if err != nil {
		return nil, err
	}

	return s.record(ctx, actor, strategy, id, "Created "+strategy.Label, nil, after, entity), nil
}

// Update applies client values to an existing entity.
func (s *EntityService) Update(ctx context.Context, actor Actor, kind, id string, payload snapshot.Snapshot) (*MutationResult, error) {
	strategy, store, err := s.strategy(kind)
	if err != nil {
		return nil, err
	}
	fields, err := strategy.Schema.DecodePartial(payload)
	if err != nil {
		return nil, err
	}

	_, before, err := s.load(ctx, strategy, store, actor.OrgID, id)
	if err != nil {
		return nil, err
	}
	if err := store.Update(ctx, actor.OrgID, id, fields); err != nil {
		return nil, err
	}
	entity, after, err := s.load(ctx, strategy, store, actor.OrgID, id)
	if err != nil {
		return nil, err
	}

	return s.record(ctx, actor, strategy, id, "Updated "+strategy.Label, before, after, entity), nil
}

// Delete removes an entity.
func (s *EntityService) Delete(ctx context.Context, actor Actor, kind, id string) (*MutationResult, error) {
	strategy, store, err := s.strategy(kind)
	if err != nil {
		return nil, err
	}
	_, before, err := s.load(ctx, strategy, store, actor.OrgID, id)
	if err != nil {
		return nil, err
	}
	if err := store.Delete(ctx, actor.OrgID, id); err != nil {
		return nil, err
	}
	return s.record(ctx, actor, strategy, id, "Deleted "+strategy.Label, before, nil, nil), nil
}

func (s *EntityService) load(ctx context.Context, strategy Strategy, store EntityStore, orgID, id string) (any, snapshot.Snapshot, error) {
	entity, err := store.Get(ctx, orgID, id)
	if err != nil {
		return nil, nil, err
	}
	snap, err := strategy.Encode(entity)
	if err != nil {
		return nil, nil, err
	}
	return entity, snap, nil
}

// record writes the trail and the audit entry for a mutation that has
// already been persisted. Neither failure undoes the mutation.
func (s *EntityService) record(ctx context.Context, actor Actor, strategy Strategy, id, action string, before, after snapshot.Snapshot, entity any) *MutationResult {
	res := &MutationResult{Entity: entity}

	trail, err := s.trails.RecordTrail(ctx, TrailInput{
		OrgID:      actor.OrgID,
		ActorID:    actor.UserID,
		Action:     action,
		EntityKind: strategy.Kind,
		EntityID:   id,
		Before:     before,
		After:      after,
	})
	if err != nil {
		metrics.IncTrailFailed(strategy.Kind)
		logger.ForEntity(actor.OrgID, strategy.Kind, id).WithError(err).Error("failed to record decision trail")
	} else {
		res.TrailID = trail.ID
	}

	metadata := map[string]any{}
	if res.TrailID != "" {
		metadata["trail_id"] = res.TrailID
	}
	s.audit.RecordBestEffort(ctx, AuditInput{
		OrgID:      actor.OrgID,
		ActorID:    actor.UserID,
		Action:     action,
		EntityKind: strategy.Kind,
		EntityID:   &id,
		Metadata:   metadata,
	})
	return res
}
