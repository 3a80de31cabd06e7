package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/metrics"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/models"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/snapshot"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/util"
)

// TrailInput describes a reversible mutation. A nil Before records a
// creation, a nil After records a deletion.
type TrailInput struct {
	OrgID      string
	ActorID    *string
	Action     string
	EntityKind string
	EntityID   string
	Before     snapshot.Snapshot
	After      snapshot.Snapshot
}

// TrailFilter narrows List results. Zero values match everything.
type TrailFilter struct {
	EntityKind string
	EntityID   string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// TrailService persists decision trails.
type TrailService struct {
	db *gorm.DB
}

// NewTrailService returns a TrailService using the provided DB
func NewTrailService(db *gorm.DB) *TrailService {
	return &TrailService{db: db}
}

// WithDB returns a copy bound to db, typically an open transaction.
func (s *TrailService) WithDB(db *gorm.DB) *TrailService {
	return &TrailService{db: db}
}

// RecordTrail stores a new, active trail.
func (s *TrailService) RecordTrail(ctx context.Context, in TrailInput) (*models.DecisionTrail, error) {
	if strings.TrimSpace(in.OrgID) == "" || in.EntityKind == "" || strings.TrimSpace(in.EntityID) == "" {
		return nil, ErrInvalidTrail
	}
	action := util.CleanLabel(in.Action, maxActionLength)
	if action == "" {
		action = "Changed " + in.EntityKind
	}

	trail := &models.DecisionTrail{
		OrgID:      in.OrgID,
		ActorID:    in.ActorID,
		Action:     action,
		EntityKind: in.EntityKind,
		EntityID:   in.EntityID,
		Before:     in.Before.JSONMap(),
		After:      in.After.JSONMap(),
	}
	if err := s.db.WithContext(ctx).Create(trail).Error; err != nil {
		return nil, storageErr("record decision trail", err)
	}
	metrics.IncTrailRecorded(in.EntityKind)
	return trail, nil
}

// Get loads a trail by id.
func (s *TrailService) Get(ctx context.Context, trailID string) (*models.DecisionTrail, error) {
	var trail models.DecisionTrail
	if err := s.db.WithContext(ctx).Where("id = ?", trailID).First(&trail).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTrailNotFound
		}
		return nil, storageErr("get decision trail", err)
	}
	return &trail, nil
}

// GetForOrg loads a trail and hides trails of other organizations behind
// ErrTrailNotFound.
func (s *TrailService) GetForOrg(ctx context.Context, orgID, trailID string) (*models.DecisionTrail, error) {
	trail, err := s.Get(ctx, trailID)
	if err != nil {
		return nil, err
	}
	if trail.OrgID != orgID {
		return nil, ErrTrailNotFound
	}
	return trail, nil
}

// MarkRolledBack consumes the trail. The update is conditional on
// rolled_back_at still being NULL, so only one caller can ever succeed;
// every other caller gets ErrAlreadyRolledBack.
func (s *TrailService) MarkRolledBack(ctx context.Context, trailID string, at time.Time, actorID *string) error {
	res := s.db.WithContext(ctx).
		Model(&models.DecisionTrail{}).
		Where("id = ? AND rolled_back_at IS NULL", trailID).
		Updates(map[string]any{
			"rolled_back_at": at,
			"rolled_back_by": actorID,
		})
	if res.Error != nil {
		return storageErr("mark decision trail rolled back", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyRolledBack
	}
	return nil
}

// List returns the organization's trails, newest first.
func (s *TrailService) List(ctx context.Context, orgID string, f TrailFilter) ([]models.DecisionTrail, error) {
	var res []models.DecisionTrail
	q := s.db.WithContext(ctx).Where("org_id = ?", orgID).Order("created_at desc")
	if f.EntityKind != "" {
		q = q.Where("entity_kind = ?", f.EntityKind)
	}
	if f.EntityID != "" {
		q = q.Where("entity_id = ?", f.EntityID)
	}
	if f.ActiveOnly {
		q = q.Where("rolled_back_at IS NULL")
	}
	q = paginate(q, f.Limit, f.Offset)
	if err := q.Find(&res).Error; err != nil {
		return nil, storageErr("list decision trails", err)
	}
	return res, nil
}

// CountActive counts trails that can still be rolled back, across all
// organizations.
func (s *TrailService) CountActive(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.DecisionTrail{}).Where("rolled_back_at IS NULL").Count(&n).Error; err != nil {
		return 0, storageErr("count active decision trails", err)
	}
	return n, nil
}

// priorOf converts the stored before-snapshot into its sum type.
func priorOf(trail *models.DecisionTrail) snapshot.Prior {
	if trail.Before == nil {
		return snapshot.Missing{}
	}
	return snapshot.PriorOf(map[string]any(*trail.Before))
}
