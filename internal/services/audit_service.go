package services

import (
	"context"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/logger"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/metrics"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/models"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/util"
)

const maxActionLength = 255

// AuditInput describes one action to append to the audit log.
type AuditInput struct {
	OrgID      string
	ActorID    *string
	Action     string
	EntityKind string
	EntityID   *string
	Metadata   map[string]any
}

// AuditFilter narrows List results. Zero values match everything.
type AuditFilter struct {
	EntityKind string
	EntityID   string
	ActorID    string
	Limit      int
	Offset     int
}

// AuditService appends and reads audit entries. It never updates or
// deletes them.
type AuditService struct {
	db *gorm.DB
}

// NewAuditService returns an AuditService using the provided DB
func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// Record appends one audit entry.
func (s *AuditService) Record(ctx context.Context, in AuditInput) (*models.AuditEntry, error) {
	action := util.CleanLabel(in.Action, maxActionLength)
	if strings.TrimSpace(in.OrgID) == "" || action == "" {
		return nil, ErrInvalidAuditEntry
	}

	entry := &models.AuditEntry{
		OrgID:      in.OrgID,
		ActorID:    in.ActorID,
		Action:     action,
		EntityKind: in.EntityKind,
		EntityID:   in.EntityID,
	}
	if len(in.Metadata) > 0 {
		entry.Metadata = datatypes.JSONMap(in.Metadata)
	}

	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, storageErr("record audit entry", err)
	}
	metrics.IncAuditRecorded()
	return entry, nil
}

// RecordBestEffort appends an audit entry and logs instead of returning a
// failure, so that the operation being audited is never blocked by it.
func (s *AuditService) RecordBestEffort(ctx context.Context, in AuditInput) *models.AuditEntry {
	entry, err := s.Record(ctx, in)
	if err != nil {
		metrics.IncAuditFailed()
		entityID := ""
		if in.EntityID != nil {
			entityID = *in.EntityID
		}
		logger.ForEntity(in.OrgID, in.EntityKind, entityID).
			WithError(err).
			WithField("action", util.SanitizeForLog(in.Action)).
			Warn("failed to record audit entry")
		return nil
	}
	return entry
}

// List returns the organization's audit entries, newest first.
func (s *AuditService) List(ctx context.Context, orgID string, f AuditFilter) ([]models.AuditEntry, error) {
	var res []models.AuditEntry
	q := s.db.WithContext(ctx).Where("org_id = ?", orgID).Order("created_at desc")
	if f.EntityKind != "" {
		q = q.Where("entity_kind = ?", f.EntityKind)
	}
	if f.EntityID != "" {
		q = q.Where("entity_id = ?", f.EntityID)
	}
	if f.ActorID != "" {
		q = q.Where("actor_id = ?", f.ActorID)
	}
	q = paginate(q, f.Limit, f.Offset)
	if err := q.Find(&res).Error; err != nil {
		return nil, storageErr("list audit entries", err)
	}
	return res, nil
}

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

func paginate(q *gorm.DB, limit, offset int) *gorm.DB {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	q = q.Limit(limit)
	if offset > 0 {
		q = q.Offset(offset)
	}
	return q
}
