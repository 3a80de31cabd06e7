package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/database"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/models"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/snapshot"
)

// openTestDB creates a SQLite in-memory DB unique per test. A single
// connection keeps every statement on the same in-memory database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

type fixture struct {
	db       *gorm.DB
	audit    *AuditService
	trails   *TrailService
	registry *Registry
	entities *EntityService
	rollback *RollbackService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := openTestDB(t)
	registry := DefaultRegistry()
	audit := NewAuditService(db)
	trails := NewTrailService(db)
	return &fixture{
		db:       db,
		audit:    audit,
		trails:   trails,
		registry: registry,
		entities: NewEntityService(db, registry, trails, audit),
		rollback: NewRollbackService(db, trails, audit, registry, nil),
	}
}

func strPtr(s string) *string { return &s }

func actorIn(orgID, userID string) Actor {
	return Actor{OrgID: orgID, UserID: strPtr(userID)}
}

func (f *fixture) auditEntries(t *testing.T, orgID string) []models.AuditEntry {
	t.Helper()
	entries, err := f.audit.List(context.Background(), orgID, AuditFilter{})
	require.NoError(t, err)
	return entries
}

// flakyStore wraps a real store and fails the configured operations.
type flakyStore struct {
	EntityStore
	updateErr error
	deleteErr error
	updates   *int
	deletes   *int
}

func (s *flakyStore) Update(ctx context.Context, orgID, id string, fields map[string]any) error {
	*s.updates++
	if s.updateErr != nil {
		return s.updateErr
	}
	return s.EntityStore.Update(ctx, orgID, id, fields)
}

func (s *flakyStore) Delete(ctx context.Context, orgID, id string) error {
	*s.deletes++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.EntityStore.Delete(ctx, orgID, id)
}

// storedForm returns s as it reads back from a JSON column.
func storedForm(t *testing.T, s snapshot.Snapshot) snapshot.Snapshot {
	t.Helper()
	b, err := json.Marshal(s)
	require.NoError(t, err)
	var out snapshot.Snapshot
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}
