package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/models"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/snapshot"
)

func TestRollback_RestoresUpdatedContact(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := actorIn("org-1", "user-1")

	created, err := f.entities.Create(ctx, actor, models.KindContact, snapshot.Snapshot{
		"name":        "Ada",
		"email":       "ada@example.com",
		"lastContact": "2025-01-10T09:00:00.000Z",
		"tags":        []any{"vip"},
	})
	require.NoError(t, err)
	contactID := created.Entity.(*models.Contact).ID

	updated, err := f.entities.Update(ctx, actor, models.KindContact, contactID, snapshot.Snapshot{
		"name":        "Ada L.",
		"lastContact": nil,
		"tags":        []any{},
	})
	require.NoError(t, err)
	require.NotEmpty(t, updated.TrailID)
	assert.Equal(t, "Ada L.", updated.Entity.(*models.Contact).Name)

	result, err := f.rollback.Rollback(ctx, "org-1", updated.TrailID, strPtr("operator-1"))
	require.NoError(t, err)
	assert.Equal(t, OperationRestore, result.Operation)
	assert.Empty(t, result.ClearedReferences)

	var contact models.Contact
	require.NoError(t, f.db.First(&contact, "id = ?", contactID).Error)
	assert.Equal(t, "Ada", contact.Name)
	assert.Equal(t, "ada@example.com", contact.Email)
	require.NotNil(t, contact.LastContact)
	assert.True(t, time.Date(2025, time.January, 10, 9, 0, 0, 0, time.UTC).Equal(*contact.LastContact))
	assert.Equal(t, []string{"vip"}, []string(contact.Tags))

	trail, err := f.trails.Get(ctx, updated.TrailID)
	require.NoError(t, err)
	require.NotNil(t, trail.RolledBackAt)
	require.NotNil(t, trail.RolledBackBy)
	assert.Equal(t, "operator-1", *trail.RolledBackBy)

	_, err = f.rollback.Rollback(ctx, "org-1", updated.TrailID, strPtr("operator-1"))
	assert.ErrorIs(t, err, ErrAlreadyRolledBack)
}

func TestRollback_SecondAttemptNeverTouchesGateway(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := actorIn("org-1", "user-1")

	created, err := f.entities.Create(ctx, actor, models.KindExpense, snapshot.Snapshot{"description": "Taxi", "amount": 20.0})
	require.NoError(t, err)
	id := created.Entity.(*models.Expense).ID
	updated, err := f.entities.Update(ctx, actor, models.KindExpense, id, snapshot.Snapshot{"amount": 25.0})
	require.NoError(t, err)

	var updates, deletes int
	registry := NewRegistry()
	base, _ := DefaultRegistry().Lookup(models.KindExpense)
	registry.Register(Strategy{
		Kind:   base.Kind,
		Label:  base.Label,
		Schema: base.Schema,
		Encode: base.Encode,
		NewStore: func(db *gorm.DB) EntityStore {
			return &flakyStore{EntityStore: base.NewStore(db), updates: &updates, deletes: &deletes}
		},
	})
	svc := NewRollbackService(f.db, f.trails, f.audit, registry, nil)

	_, err = svc.Rollback(ctx, "org-1", updated.TrailID, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, updates)

	_, err = svc.Rollback(ctx, "org-1", updated.TrailID, nil)
	assert.ErrorIs(t, err, ErrAlreadyRolledBack)
	assert.Equal(t, 1, updates)
	assert.Equal(t, 0, deletes)
}

func TestRollback_CreationDeletesEntity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.entities.Create(ctx, actorIn("org-1", "user-1"), models.KindDeal, snapshot.Snapshot{"title": "Pilot", "value": 5000.0})
	require.NoError(t, err)
	dealID := created.Entity.(*models.Deal).ID

	trail, err := f.trails.Get(ctx, created.TrailID)
	require.NoError(t, err)
	assert.Nil(t, trail.Before)
	require.NotNil(t, trail.After)

	result, err := f.rollback.Rollback(ctx, "org-1", created.TrailID, nil)
	require.NoError(t, err)
	assert.Equal(t, OperationDelete, result.Operation)
	assert.False(t, result.AlreadyAbsent)

	var count int64
	require.NoError(t, f.db.Model(&models.Deal{}).Where("id = ?", dealID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRollback_CreationOfAlreadyRemovedEntity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.entities.Create(ctx, actorIn("org-1", "user-1"), models.KindGalleryItem, snapshot.Snapshot{"title": "Logo"})
	require.NoError(t, err)
	require.NoError(t, f.db.Where("id = ?", created.Entity.(*models.GalleryItem).ID).Delete(&models.GalleryItem{}).Error)

	result, err := f.rollback.Rollback(ctx, "org-1", created.TrailID, nil)
	require.NoError(t, err)
	assert.True(t, result.AlreadyAbsent)
}

func TestRollback_InvoiceDueDates(t *testing.T) {
	tests := []struct {
		name    string
		dueDate any
		want    *time.Time
	}{
		{
			name:    "iso string",
			dueDate: "2025-02-15T00:00:00.000Z",
			want:    func() *time.Time { d := time.Date(2025, time.February, 15, 0, 0, 0, 0, time.UTC); return &d }(),
		},
		{name: "null", dueDate: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			created, err := f.entities.Create(ctx, actorIn("org-1", "user-1"), models.KindInvoice, snapshot.Snapshot{
				"number":  "INV-7",
				"dueDate": "2030-01-01T00:00:00.000Z",
			})
			require.NoError(t, err)
			invoiceID := created.Entity.(*models.Invoice).ID

			trail, err := f.trails.RecordTrail(ctx, TrailInput{
				OrgID:      "org-1",
				Action:     "Updated invoice",
				EntityKind: models.KindInvoice,
				EntityID:   invoiceID,
				Before:     snapshot.Snapshot{"number": "INV-7", "dueDate": tt.dueDate},
			})
			require.NoError(t, err)

			_, err = f.rollback.Rollback(ctx, "org-1", trail.ID, nil)
			require.NoError(t, err)

			var invoice models.Invoice
			require.NoError(t, f.db.First(&invoice, "id = ?", invoiceID).Error)
			if tt.want == nil {
				assert.Nil(t, invoice.DueDate)
				return
			}
			require.NotNil(t, invoice.DueDate)
			assert.True(t, tt.want.Equal(*invoice.DueDate))
		})
	}
}

func TestRollback_UnsupportedKindNeverTouchesStorage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	trail, err := f.trails.RecordTrail(ctx, TrailInput{
		OrgID:      "org-1",
		Action:     "Updated company",
		EntityKind: models.KindCompany,
		EntityID:   "co-1",
		Before:     snapshot.Snapshot{"name": "Old"},
	})
	require.NoError(t, err)

	_, err = f.rollback.Rollback(ctx, "org-1", trail.ID, nil)
	require.ErrorIs(t, err, ErrUnsupportedEntityKind)

	reloaded, err := f.trails.Get(ctx, trail.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.Consumed())
	assert.Empty(t, f.auditEntries(t, "org-1"))
}

func TestRollback_CrossTenantIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.entities.Create(ctx, actorIn("org-1", "user-1"), models.KindDocument, snapshot.Snapshot{"title": "Plan"})
	require.NoError(t, err)

	result, err := f.rollback.Rollback(ctx, "org-2", created.TrailID, nil)
	assert.ErrorIs(t, err, ErrTrailNotFound)
	assert.Nil(t, result)

	_, err = f.rollback.Rollback(ctx, "org-2", "does-not-exist", nil)
	assert.ErrorIs(t, err, ErrTrailNotFound)

	trail, err := f.trails.Get(ctx, created.TrailID)
	require.NoError(t, err)
	assert.False(t, trail.Consumed())
}

func TestRollback_ValidatesRequest(t *testing.T) {
	f := newFixture(t)
	_, err := f.rollback.Rollback(context.Background(), "org-1", "  ", nil)
	assert.ErrorIs(t, err, ErrInvalidRollbackRequest)
	_, err = f.rollback.Rollback(context.Background(), "", "trail", nil)
	assert.ErrorIs(t, err, ErrInvalidRollbackRequest)
}

func TestRollback_MissingEntityReference(t *testing.T) {
	f := newFixture(t)
	trail := &models.DecisionTrail{OrgID: "org-1", Action: "Updated contact", EntityKind: models.KindContact, EntityID: ""}
	require.NoError(t, f.db.Create(trail).Error)

	_, err := f.rollback.Rollback(context.Background(), "org-1", trail.ID, nil)
	assert.ErrorIs(t, err, ErrMissingEntityReference)
}

func TestRollback_StaleTargetLeavesTrailActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := actorIn("org-1", "user-1")

	created, err := f.entities.Create(ctx, actor, models.KindContact, snapshot.Snapshot{"name": "Grace"})
	require.NoError(t, err)
	id := created.Entity.(*models.Contact).ID
	updated, err := f.entities.Update(ctx, actor, models.KindContact, id, snapshot.Snapshot{"name": "Grace H."})
	require.NoError(t, err)
	_, err = f.entities.Delete(ctx, actor, models.KindContact, id)
	require.NoError(t, err)

	_, err = f.rollback.Rollback(ctx, "org-1", updated.TrailID, nil)
	require.ErrorIs(t, err, ErrStaleTarget)
	assert.False(t, Retryable(err))

	trail, err := f.trails.Get(ctx, updated.TrailID)
	require.NoError(t, err)
	assert.False(t, trail.Consumed())
}

func TestRollback_GatewayFailureIsRetryable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := actorIn("org-1", "user-1")

	created, err := f.entities.Create(ctx, actor, models.KindDocument, snapshot.Snapshot{"title": "Draft"})
	require.NoError(t, err)
	id := created.Entity.(*models.Document).ID
	updated, err := f.entities.Update(ctx, actor, models.KindDocument, id, snapshot.Snapshot{"title": "Final"})
	require.NoError(t, err)

	var updates, deletes int
	failing := storageErr("update entity", errors.New("disk I/O error"))
	registry := NewRegistry()
	base, _ := DefaultRegistry().Lookup(models.KindDocument)
	registry.Register(Strategy{
		Kind:   base.Kind,
		Label:  base.Label,
		Schema: base.Schema,
		Encode: base.Encode,
		NewStore: func(db *gorm.DB) EntityStore {
			return &flakyStore{EntityStore: base.NewStore(db), updateErr: failing, updates: &updates, deletes: &deletes}
		},
	})
	svc := NewRollbackService(f.db, f.trails, f.audit, registry, nil)

	_, err = svc.Rollback(ctx, "org-1", updated.TrailID, nil)
	require.ErrorIs(t, err, ErrStorageUnavailable)
	assert.True(t, Retryable(err))

	trail, err := f.trails.Get(ctx, updated.TrailID)
	require.NoError(t, err)
	assert.False(t, trail.Consumed())

	// retry with a healthy gateway succeeds
	_, err = f.rollback.Rollback(ctx, "org-1", updated.TrailID, nil)
	require.NoError(t, err)

	var doc models.Document
	require.NoError(t, f.db.First(&doc, "id = ?", id).Error)
	assert.Equal(t, "Draft", doc.Title)
}

func TestRollback_ClearsDanglingReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := actorIn("org-1", "user-1")

	company := &models.Company{OrgID: "org-1", Name: "Analytical Engines"}
	require.NoError(t, f.db.Create(company).Error)
	owner := &models.User{OrgID: "org-1", Email: "owner@example.com", Role: models.RoleMember}
	require.NoError(t, f.db.Create(owner).Error)

	created, err := f.entities.Create(ctx, actor, models.KindContact, snapshot.Snapshot{
		"name":      "Ada",
		"companyId": company.ID,
		"ownerId":   owner.ID,
	})
	require.NoError(t, err)
	id := created.Entity.(*models.Contact).ID

	updated, err := f.entities.Update(ctx, actor, models.KindContact, id, snapshot.Snapshot{"name": "Ada L.", "companyId": nil})
	require.NoError(t, err)
	require.NoError(t, f.db.Delete(company).Error)

	result, err := f.rollback.Rollback(ctx, "org-1", updated.TrailID, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"companyId"}, result.ClearedReferences)

	var contact models.Contact
	require.NoError(t, f.db.First(&contact, "id = ?", id).Error)
	assert.Equal(t, "Ada", contact.Name)
	assert.Nil(t, contact.CompanyID)
	require.NotNil(t, contact.OwnerID)
	assert.Equal(t, owner.ID, *contact.OwnerID)

	var rolledBack *models.AuditEntry
	for _, e := range f.auditEntries(t, "org-1") {
		if e.Action == "Rolled back contact" {
			rolledBack = &e
		}
	}
	require.NotNil(t, rolledBack)
	assert.Equal(t, []any{"companyId"}, rolledBack.Metadata["cleared_references"])
}

func TestRollback_RecordsAuditEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.entities.Create(ctx, actorIn("org-1", "user-1"), models.KindDeal, snapshot.Snapshot{"title": "Pilot"})
	require.NoError(t, err)

	_, err = f.rollback.Rollback(ctx, "org-1", created.TrailID, strPtr("operator-1"))
	require.NoError(t, err)

	entries, err := f.audit.List(ctx, "org-1", AuditFilter{ActorID: "operator-1"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, "Rolled back deal", entry.Action)
	assert.Equal(t, models.KindDeal, entry.EntityKind)
	require.NotNil(t, entry.EntityID)
	assert.Equal(t, created.Entity.(*models.Deal).ID, *entry.EntityID)
	assert.Equal(t, created.TrailID, entry.Metadata["trail_id"])
	assert.Equal(t, OperationDelete, entry.Metadata["operation"])
}

func TestRollback_AuditFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.entities.Create(ctx, actorIn("org-1", "user-1"), models.KindExpense, snapshot.Snapshot{"description": "Lunch"})
	require.NoError(t, err)
	require.NoError(t, f.db.Migrator().DropTable(&models.AuditEntry{}))

	result, err := f.rollback.Rollback(ctx, "org-1", created.TrailID, nil)
	require.NoError(t, err)
	assert.Equal(t, OperationDelete, result.Operation)

	trail, err := f.trails.Get(ctx, created.TrailID)
	require.NoError(t, err)
	assert.True(t, trail.Consumed())
}

type recordingNotifier struct {
	results []*RollbackResult
}

func (n *recordingNotifier) RollbackApplied(_ context.Context, r *RollbackResult) {
	n.results = append(n.results, r)
}

func TestRollback_NotifiesOnSuccessOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	notifier := &recordingNotifier{}
	svc := NewRollbackService(f.db, f.trails, f.audit, f.registry, notifier)

	created, err := f.entities.Create(ctx, actorIn("org-1", "user-1"), models.KindDeal, snapshot.Snapshot{"title": "Pilot"})
	require.NoError(t, err)

	_, err = svc.Rollback(ctx, "org-1", created.TrailID, nil)
	require.NoError(t, err)
	_, err = svc.Rollback(ctx, "org-1", created.TrailID, nil)
	require.Error(t, err)

	require.Len(t, notifier.results, 1)
	assert.Equal(t, created.TrailID, notifier.results[0].Trail.ID)
}

func TestRollback_ConcurrentRequestsSucceedOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := actorIn("org-1", "user-1")

	created, err := f.entities.Create(ctx, actor, models.KindContact, snapshot.Snapshot{"name": "Ada"})
	require.NoError(t, err)
	updated, err := f.entities.Update(ctx, actor, models.KindContact, created.Entity.(*models.Contact).ID, snapshot.Snapshot{"name": "Ada L."})
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.rollback.Rollback(ctx, "org-1", updated.TrailID, nil)
		}(i)
	}
	wg.Wait()

	var successes int
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.ErrorIs(t, err, ErrAlreadyRolledBack)
	}
	assert.Equal(t, 1, successes)
}
