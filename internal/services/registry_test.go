package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/models"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/snapshot"
)

func TestDefaultRegistry_Kinds(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{
		models.KindContact,
		models.KindDeal,
		models.KindDocument,
		models.KindExpense,
		models.KindGalleryItem,
		models.KindInvoice,
	}, r.Kinds())

	_, ok := r.Lookup(models.KindCompany)
	assert.False(t, ok)
	_, ok = r.referenceStore(models.KindCompany, nil)
	assert.True(t, ok)
	_, ok = r.referenceStore(models.KindUser, nil)
	assert.True(t, ok)
}

func TestRegistry_RegisterPanics(t *testing.T) {
	base, ok := DefaultRegistry().Lookup(models.KindDeal)
	require.True(t, ok)

	r := NewRegistry()
	r.Register(base)
	assert.Panics(t, func() { r.Register(base) })
	assert.Panics(t, func() { r.Register(Strategy{Kind: "Widget"}) })
}

func TestRegistry_EncodeRejectsForeignTypes(t *testing.T) {
	s, _ := DefaultRegistry().Lookup(models.KindContact)
	_, err := s.Encode(&models.Deal{})
	assert.Error(t, err)
	_, err = s.Encode((*models.Contact)(nil))
	assert.Error(t, err)
}

// Every registered kind must survive snapshot, overwrite and restore
// through its own gateway.
func TestRegistry_EveryKindRestoresItsSnapshot(t *testing.T) {
	payloads := map[string]snapshot.Snapshot{
		models.KindContact:     {"name": "Ada", "email": "ada@example.com", "revenue": 10.5, "tags": []any{"a"}},
		models.KindDeal:        {"title": "Pilot", "value": 900.0, "probability": 40, "closeDate": "2025-06-30T00:00:00.000Z"},
		models.KindInvoice:     {"number": "INV-3", "amount": 99.0, "issueDate": "2025-01-01T00:00:00.000Z"},
		models.KindExpense:     {"description": "Hotel", "amount": 180.0, "incurredOn": "2025-03-03T00:00:00.000Z"},
		models.KindDocument:    {"title": "Contract", "sizeBytes": 2048, "tags": []any{"legal"}},
		models.KindGalleryItem: {"title": "Launch", "album": "events", "takenAt": "2024-12-24T18:30:00.000Z"},
	}

	for _, kind := range DefaultRegistry().Kinds() {
		t.Run(kind, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			strategy, _ := f.registry.Lookup(kind)
			store := strategy.NewStore(f.db)

			fields, err := strategy.Schema.DecodePartial(payloads[kind])
			require.NoError(t, err)
			id, err := store.Create(ctx, "org-1", fields)
			require.NoError(t, err)

			entity, err := store.Get(ctx, "org-1", id)
			require.NoError(t, err)
			original, err := strategy.Encode(entity)
			require.NoError(t, err)

			// clear every column the schema owns
			require.NoError(t, store.Update(ctx, "org-1", id, strategy.Schema.Decode(snapshot.Snapshot{})))

			stored := storedForm(t, original)
			require.NoError(t, store.Update(ctx, "org-1", id, strategy.Schema.Decode(stored)))

			entity, err = store.Get(ctx, "org-1", id)
			require.NoError(t, err)
			restored, err := strategy.Encode(entity)
			require.NoError(t, err)
			assert.Equal(t, storedForm(t, original), storedForm(t, restored))
		})
	}
}

func TestGormGateway_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := NewGormGateway[models.Deal](f.db)

	_, err := g.Get(ctx, "org-1", "missing")
	assert.ErrorIs(t, err, ErrEntityNotFound)
	assert.ErrorIs(t, g.Update(ctx, "org-1", "missing", map[string]any{"title": "x"}), ErrEntityNotFound)
	assert.ErrorIs(t, g.Update(ctx, "org-1", "missing", nil), ErrEntityNotFound)
	assert.ErrorIs(t, g.Delete(ctx, "org-1", "missing"), ErrEntityNotFound)

	ok, err := g.Exists(ctx, "org-1", "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
