package services

import (
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/models"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/snapshot"
)

// Strategy is everything needed to snapshot and restore one entity kind.
type Strategy struct {
	Kind string
	// Label is the lower-case noun used in audit actions, e.g. "gallery item".
	Label  string
	Schema *snapshot.Schema
	// Encode projects an entity returned by the gateway into a snapshot.
	Encode func(entity any) (snapshot.Snapshot, error)
	// NewStore binds the kind's gateway to db, which may be a transaction.
	NewStore func(db *gorm.DB) EntityStore
}

// Registry maps entity kinds to their restore strategies.
type Registry struct {
	strategies map[string]Strategy
	// refs maps a referenced kind to a gateway factory used to check that
	// foreign keys in a snapshot still resolve.
	refs map[string]func(db *gorm.DB) EntityStore
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		strategies: make(map[string]Strategy),
		refs:       make(map[string]func(db *gorm.DB) EntityStore),
	}
}

// Register adds a strategy. Registering the same kind twice panics.
func (r *Registry) Register(s Strategy) {
	if s.Kind == "" || s.Schema == nil || s.Encode == nil || s.NewStore == nil {
		panic(fmt.Sprintf("services: incomplete strategy for kind %q", s.Kind))
	}
	if _, dup := r.strategies[s.Kind]; dup {
		panic(fmt.Sprintf("services: strategy for kind %q registered twice", s.Kind))
	}
	r.strategies[s.Kind] = s
	r.refs[s.Kind] = s.NewStore
}

// RegisterReference makes kind available as a foreign key target without
// making it restorable.
func (r *Registry) RegisterReference(kind string, newStore func(db *gorm.DB) EntityStore) {
	r.refs[kind] = newStore
}

// Lookup returns the strategy for kind.
func (r *Registry) Lookup(kind string) (Strategy, bool) {
	s, ok := r.strategies[kind]
	return s, ok
}

// Kinds lists the registered restorable kinds in sorted order.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.strategies))
	for k := range r.strategies {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

func (r *Registry) referenceStore(kind string, db *gorm.DB) (EntityStore, bool) {
	newStore, ok := r.refs[kind]
	if !ok {
		return nil, false
	}
	return newStore(db), true
}

// encodeAs adapts a typed encoder to Strategy.Encode.
func encodeAs[T any](fn func(*T) snapshot.Snapshot) func(any) (snapshot.Snapshot, error) {
	return func(entity any) (snapshot.Snapshot, error) {
		typed, ok := entity.(*T)
		if !ok || typed == nil {
			return nil, fmt.Errorf("services: cannot snapshot %T", entity)
		}
		return fn(typed), nil
	}
}

func gormStore[T any](db *gorm.DB) EntityStore {
	return NewGormGateway[T](db)
}

// DefaultRegistry registers the six restorable kinds of the dashboard and
// the reference-only kinds their snapshots point at.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Strategy{
		Kind:     models.KindContact,
		Label:    "contact",
		Schema:   snapshot.ContactSchema,
		Encode:   encodeAs(snapshot.EncodeContact),
		NewStore: gormStore[models.Contact],
	})
	r.Register(Strategy{
		Kind:     models.KindDeal,
		Label:    "deal",
		Schema:   snapshot.DealSchema,
		Encode:   encodeAs(snapshot.EncodeDeal),
		NewStore: gormStore[models.Deal],
	})
	r.Register(Strategy{
		Kind:     models.KindInvoice,
		Label:    "invoice",
		Schema:   snapshot.InvoiceSchema,
		Encode:   encodeAs(snapshot.EncodeInvoice),
		NewStore: gormStore[models.Invoice],
	})
	r.Register(Strategy{
		Kind:     models.KindExpense,
		Label:    "expense",
		Schema:   snapshot.ExpenseSchema,
		Encode:   encodeAs(snapshot.EncodeExpense),
		NewStore: gormStore[models.Expense],
	})
	r.Register(Strategy{
		Kind:     models.KindDocument,
		Label:    "document",
		Schema:   snapshot.DocumentSchema,
		Encode:   encodeAs(snapshot.EncodeDocument),
		NewStore: gormStore[models.Document],
	})
	r.Register(Strategy{
		Kind:     models.KindGalleryItem,
		Label:    "gallery item",
		Schema:   snapshot.GalleryItemSchema,
		Encode:   encodeAs(snapshot.EncodeGalleryItem),
		NewStore: gormStore[models.GalleryItem],
	})
	r.RegisterReference(models.KindCompany, gormStore[models.Company])
	r.RegisterReference(models.KindUser, gormStore[models.User])
	return r
}
