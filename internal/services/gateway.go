package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EntityGateway is the persistence boundary the rollback dispatcher needs
// for one entity kind. Every call is scoped to an organization.
type EntityGateway interface {
	Get(ctx context.Context, orgID, id string) (any, error)
	Update(ctx context.Context, orgID, id string, fields map[string]any) error
	Delete(ctx context.Context, orgID, id string) error
}

// EntityStore extends EntityGateway with the operations business mutation
// handlers need.
type EntityStore interface {
	EntityGateway
	Create(ctx context.Context, orgID string, fields map[string]any) (string, error)
	List(ctx context.Context, orgID string, limit, offset int) (any, error)
	Exists(ctx context.Context, orgID, id string) (bool, error)
}

// GormGateway stores entities of model T in the table gorm derives for it.
type GormGateway[T any] struct {
	db *gorm.DB
}

// NewGormGateway returns a gateway for T bound to db.
func NewGormGateway[T any](db *gorm.DB) *GormGateway[T] {
	return &GormGateway[T]{db: db}
}

func (g *GormGateway[T]) scoped(ctx context.Context, orgID string) *gorm.DB {
	return g.db.WithContext(ctx).Model(new(T)).Where("org_id = ?", orgID)
}

// Get returns *T or ErrEntityNotFound.
func (g *GormGateway[T]) Get(ctx context.Context, orgID, id string) (any, error) {
	entity := new(T)
	if err := g.db.WithContext(ctx).Where("org_id = ? AND id = ?", orgID, id).First(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntityNotFound
		}
		return nil, storageErr("get entity", err)
	}
	return entity, nil
}

// Update writes fields (column name to value). ErrEntityNotFound means no
// row matched.
func (g *GormGateway[T]) Update(ctx context.Context, orgID, id string, fields map[string]any) error {
	if len(fields) == 0 {
		ok, err := g.Exists(ctx, orgID, id)
		if err != nil {
			return err
		}
		if !ok {
			return ErrEntityNotFound
		}
		return nil
	}
	res := g.scoped(ctx, orgID).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return storageErr("update entity", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrEntityNotFound
	}
	return nil
}

// Delete removes the row. ErrEntityNotFound means no row matched.
func (g *GormGateway[T]) Delete(ctx context.Context, orgID, id string) error {
	res := g.db.WithContext(ctx).Where("org_id = ? AND id = ?", orgID, id).Delete(new(T))
	if res.Error != nil {
		return storageErr("delete entity", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrEntityNotFound
	}
	return nil
}

// Create inserts a row built from fields and returns its id.
func (g *GormGateway[T]) Create(ctx context.Context, orgID string, fields map[string]any) (string, error) {
	row := make(map[string]any, len(fields)+4)
	for k, v := range fields {
		row[k] = v
	}
	id := uuid.New().String()
	now := time.Now().UTC()
	row["id"] = id
	row["org_id"] = orgID
	row["created_at"] = now
	row["updated_at"] = now

	if err := g.db.WithContext(ctx).Model(new(T)).Create(row).Error; err != nil {
		return "", storageErr("create entity", err)
	}
	return id, nil
}

// List returns *[]T for the organization, newest first.
func (g *GormGateway[T]) List(ctx context.Context, orgID string, limit, offset int) (any, error) {
	var res []T
	q := paginate(g.db.WithContext(ctx).Where("org_id = ?", orgID).Order("created_at desc"), limit, offset)
	if err := q.Find(&res).Error; err != nil {
		return nil, storageErr("list entities", err)
	}
	return res, nil
}

// Exists reports whether id exists in the organization.
func (g *GormGateway[T]) Exists(ctx context.Context, orgID, id string) (bool, error) {
	var n int64
	if err := g.scoped(ctx, orgID).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, storageErr("check entity", err)
	}
	return n > 0, nil
}
