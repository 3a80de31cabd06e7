package handlers

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/api/middleware"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/database"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/services"
)

// openTestDB creates a SQLite in-memory DB unique per test.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsnName := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", dsnName)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

type testEnv struct {
	db       *gorm.DB
	audit    *services.AuditService
	trails   *services.TrailService
	entities *services.EntityService
	rollback *services.RollbackService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := openTestDB(t)
	registry := services.DefaultRegistry()
	audit := services.NewAuditService(db)
	trails := services.NewTrailService(db)
	return &testEnv{
		db:       db,
		audit:    audit,
		trails:   trails,
		entities: services.NewEntityService(db, registry, trails, audit),
		rollback: services.NewRollbackService(db, trails, audit, registry, nil),
	}
}

// as stands in for AuthMiddleware with fixed claims.
func as(orgID, userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.OrgIDKey, orgID)
		c.Set(middleware.UserIDKey, userID)
		c.Set(middleware.RoleKey, role)
		c.Next()
	}
}
