package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"

	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/api/handlers"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/api/middleware"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/config"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/database"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/metrics"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/models"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/services"
)

// entityPaths maps URL segments to the restorable kind they serve.
var entityPaths = map[string]string{
	"contacts":  models.KindContact,
	"deals":     models.KindDeal,
	"invoices":  models.KindInvoice,
	"expenses":  models.KindExpense,
	"documents": models.KindDocument,
	"gallery":   models.KindGalleryItem,
}

// Register wires up API routes and performs automatic migrations. notifier
// may be nil.
func Register(router *gin.Engine, db *gorm.DB, cfg config.Config, notifier services.RollbackNotifier) error {
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.Register(registry)
	router.GET("/metrics", gin.WrapH(metrics.Handler(registry)))

	entityRegistry := services.DefaultRegistry()
	auditService := services.NewAuditService(db)
	trailService := services.NewTrailService(db)
	entityService := services.NewEntityService(db, entityRegistry, trailService, auditService)
	rollbackService := services.NewRollbackService(db, trailService, auditService, entityRegistry, notifier)
	authService := services.NewAuthService(db, cfg)

	api := router.Group("/api/v1")
	api.GET("/health", handlers.HealthHandler)

	authHandler := handlers.NewAuthHandler(authService)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(authService))
	{
		protected.GET("/auth/me", authHandler.Me)

		for path, kind := range entityPaths {
			handlers.NewEntityHandler(entityService, kind).Register(protected.Group("/" + path))
		}

		userHandler := handlers.NewUserHandler(authService, auditService)
		users := protected.Group("/users", middleware.RequireRole(models.RoleAdmin))
		users.GET("", userHandler.ListUsers)
		users.POST("", userHandler.CreateUser)

		auditHandler := handlers.NewAuditHandler(auditService)
		protected.GET("/audit-entries", auditHandler.List)

		trailHandler := handlers.NewTrailHandler(trailService, rollbackService)
		protected.GET("/decision-trails", trailHandler.List)
		protected.GET("/decision-trails/:id", trailHandler.Get)
		protected.POST("/decision-trails/:id/rollback",
			middleware.RequireRole(models.RoleAdmin, models.RoleOperator),
			trailHandler.Rollback)
	}

	return nil
}
