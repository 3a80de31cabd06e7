package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"gorm.io/gorm"

	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/config"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/database"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/logger"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/models"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/services"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/snapshot"
)

const demoOrg = "demo"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger.Init(cfg.Debug, os.Stdout)

	db, err := database.Connect(cfg.DatabasePath)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}
	fmt.Println("✓ Database migrated successfully")

	ctx := context.Background()
	admin := seedAdmin(ctx, db, cfg)

	var existing int64
	if err := db.Model(&models.Contact{}).Where("org_id = ?", demoOrg).Count(&existing).Error; err != nil {
		log.Fatal("Failed to count contacts:", err)
	}
	if existing > 0 {
		fmt.Println("  Demo records already exist")
		return
	}

	registry := services.DefaultRegistry()
	audit := services.NewAuditService(db)
	trails := services.NewTrailService(db)
	entities := services.NewEntityService(db, registry, trails, audit)
	actor := services.Actor{OrgID: demoOrg, UserID: &admin.ID}

	company := &models.Company{OrgID: demoOrg, Name: "Analytical Engines Ltd", Industry: "Computing"}
	if err := db.Create(company).Error; err != nil {
		log.Fatal("Failed to seed company:", err)
	}

	records := []struct {
		kind    string
		payload snapshot.Snapshot
	}{
		{models.KindContact, snapshot.Snapshot{"name": "Ada Lovelace", "email": "ada@example.com", "status": "customer", "companyId": company.ID, "tags": []any{"vip"}}},
		{models.KindContact, snapshot.Snapshot{"name": "Charles Babbage", "email": "charles@example.com", "companyId": company.ID}},
		{models.KindDeal, snapshot.Snapshot{"title": "Difference Engine No. 2", "value": 25000.0, "stage": "proposal", "probability": 60, "companyId": company.ID}},
		{models.KindInvoice, snapshot.Snapshot{"number": "INV-0001", "clientName": "Analytical Engines Ltd", "amount": 4200.0, "currency": "GBP", "status": "sent", "issueDate": "2025-01-15", "dueDate": "2025-02-15"}},
		{models.KindExpense, snapshot.Snapshot{"description": "Brass gears", "amount": 310.0, "currency": "GBP", "category": "materials", "incurredOn": "2025-01-20"}},
		{models.KindDocument, snapshot.Snapshot{"title": "Sketch of the Analytical Engine", "category": "research", "mimeType": "application/pdf", "sizeBytes": 482133}},
		{models.KindGalleryItem, snapshot.Snapshot{"title": "Workshop", "album": "office", "takenAt": "2024-11-02T10:00:00Z"}},
	}
	for _, r := range records {
		res, err := entities.Create(ctx, actor, r.kind, r.payload)
		if err != nil {
			log.Printf("Failed to seed %s: %v", r.kind, err)
			continue
		}
		fmt.Printf("✓ Created %s (trail %s)\n", r.kind, res.TrailID)
	}

	fmt.Println("\n✓ Database seeding completed successfully!")
	fmt.Printf("  Log in as %s to browse the demo organization.\n", admin.Email)
}

// seedAdmin returns the demo admin, creating it on first run. The password
// comes from CRM_SEED_PASSWORD.
func seedAdmin(ctx context.Context, db *gorm.DB, cfg config.Config) *models.User {
	const email = "admin@example.com"

	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	if err == nil {
		fmt.Printf("  User already exists: %s\n", user.Email)
		return &user
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Fatal("Failed to look up admin:", err)
	}

	password := os.Getenv("CRM_SEED_PASSWORD")
	if password == "" {
		password = "change-me-please"
	}
	created, err := services.NewAuthService(db, cfg).Register(ctx, demoOrg, email, password, "Demo Admin", models.RoleAdmin)
	if err != nil {
		log.Fatal("Failed to seed user:", err)
	}
	fmt.Printf("✓ Created default user: %s\n", created.Email)
	return created
}
