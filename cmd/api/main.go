package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/robfig/cron/v3"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"

	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/config"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/database"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/logger"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/models"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/server"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/services"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Setup logging with rotation
	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		log.Fatalf("create log dir: %v", err)
	}
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogDir, "crm.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	defer rotator.Close()

	mw := io.MultiWriter(os.Stdout, rotator)
	log.SetOutput(mw)
	logger.Init(cfg.Debug, mw)

	db, err := database.Connect(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}

	// Handle CLI commands
	if len(os.Args) > 1 && os.Args[1] == "reset-password" {
		if len(os.Args) != 4 {
			log.Fatalf("Usage: %s reset-password <email> <new-password>", os.Args[0])
		}
		resetPassword(db, os.Args[2], os.Args[3])
		return
	}

	logger.Log().WithField("version", version.Full()).Infof("starting %s", version.Name)

	notifier := services.NewNotificationService(cfg.NotifyURLs)
	srv, err := server.New(db, cfg, notifier)
	if err != nil {
		log.Fatalf("create server: %v", err)
	}

	stats := services.NewStatsService(services.NewTrailService(db))
	scheduler := cron.New()
	if _, err := stats.Schedule(scheduler, cfg.StatsSchedule); err != nil {
		log.Fatalf("schedule stats job: %v", err)
	}
	scheduler.Start()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Log().WithField("port", cfg.HTTPPort).Info("listening")
	if err := srv.Run(ctx); err != nil {
		logger.Log().WithError(err).Error("server error")
	}

	<-scheduler.Stop().Done()
	notifier.Wait()
	logger.Log().Info("shutdown complete")
}

func resetPassword(db *gorm.DB, email, password string) {
	var user models.User
	if err := db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error; err != nil {
		log.Fatalf("user not found: %v", err)
	}
	if len(password) < 8 {
		log.Fatalf("password must be at least 8 characters")
	}
	if err := user.SetPassword(password); err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	user.Enabled = true
	if err := db.Save(&user).Error; err != nil {
		log.Fatalf("failed to save user: %v", err)
	}
	log.Printf("Password updated successfully for user %s", user.Email)
}
