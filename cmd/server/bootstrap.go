package main

import (
	"github.com/haidang/taskhive/backend/internal/config"
	"github.com/haidang/taskhive/backend/internal/handlers"
	"github.com/haidang/taskhive/backend/internal/models"
	"github.com/haidang/taskhive/backend/internal/services"
	"github.com/haidang/taskhive/backend/internal/utils"
	"github.com/haidang/taskhive/backend/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// activityLogRetentionDays bounds the audit trail kept in the database.
const activityLogRetentionDays = 90

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	cfg               *config.Config
	access            *services.AccessService
	mailer            *services.Mailer
	mailQueue         services.MailQueue
	mailWorker        *services.MailWorker
	scheduler         *cron.Cron
	authHandler       *handlers.AuthHandler
	projectHandler    *handlers.ProjectHandler
	memberHandler     *handlers.MemberHandler
	invitationHandler *handlers.InvitationHandler
	taskHandler       *handlers.TaskHandler
	activityHandler   *handlers.ActivityHandler
}

// bootstrap initializes all application dependencies: database, services,
// mail queue, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	db := models.GetDB()

	services.InitActivityLogger(db)

	access := services.NewAccessService(db)
	mailer := services.NewMailer(&cfg.Mail)

	// Mail queue: asynq through Redis when enabled, inline goroutines otherwise.
	mailQueue := services.InitMailQueue(cfg)
	if syncQueue, ok := mailQueue.(*services.SyncMailQueue); ok {
		syncQueue.SetSender(mailer.SendInvitation)
	}

	var mailWorker *services.MailWorker
	if cfg.Redis.Enabled && mailQueue.IsAsync() {
		mailWorker = services.NewMailWorker(&cfg.Redis)
		if mailWorker != nil {
			mailWorker.SetSender(mailer.SendInvitation)
			mailWorker.Start()
		}
	}

	scheduler := startScheduler(cfg, db, access)

	return &appServices{
		cfg:               cfg,
		access:            access,
		mailer:            mailer,
		mailQueue:         mailQueue,
		mailWorker:        mailWorker,
		scheduler:         scheduler,
		authHandler:       handlers.NewAuthHandler(db, cfg.JWT.ExpireHour),
		projectHandler:    handlers.NewProjectHandler(db, access),
		memberHandler:     handlers.NewMemberHandler(db, access),
		invitationHandler: handlers.NewInvitationHandler(db, access, cfg.Invitation.ExpireDays),
		taskHandler:       handlers.NewTaskHandler(db, access),
		activityHandler:   handlers.NewActivityHandler(db),
	}
}

// startScheduler wires the daily background jobs: activity log retention
// and, when enabled, the invitation expiry sweep.
func startScheduler(cfg *config.Config, db *gorm.DB, access *services.AccessService) *cron.Cron {
	scheduler := cron.New()

	activityService := services.NewActivityLogService(db)
	if _, err := scheduler.AddFunc("@daily", func() {
		deleted, err := activityService.CleanupOldLogs(activityLogRetentionDays)
		if err != nil {
			logger.Errorf("Activity log cleanup failed: %v", err)
			return
		}
		if deleted > 0 {
			logger.Infof("Activity log cleanup removed %d entries", deleted)
		}
	}); err != nil {
		logger.Errorf("Failed to schedule activity log cleanup: %v", err)
	}

	if cfg.Invitation.ExpireSweep {
		invitationService := services.NewInvitationService(db, access, cfg.Invitation.ExpireDays)
		if _, err := scheduler.AddFunc("@hourly", func() {
			if _, err := invitationService.ExpireSweep(); err != nil {
				logger.Errorf("Invitation expiry sweep failed: %v", err)
			}
		}); err != nil {
			logger.Errorf("Failed to schedule invitation expiry sweep: %v", err)
		}
	}

	scheduler.Start()
	return scheduler
}

// shutdown gracefully stops background services.
func (s *appServices) shutdown() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	if s.mailWorker != nil {
		s.mailWorker.Stop()
	}
	if s.mailQueue != nil {
		s.mailQueue.Close()
	}
	logger.Info().Msg("All background services stopped")
}
