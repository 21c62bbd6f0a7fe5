package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"calmcompanion/internal/ai"
	"calmcompanion/internal/config"
	"calmcompanion/internal/handlers"
	"calmcompanion/internal/repository"
	"calmcompanion/internal/scheduler"
	"calmcompanion/internal/security"
	"calmcompanion/internal/service"
	"calmcompanion/internal/storage"
)

func main() {
	// Load configuration
	cfg := config.Load()
	ctx := context.Background()

	// Open the key-value backend (sql, redis or memory)
	backend, err := storage.OpenBackend(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	store := storage.NewStore(backend)
	defer store.Close()

	cs := repository.NewCollectionStore(ctx, store, storage.NewKeyspace(cfg.StorePrefix, cfg.DefaultProfileID))

	// Initialize repositories
	profileRepo := repository.NewProfileRepository(cs)
	activityRepo := repository.NewActivityRepository(cs)
	reviewRepo := repository.NewReviewRepository(cs)
	gameStatsRepo := repository.NewGameStatsRepository(cs)
	settingsRepo := repository.NewSettingsRepository(cs)
	alarmRepo := repository.NewAlarmRepository(cs)

	// Initialize services
	profileService := service.NewProfileService(cs, profileRepo)
	backupService := service.NewBackupService(cs)
	gameService := service.NewGameService(gameStatsRepo)

	caregiverService, err := service.NewCaregiverService(cs, cfg.JWTSecret, cfg.CaregiverTokenTTL)
	if err != nil {
		log.Fatalf("Failed to initialize caregiver lock: %v", err)
	}

	mailer, err := service.NewSESMailer(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.Debug)
	if err != nil {
		log.Printf("Warning: Failed to initialize email service: %v", err)
		log.Printf("Activity digests will not be emailed")
		mailer = service.NewDisabledMailer(cfg.Debug)
	}
	digestService := service.NewDigestService(cs, activityRepo, profileRepo, mailer)

	gateway, err := ai.NewGenAIGateway(ctx, cfg.GenAIAPIKey, cfg.GenAITextModel, cfg.GenAIImageModel, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize AI gateway: %v", err)
	}
	assistant := ai.NewAssistant(gateway, cfg.AITimeout)

	// Timer-driven state
	notifier := service.NewAlarmNotifier(cs.ResolvedProfileID)
	presence := scheduler.NewPresence(42, 30, 60, nil)
	limiter := security.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)

	// Per-profile session state does not survive a profile switch
	profileService.OnProfileChange(gameService.Reset)
	profileService.OnProfileChange(notifier.Reset)

	// Background tasks
	group := scheduler.NewGroup(ctx)
	tasks := []struct {
		name     string
		interval time.Duration
		task     scheduler.Task
	}{
		{"alarms", 15 * time.Second, scheduler.NewAlarmChecker(alarmRepo, notifier.Fire).Check},
		{"presence", 5 * time.Second, presence.Tick},
		{"rate-limit-cleanup", time.Hour, limiter.Cleanup},
	}
	for _, t := range tasks {
		if err := group.Every(t.name, t.interval, t.task); err != nil {
			log.Fatalf("Failed to schedule %s: %v", t.name, err)
		}
	}

	routes := &handlers.Routes{
		Middleware:  handlers.NewMiddleware(caregiverService, limiter),
		Profiles:    handlers.NewProfileHandler(profileService),
		Collections: handlers.NewCollectionHandler(cs),
		Activity:    handlers.NewActivityHandler(activityRepo, reviewRepo),
		Games:       handlers.NewGameHandler(gameService),
		AI:          handlers.NewAIHandler(assistant, settingsRepo),
		Backup:      handlers.NewBackupHandler(backupService, profileService, digestService, cfg.ImportMaxSize),
		Caregiver:   handlers.NewCaregiverHandler(caregiverService),
		Status:      handlers.NewStatusHandler(presence, notifier, scheduler.DefaultBreathingPacer()),
	}

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      routes.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.AITimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Warning: Server shutdown: %v", err)
	}
	group.Stop()
}
