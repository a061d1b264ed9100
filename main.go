package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ivanblascoverdu/facturacion/internal/api"
	"github.com/ivanblascoverdu/facturacion/internal/cache"
	"github.com/ivanblascoverdu/facturacion/internal/config"
	"github.com/ivanblascoverdu/facturacion/internal/email"
	"github.com/ivanblascoverdu/facturacion/internal/models"
	"github.com/ivanblascoverdu/facturacion/internal/seed"
	"github.com/ivanblascoverdu/facturacion/internal/services"
	"github.com/ivanblascoverdu/facturacion/internal/store"
	"github.com/ivanblascoverdu/facturacion/internal/tasks"
)

var (
	runMode  = flag.String("m", "all", "Run mode: 'api', 'bg' (background tasks), 'all' (default)")
	seedData = flag.Bool("seed", false, "Populate the store with demo data on startup")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*runMode)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize the in-memory store from the configured clinic defaults.
	// All entity state is process-lifetime only.
	st := store.New(models.ClinicConfig{
		Name:           cfg.ClinicName,
		Address:        cfg.ClinicAddress,
		Phone:          cfg.ClinicPhone,
		Email:          cfg.ClinicEmail,
		TaxID:          cfg.ClinicTaxID,
		Website:        cfg.ClinicWebsite,
		DefaultVATRate: cfg.DefaultVATRate,
		InvoicePrefix:  cfg.InvoicePrefix,
		ReminderDays:   cfg.ReminderDays,
	})

	if *seedData {
		if err := seed.Load(st, cfg); err != nil {
			log.Fatalf("Failed to seed demo data: %v", err)
		}
	}

	// Initialize Cache (Redis)
	redisClient, err := cache.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer func() {
		if err := cache.DisconnectRedis(redisClient); err != nil {
			log.Printf("Error disconnecting from Redis: %v", err)
		}
	}()

	// Initialize Email Sender
	var primaryEmailSender email.Sender
	if os.Getenv("MOCK_SERVICES") == "true" {
		log.Println("MOCK_SERVICES enabled: Using Redis email sender.")
		primaryEmailSender = email.NewRedisSender(redisClient, cfg)
	} else {
		log.Println("MOCK_SERVICES disabled or not set: Using SMTP/Logging email sender.")
		primaryEmailSender = email.NewSMTPSender(cfg)
	}

	compositeSender := email.NewCompositeEmailSender(primaryEmailSender)

	// Optionally add FileEmailSender if LOG_EMAILS is set
	logEmailsPath := os.Getenv("LOG_EMAILS")
	if logEmailsPath != "" {
		log.Printf("LOG_EMAILS set to '%s', enabling file email logger.", logEmailsPath)
		fileSender, err := email.NewFileEmailSender(logEmailsPath, cfg)
		if err != nil {
			log.Printf("WARNING: Failed to initialize file email sender (LOG_EMAILS='%s'): %v. Proceeding without file logging.", logEmailsPath, err)
		} else {
			compositeSender.AddSender(fileSender)
		}
	}
	finalEmailSender := email.Sender(compositeSender)

	// Services shared between the API and the task processor
	billingService := services.NewBillingService(st, cfg)

	// Task client and processor
	taskClient := tasks.NewClient(redisClient)
	taskProcessor := tasks.NewTaskProcessor(cfg, st, billingService, finalEmailSender, taskClient)

	var wg sync.WaitGroup

	// Channel to signal shutdown from Service API
	shutdownChan := make(chan struct{}, 1)

	// Start Service API (always runs)
	serviceRouter := api.SetupServiceRouter(cfg, redisClient, shutdownChan)
	serviceSrv := &http.Server{
		Addr:    ":" + cfg.ServiceApiPort,
		Handler: serviceRouter,
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		fmt.Printf("Service API listening on :%s\n", cfg.ServiceApiPort)
		if err := serviceSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Service API ListenAndServe error: %v", err)
		}
	}()

	// --- Mode-specific servers ---
	var mainApiSrv *http.Server
	var backgroundTaskSrv *asynq.Server
	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()

	fmt.Printf("Starting application in '%s' mode...\n", cfg.RunMode)

	apiMode := func() {
		mainApiRouter := api.SetupRouter(cfg, st)
		mainApiSrv = &http.Server{
			Addr:    ":" + cfg.ApiPort,
			Handler: mainApiRouter,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			fmt.Printf("Main API listening on :%s\n", cfg.ApiPort)
			if err := mainApiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Main API ListenAndServe error: %v", err)
			}
		}()
	}

	bgMode := func() {
		fmt.Println("Starting background worker...")
		srv, mux := tasks.SetupServer(redisClient, taskProcessor)
		backgroundTaskSrv = srv
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.Run(mux); err != nil {
				log.Fatalf("Background task server error: %v", err)
			}
		}()
		// Periodically enqueue the overdue sweep
		wg.Add(1)
		go func() {
			defer wg.Done()
			tasks.StartOverdueScheduler(schedulerCtx, taskClient, cfg.OverdueCheckInterval)
		}()
	}

	switch cfg.RunMode {
	case "api":
		apiMode()
	case "bg":
		bgMode()
	case "all":
		apiMode()
		bgMode()
	default:
		log.Fatalf("Invalid run mode specified: %s.", cfg.RunMode)
	}

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		fmt.Printf("\nReceived signal: %s. Shutting down gracefully...\n", sig)
	case <-shutdownChan:
		fmt.Println("\nShutdown requested via Service API. Shutting down gracefully...")
	}

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	stopScheduler()

	if err := serviceSrv.Shutdown(ctxShutdown); err != nil {
		log.Printf("Service API server shutdown error: %v", err)
	}
	if mainApiSrv != nil {
		if err := mainApiSrv.Shutdown(ctxShutdown); err != nil {
			log.Printf("Main API server shutdown error: %v", err)
		}
	}
	if backgroundTaskSrv != nil {
		backgroundTaskSrv.Shutdown()
	}

	wg.Wait()
	fmt.Println("Server gracefully stopped")
}
