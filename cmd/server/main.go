// Package main is the entry point for the lumenserver DMX lighting
// control server.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/lacylights/lumenserver/internal/config"
	"github.com/lacylights/lumenserver/internal/database"
	"github.com/lacylights/lumenserver/internal/database/models"
	"github.com/lacylights/lumenserver/internal/database/repositories"
	"github.com/lacylights/lumenserver/internal/services/bus"
	"github.com/lacylights/lumenserver/internal/services/dmx"
	"github.com/lacylights/lumenserver/internal/services/fade"
	"github.com/lacylights/lumenserver/internal/services/playback"
	"github.com/lacylights/lumenserver/internal/services/preview"
	"github.com/lacylights/lumenserver/internal/transport/wsrelay"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load .env file if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Print startup banner
	printBanner(cfg)

	// Connect to database
	db, err := database.Connect(database.Config{
		URL:         cfg.DatabaseURL,
		MaxIdleConn: 5,
		MaxOpenConn: 10,
		Debug:       cfg.IsDevelopment(),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close() }()

	// Auto-migrate database schema
	log.Println("Running database migrations...")
	if err := db.AutoMigrate(
		&models.FixtureInstance{},
		&models.InstanceChannel{},
		&models.Scene{},
		&models.FixtureValue{},
		&models.CueList{},
		&models.Cue{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migrations complete")

	// Change Bus: fans DMX/playback/preview updates out to subscribers.
	changeBus := bus.New()

	// Output Engine
	dmxService := dmx.NewService(dmx.Config{
		Enabled:          cfg.ArtNetEnabled,
		BroadcastAddr:    cfg.ArtNetBroadcast,
		Port:             cfg.ArtNetPort,
		RefreshRateHz:    cfg.DMXRefreshRate,
		IdleRateHz:       cfg.DMXIdleRate,
		HighRateDuration: cfg.DMXHighRateDuration,
		DriftThreshold:   time.Duration(cfg.DMXDriftThreshold) * time.Millisecond,
		UniverseCount:    cfg.DMXUniverseCount,
		Bus:              changeBus,
	})
	if err := dmxService.Initialize(); err != nil {
		log.Printf("Warning: DMX service initialization failed: %v", err)
		// Continue anyway - DMX may be disabled or broadcast address unavailable
	}

	// Fade Engine
	fadeEngine := fade.NewEngine(dmxService)
	fadeEngine.Start()

	// Repository façade shared by Playback and Preview
	store := repositories.NewStore(db)

	// Playback Service
	playbackService := playback.NewService(store, dmxService, fadeEngine, changeBus)

	// Preview Session Manager
	previewService := preview.NewService(store, dmxService, changeBus, cfg.PreviewTimeout)
	_ = previewService // wired for its lifetime; reached via the out-of-scope API layer's handlers

	// Change-Bus-to-WebSocket relay
	relay := wsrelay.New(changeBus)

	// Create router
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(cfg.OperationTimeout))

	// CORS
	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin, "http://localhost:3000", "http://localhost:4000"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		Debug:            cfg.IsDevelopment(),
	})
	router.Use(corsMiddleware.Handler)

	// Routes
	router.Get("/health", healthCheckHandler)
	router.Get("/ws", relay.Handler())

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on http://localhost:%s\n", cfg.Port)
		log.Printf("WebSocket relay: ws://localhost:%s/ws\n", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Cleanup services in reverse order of startup, each bounded by the
	// configured per-operation timeout. A step that doesn't finish in time
	// is logged and skipped rather than blocking shutdown indefinitely.
	runWithTimeout(cfg.OperationTimeout, "playback cleanup", func() { playbackService.Cleanup() })
	runWithTimeout(cfg.OperationTimeout, "fade engine stop", func() { fadeEngine.Stop() })
	runWithTimeout(cfg.OperationTimeout, "dmx service stop", func() { dmxService.Stop() })

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

// runWithTimeout runs fn in the background but logs (rather than blocks
// forever on) a step that exceeds timeout, per the shutdown budget.
func runWithTimeout(timeout time.Duration, step string, fn func()) {
	done := make(chan struct{})
	go func() {
		fn()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		log.Printf("Warning: %s did not complete within %v", step, timeout)
	}
}

// healthCheckHandler returns the server health status.
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	response := fmt.Sprintf(`{
  "status": "ok",
  "timestamp": "%s",
  "version": "%s",
  "uptime": "N/A"
}`, time.Now().UTC().Format(time.RFC3339), Version)

	_, _ = w.Write([]byte(response))
}

// printBanner prints the startup banner.
func printBanner(cfg *config.Config) {
	fmt.Println("============================================")
	fmt.Println("  lumenserver")
	fmt.Printf("  Version: %s\n", Version)
	fmt.Printf("  Build:   %s\n", BuildTime)
	fmt.Printf("  Commit:  %s\n", GitCommit)
	fmt.Println("============================================")
	fmt.Printf("  Environment: %s\n", cfg.Env)
	fmt.Printf("  Port:        %s\n", cfg.Port)
	fmt.Printf("  Database:    %s\n", cfg.DatabaseURL)
	fmt.Printf("  Art-Net:     %v\n", cfg.ArtNetEnabled)
	fmt.Println("============================================")
}
