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

	"wordvault-backend/internal/cache"
	"wordvault-backend/internal/config"
	"wordvault-backend/internal/database"
	"wordvault-backend/internal/handlers"
	"wordvault-backend/internal/middleware"
	"wordvault-backend/internal/repository"
	"wordvault-backend/internal/router"
	"wordvault-backend/internal/services"
	"wordvault-backend/internal/websocket"
	"wordvault-backend/internal/worker"
)

func main() {
	log.Println("🚀 Starting WordVault Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Open Local Cache Store ────
	db, err := database.NewSQLiteDB(cfg.CachePath)
	if err != nil {
		log.Fatalf("✗ Local cache open failed: %v", err)
	}
	defer db.Close()

	cacheStore, err := cache.New(db)
	if err != nil {
		log.Fatalf("✗ Local cache init failed: %v", err)
	}
	log.Printf("✓ Local cache ready (%s)", cfg.CachePath)

	// ──── Step 3: Seed Remote Credentials (env seeds, stored values win) ────
	if !cacheStore.Credentials().Configured() && cfg.BinAPIKey != "" && cfg.BinID != "" {
		cacheStore.SetCredentials(cfg.BinAPIKey, cfg.BinID)
		log.Println("✓ Remote credentials seeded from environment")
	}

	// ──── Step 4: Initialize Remote Document Client ────
	docRepo := repository.NewDocumentRepo(cacheStore, cfg.BinAPIURL)
	if cacheStore.Credentials().Configured() {
		log.Println("✓ Remote document store configured")
	} else {
		log.Println("! No remote credentials; running on local cache only")
	}

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	authService := services.NewAuthService(cacheStore, jwtAuth, cfg.AdminPassword)
	wordService := services.NewWordService(docRepo, cacheStore)
	streakService := services.NewStreakService(cacheStore)

	// ──── Initialize Handlers ────
	wsHub := websocket.NewHub()
	authHandler := handlers.NewAuthHandler(authService)
	wordHandler := handlers.NewWordHandler(wordService, wsHub, cfg.DailyWordLimit)
	setupHandler := handlers.NewSetupHandler(docRepo, cacheStore)
	streakHandler := handlers.NewStreakHandler(streakService)

	// ──── Step 5: Start Snapshot Refresher ────
	refresher := worker.NewSnapshotRefresher(docRepo, cacheStore, wsHub,
		time.Duration(cfg.SnapshotRefreshMinutes)*time.Minute)
	refresher.Start()

	// ──── Step 6: Start HTTP Server ────
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	r := router.New(
		jwtAuth,
		authLimiter,
		authHandler,
		wordHandler,
		setupHandler,
		streakHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		refresher.Stop()
		authLimiter.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ WordVault Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
