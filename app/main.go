package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lovlytt/lovlytt/app/api"
	"github.com/lovlytt/lovlytt/app/cfg"
	"github.com/lovlytt/lovlytt/app/database"
	"github.com/lovlytt/lovlytt/app/feed"
	"github.com/lovlytt/lovlytt/app/fetch"
	"github.com/lovlytt/lovlytt/app/forward"
	"github.com/lovlytt/lovlytt/app/marker"
	"github.com/lovlytt/lovlytt/app/sources"
	"github.com/lovlytt/lovlytt/app/tasks"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Local development convenience; absence of a .env file is not an error
	_ = godotenv.Load()

	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	if appCfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	log.Printf("Starting Lovlytt server (version %s)...", appCfg.Version)

	log.Println("Connecting to database...")
	db, err := database.NewConnection(
		appCfg.DBHost, appCfg.DBPort, appCfg.DBUser,
		appCfg.DBPassword, appCfg.DBName)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer db.Close()
	log.Println("Connected to database successfully")

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}
	log.Printf("Database migrations applied (version %d, dirty: %v)", version, dirty)

	log.Printf("Loading source configurations from %s...", appCfg.SourcesDir)
	loader := sources.NewLoader(appCfg.SourcesDir)
	configs, err := loader.LoadAll()
	if err != nil {
		log.Fatal("Failed to load source configurations: ", err)
	}
	log.Printf("Loaded %d source configurations", len(configs))
	configCache := sources.NewCache(configs)

	markers, err := marker.NewStore(appCfg.RedisAddr)
	if err != nil {
		log.Fatal("Failed to connect to marker store: ", err)
	}
	defer markers.Close()

	proposalRepo := database.NewProposalRepository(db)
	documentRepo := database.NewDocumentRepository(db)

	httpClient := &http.Client{}
	feedParser := feed.NewParser()

	detailFetcher := fetch.NewFetcher(
		fetch.NewProxyStrategy(httpClient, appCfg.ProxyURL, appCfg.UserAgent, appCfg.MinContentLength),
		fetch.NewDirectStrategy(httpClient, appCfg.DetailUserAgent, appCfg.MinContentLength),
	)

	ingestForwarder := forward.NewIngestForwarder(httpClient, appCfg.IngestURL, appCfg.IngestSecret)
	matcherForwarder := forward.NewMatcherForwarder(httpClient, appCfg.MatcherURL, appCfg.MatcherSecret)

	log.Printf("Starting background scheduler with %d workers...", appCfg.WorkerCount)
	scheduler := tasks.NewScheduler(configCache, markers, httpClient, feedParser, ingestForwarder)
	scheduler.Start()
	defer scheduler.Stop()

	log.Println("Initializing HTTP server...")
	apiHandler := api.NewHandler(proposalRepo, documentRepo, configCache, scheduler, detailFetcher, matcherForwarder)
	server := api.NewServer(apiHandler)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		log.Printf("Starting HTTP server on port %s", appCfg.Port)
		log.Printf("Endpoints available:")
		log.Printf("  Proposals:     http://localhost:%s/proposals", appCfg.Port)
		log.Printf("  Health check:  http://localhost:%s/health", appCfg.Port)
		log.Printf("  Statistics:    http://localhost:%s/stats", appCfg.Port)
		log.Printf("  Ingest:        http://localhost:%s/api/ingest (POST)", appCfg.Port)
		log.Printf("  Match webhook: http://localhost:%s/api/match (POST)", appCfg.Port)
		log.Printf("  Link:          http://localhost:%s/api/link (POST)", appCfg.Port)
		log.Printf("  Documents:     http://localhost:%s/api/documents (POST)", appCfg.Port)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	log.Println("Lovlytt server started successfully!")
	log.Println("Press Ctrl+C to shutdown gracefully...")

	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
	case err := <-serverErrChan:
		log.Printf("Server error: %v", err)
	}

	log.Println("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	} else {
		log.Println("HTTP server stopped")
	}

	// Scheduler is stopped via defer
	log.Println("Lovlytt server shutdown complete")
}
