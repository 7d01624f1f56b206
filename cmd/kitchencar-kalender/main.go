package main

import (
	"context"
	"embed"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/klabast/wb-services/kitchencar-kalender/internal/app"
	"github.com/klabast/wb-services/kitchencar-kalender/internal/commands"
)

//go:embed static/*
var staticFiles embed.FS

func main() {
	// Subcommands that do not need the configuration
	if len(os.Args) > 1 && os.Args[1] == "hash-password" {
		commands.HashPassword(os.Args[2:])
		return
	}

	if len(os.Args) > 1 && os.Args[1] == "scrape" {
		commands.Scrape(os.Args[2:])
		return
	}

	// Parse flags
	configPath := flag.String("config", "", "Path to YAML config file (or CONFIG_PATH)")
	port := flag.Int("port", 0, "Port to listen on (overrides config)")
	dataDir := flag.String("data", "", "Data directory with markets.json (overrides config)")
	flag.BoolVar(&app.AdminMode, "admin", false, "Enable admin endpoints (data reload)")
	flag.Parse()

	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ApplyFlags(*port, *dataDir); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	app.Settings = cfg
	app.Source = app.NewDataSource(cfg)

	// Load and validate auth credentials (if admin mode)
	if app.AdminMode {
		if err := app.LoadAuthCredentials(); err != nil {
			log.Fatalf("Failed to load auth credentials: %v", err)
		}
	}

	// Without a market list there is nothing to show
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	if err := app.LoadData(ctx); err != nil {
		log.Fatalf("Failed to load market data: %v", err)
	}
	cancel()

	// Setup routes
	http.HandleFunc("/", app.ServeIndex)
	http.HandleFunc("/api/config", app.GetConfig)
	http.HandleFunc("/api/calendar", app.HandleCalendar)
	http.HandleFunc("/api/day", app.HandleDay)
	http.HandleFunc("/api/download", app.HandleDownload)
	http.HandleFunc("/api/subscribe/", app.HandleSubscribe)

	// Admin routes (protected with Basic Auth)
	if app.AdminMode {
		http.HandleFunc("/api/reload", app.RequireAuth(app.HandleReload))
	}

	// Serve static files
	http.Handle("/static/", http.FileServer(http.FS(staticFiles)))

	mode := app.ModeServe
	if app.AdminMode {
		mode = app.ModeAdmin
	}

	log.Printf("Starting KitchenCar Kalender in %s mode on http://localhost:%d", mode, cfg.Port)
	if cfg.DataURL != "" {
		log.Printf("Data source: %s", cfg.DataURL)
	} else {
		log.Printf("Data directory: %s", cfg.DataDir)
	}
	if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.Port), nil); err != nil {
		log.Fatal(err)
	}
}
