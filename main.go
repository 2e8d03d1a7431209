package main

import (
	"log"

	"github.com/joho/godotenv"

	"epireport/app"
	"epireport/internal/config"
	"epireport/internal/logging"
	"epireport/ui"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.Logging)
	analyzer := app.Default(cfg.Report.Region, cfg.Report.TopN, logger)

	webApp, err := ui.NewApp(cfg, analyzer, logger)
	if err != nil {
		log.Fatalf("Failed to initialize web app: %v", err)
	}

	log.Fatal(webApp.Start())
}
