package main

import (
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"retrospective/backend/config"
	"retrospective/backend/handlers"
	"retrospective/backend/models"
	"retrospective/backend/router"
	"retrospective/backend/ws"
	"retrospective/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogging(cfg.Logging)

	db := models.InitDB(cfg.Storage.DatabasePath)
	defer db.Close()

	database.SeedTestUsers(db)

	handlers.SetDB(db)

	hub := ws.NewHub()
	go hub.Run()
	handlers.SetHub(hub)

	handler := router.New(hub)

	log.Info().Str("addr", cfg.Server.Addr).Msg("Server started")
	if err := http.ListenAndServe(cfg.Server.Addr, handler); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

func setupLogging(cfg config.LoggingConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
