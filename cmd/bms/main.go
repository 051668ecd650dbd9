package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/MIDNayanajith/kasthuri-backend/internal/config"
	"github.com/MIDNayanajith/kasthuri-backend/internal/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load .env file: %v\n", err)
	}

	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
