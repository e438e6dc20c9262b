package main

import (
	"context"
	"os"

	"github.com/yigit/schooldir/internal/pkg/logger"
	"github.com/yigit/schooldir/internal/server"
)

// @title School Directory API
// @version 1.0
// @description Lists schools and accepts new submissions with a photo.

// @host localhost:8080
// @BasePath /api
// @schemes http https

func main() {
	srv, err := server.NewServer(context.Background(), os.Getenv("CONFIG_PATH"))
	if err != nil {
		// Error details are logged within NewServer's setup functions
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
