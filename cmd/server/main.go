package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/kitlibrarian/internal/logging"
	"github.com/dmitrijs2005/kitlibrarian/internal/server"
	"github.com/dmitrijs2005/kitlibrarian/internal/server/config"
)

func main() {

	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "startup failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	app.Run(ctx)
}
