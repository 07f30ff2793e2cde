package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	_ "github.com/joho/godotenv/autoload"

	"github.com/dmitrijs2005/kidkeeper/internal/client/cli"
	"github.com/dmitrijs2005/kidkeeper/internal/client/config"
	"github.com/dmitrijs2005/kidkeeper/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger, err := logging.New(cfg.LogLevel, os.Stderr)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
