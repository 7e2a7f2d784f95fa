package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/opscore/cmdcenter/internal/client/cli"
	"github.com/opscore/cmdcenter/internal/client/config"
	"github.com/opscore/cmdcenter/internal/logging"
)

func main() {

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.LoadConfig()
	logger := logging.NewTextLogger(os.Stderr, slog.LevelWarn)

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)

}
