package main

import (
	"context"
	"crypto/rand"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/opscore/cmdcenter/internal/client/models"
	"github.com/opscore/cmdcenter/internal/logging"
	"github.com/opscore/cmdcenter/internal/stubserver"
)

func main() {

	addr := flag.String("a", ":8000", "listen address")
	flag.Parse()

	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		log.Fatalf("%v", err)
	}

	srv := stubserver.New(secret, logger,
		stubserver.WithAccount("editor", "editor@example.com", "editor123", models.RoleEditor),
		stubserver.WithAccount("viewer", "viewer@example.com", "viewer123", models.RoleViewer),
	)

	logger.Info(context.Background(), "stub backend listening", "addr", *addr)
	if err := http.ListenAndServe(*addr, srv.Handler()); err != nil {
		log.Fatalf("%v", err)
	}

}
