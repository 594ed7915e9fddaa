package main

import (
	"log"

	"rivalscan-backend/internal/bootstrap"
	"rivalscan-backend/internal/shared/config"
	"rivalscan-backend/internal/shared/server"
)

func main() {
	cfg := config.Load()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	if app.StopJanitor != nil {
		defer app.StopJanitor()
	}

	addr := server.Addr(cfg.Port)
	log.Printf("Starting API server on %s", addr)

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
