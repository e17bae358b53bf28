package main

import (
	"context"
	"log"

	"hrleave/internal/app/server"
	"hrleave/internal/platform/config"
)

func main() {
	cfg := config.Load()

	app, err := server.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	if err := app.Run(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
