package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/flixflex/flixflex/internal/server"
	"github.com/flixflex/flixflex/internal/server/config"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)
}
