package main

import (
	"context"
	"log"

	"github.com/furkantngr/ragchatbot/internal/bootstrap"
	"github.com/furkantngr/ragchatbot/internal/config"
	"github.com/furkantngr/ragchatbot/internal/server"
	"github.com/furkantngr/ragchatbot/pkg/database"
)

func main() {
	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}
	if err := database.Migrate(gormDB); err != nil {
		log.Panicf("Migration failed: %v", err)
	}

	container := bootstrap.NewChatContainer(gormDB, cfg)
	defer container.Logger.Sync()

	if err := container.ConsumerService.Consume(context.Background()); err != nil {
		log.Printf("Background consumer error: %v", err)
	}

	// Load the session up front; failure is not fatal, the server
	// answers "not ready" until a refresh succeeds.
	if err := container.Engine.Initialize(context.Background()); err != nil {
		container.Logger.Error("main", "initial session load failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	srv := server.NewChat(cfg, container)
	log.Fatal(srv.Run())
}
