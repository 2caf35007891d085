package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"docworkspace/internal/bootstrap"
	"docworkspace/internal/config"
	"docworkspace/internal/server"
	"docworkspace/internal/tracer"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(cfg)
	defer container.Close()

	shutdownTracer := tracer.InitTracer(cfg.Tracing, container.Logger)
	defer shutdownTracer(context.Background())

	// 3. Start Background Services
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go container.WebSocketHub.Run(ctx)
	if err := container.ChangeFeedService.Consume(ctx); err != nil {
		log.Fatalf("Failed to start change feed: %v", err)
	}
	if err := container.ActivityService.Start(ctx); err != nil {
		container.Logger.Warn("Main", "Activity feed unavailable", map[string]interface{}{"error": err.Error()})
	}

	// 4. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(); err != nil {
			container.Logger.Error("Main", "Server shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	// 5. Run Server
	if err := srv.Run(); err != nil {
		log.Fatal(err)
	}
}
