package main

import (
	"context"
	"log"

	"classroom-ai-be/internal/bootstrap"
	"classroom-ai-be/internal/config"
	"classroom-ai-be/internal/server"
	"classroom-ai-be/internal/tracer"
	"classroom-ai-be/pkg/database"
	"classroom-ai-be/pkg/ingestion"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start the ingestion worker. One goroutine drains the queue, so jobs
	// run strictly one at a time in submit order.
	log.Println("Background: Starting Ingestion Worker...")
	workerCtx := context.Background()
	err = container.Queue.Run(workerCtx, func(ctx context.Context, job *ingestion.Job) {
		container.Pipeline.Process(ctx, job)
	})
	if err != nil {
		log.Fatalf("Unable to start ingestion worker: %v", err)
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
