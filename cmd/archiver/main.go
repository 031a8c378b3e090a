package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/missionsketch/internal/adapters/nats"
	"github.com/samirrijal/missionsketch/internal/adapters/postgres"
	"github.com/samirrijal/missionsketch/internal/adapters/temporal"
	"github.com/samirrijal/missionsketch/internal/pkg/config"
	"github.com/samirrijal/missionsketch/internal/pkg/logging"
	"github.com/samirrijal/missionsketch/internal/workflows"
)

func main() {
	cfg, err := config.Load("missionsketch-archiver")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Telemetry.ServiceName, cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	cancel()
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	activities := &workflows.ArchiveActivities{Exports: postgres.NewExportRepo(db)}

	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable, exports will not be announced", "error", err)
		} else {
			defer pub.Close()
			activities.Publisher = pub
		}
	}

	c, err := temporal.Dial(cfg.Temporal.HostPort, cfg.Temporal.Namespace)
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.ArchiveExportWorkflow)
	w.RegisterActivity(activities)

	slog.Info("archive worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
