package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/missionsketch/internal/adapters/http"
	natsadapter "github.com/samirrijal/missionsketch/internal/adapters/nats"
	"github.com/samirrijal/missionsketch/internal/adapters/postgres"
	"github.com/samirrijal/missionsketch/internal/adapters/sketch"
	"github.com/samirrijal/missionsketch/internal/adapters/temporal"
	"github.com/samirrijal/missionsketch/internal/adapters/valkey"
	"github.com/samirrijal/missionsketch/internal/core/domain"
	"github.com/samirrijal/missionsketch/internal/core/usecases"
	"github.com/samirrijal/missionsketch/internal/pkg/config"
	"github.com/samirrijal/missionsketch/internal/pkg/geospatial"
	"github.com/samirrijal/missionsketch/internal/pkg/logging"
	"github.com/samirrijal/missionsketch/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("missionsketch-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Telemetry.ServiceName, cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	distance, err := geospatial.NewCalculator(cfg.Geometry.DistanceFormula)
	if err != nil {
		log.Fatalf("geometry: %v", err)
	}

	svcCfg := usecases.MissionServiceConfig{
		Surface:  sketch.NewSurface(cfg.Geometry.MaxActiveDraws),
		Distance: distance,
		Mode:     domain.InsertMode(cfg.Geometry.PolygonInsertMode),
		CacheTTL: cfg.Export.CacheTTL,
	}
	deps := &http.Dependencies{}

	// NATS: operator notifications, panel signals and the WebSocket relay
	// share one connection.
	if cfg.NATS.Enabled {
		conn, err := natsadapter.RawConn(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			pub, err := natsadapter.NewPublisherConn(conn)
			if err != nil {
				slog.Warn("nats publisher unavailable", "error", err)
				conn.Close()
			} else {
				defer pub.Close()
				svcCfg.Notifier = pub
				svcCfg.Panels = pub
				deps.Relay = natsadapter.NewRelay(conn)
				defer deps.Relay.Close()
			}
		}
	}

	if cfg.Valkey.Enabled {
		cache, err := valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable", "error", err)
		} else {
			defer cache.Close()
			svcCfg.Cache = cache
			deps.Cache = cache
		}
	}

	if cfg.Export.Archive {
		db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		go db.ReportPoolMetrics(ctx, 15*time.Second)

		repo := postgres.NewExportRepo(db)
		svcCfg.Exports = repo
		svcCfg.Archiver = repo
		deps.DB = db

		if cfg.Temporal.Enabled {
			tc, err := temporal.Dial(cfg.Temporal.HostPort, cfg.Temporal.Namespace)
			if err != nil {
				log.Fatalf("temporal: %v", err)
			}
			defer tc.Close()
			svcCfg.Archiver = temporal.NewArchiver(tc, cfg.Temporal.TaskQueue)
			slog.Info("exports archived through workflow", "task_queue", cfg.Temporal.TaskQueue)
		}
	}

	deps.Missions = usecases.NewMissionService(svcCfg)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Mission Sketch API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, If-None-Match",
		ExposeHeaders:    "Content-Disposition, ETag, Link, Location, X-Request-ID",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps, http.RouterConfig{
		RequestTimeout: time.Duration(cfg.Server.RequestTimeout) * time.Second,
		RateLimit:      cfg.Server.RateLimit,
	})

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr,
			"distance", cfg.Geometry.DistanceFormula, "polygon_mode", cfg.Geometry.PolygonInsertMode)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
