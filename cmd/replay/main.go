package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/samirrijal/missionsketch/internal/adapters/sketch"
	"github.com/samirrijal/missionsketch/internal/core/domain"
	"github.com/samirrijal/missionsketch/internal/core/usecases"
	"github.com/samirrijal/missionsketch/internal/pkg/geospatial"
	"github.com/samirrijal/missionsketch/internal/pkg/logging"
	"github.com/samirrijal/missionsketch/internal/replay"
)

func main() {
	var (
		outDir    = flag.StringP("out", "o", ".", "directory exports are written to")
		format    = flag.StringP("format", "f", "csv", "format for export events that do not name one")
		distance  = flag.String("distance", "planar", "distance calculator: planar or haversine")
		mode      = flag.String("insert-mode", string(domain.InsertVertices), "polygon insert mode: vertices or area")
		strict    = flag.Bool("strict", false, "stop at the first rejected event")
		logLevel  = flag.String("log-level", "info", "log level")
		logFormat = flag.String("log-format", "text", "log format: json or text")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] script.json\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	logger := logging.Setup("missionsketch-replay", *logLevel, *logFormat)

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	calc, err := geospatial.NewCalculator(*distance)
	if err != nil {
		logger.Error("invalid distance calculator", "error", err)
		os.Exit(2)
	}

	switch domain.InsertMode(*mode) {
	case domain.InsertVertices, domain.InsertArea:
	default:
		logger.Error("invalid insert mode", "mode", *mode)
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		logger.Error("open script", "error", err)
		os.Exit(1)
	}
	script, err := replay.Load(f)
	f.Close()
	if err != nil {
		logger.Error("load script", "path", flag.Arg(0), "error", err)
		os.Exit(1)
	}

	notifier := replay.LogNotifier{Logger: logger}
	runner := &replay.Runner{
		Missions: usecases.NewMissionService(usecases.MissionServiceConfig{
			Surface:  sketch.NewSurface(0),
			Notifier: notifier,
			Panels:   notifier,
			Distance: calc,
			Mode:     domain.InsertMode(*mode),
		}),
		Delivery:      replay.DirDelivery{Dir: *outDir},
		DefaultFormat: *format,
		Strict:        *strict,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := runner.Run(ctx, script)
	if err != nil {
		logger.Error("replay failed", "mission", res.MissionID, "error", err)
		os.Exit(1)
	}
	logger.Info("replay complete",
		slog.String("mission", res.MissionID),
		slog.Int("applied", res.Applied),
		slog.Int("rejected", res.Rejected),
		slog.Int("route_len", len(res.Final.Route)),
		slog.Any("files", res.Files),
	)
}
