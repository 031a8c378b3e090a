package http

import (
	natsadapter "github.com/samirrijal/missionsketch/internal/adapters/nats"
	"github.com/samirrijal/missionsketch/internal/adapters/postgres"
	"github.com/samirrijal/missionsketch/internal/adapters/valkey"
	"github.com/samirrijal/missionsketch/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
// Everything except Missions is optional.
type Dependencies struct {
	Missions *usecases.MissionService
	Relay    *natsadapter.Relay
	DB       *postgres.DB
	Cache    *valkey.Cache
}
