package http

import (
	"github.com/nats-io/nats.go"

	"github.com/wasteatlas/wasteatlas/internal/adapters/postgres"
	"github.com/wasteatlas/wasteatlas/internal/adapters/valkey"
	"github.com/wasteatlas/wasteatlas/internal/core/domain"
	"github.com/wasteatlas/wasteatlas/internal/core/ports"
	"github.com/wasteatlas/wasteatlas/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers. Everything
// below Frames is optional.
type Dependencies struct {
	Datasets *usecases.DatasetService
	Sequence *usecases.SequenceController
	Frames   *usecases.FrameService

	// View is the initial viewport of the map page and the default
	// zoom for hit tests. Width and Height size /v1/frame.svg.
	View          domain.MapView
	Width, Height int

	Tiles ports.TileFetcher
	NATS  *nats.Conn
	DB    *postgres.DB
	Cache *valkey.Cache
}
