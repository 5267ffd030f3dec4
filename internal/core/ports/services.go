package ports

import (
	"context"

	"github.com/wasteatlas/wasteatlas/internal/core/domain"
)

// EventPublisher publishes atlas events to a message broker.
type EventPublisher interface {
	PublishSequenceChanged(ctx context.Context, ev *domain.SequenceEvent) error
	PublishDatasetsReload(ctx context.Context, names []string) error
}

// EventSubscriber subscribes to atlas events from a message broker.
type EventSubscriber interface {
	SubscribeSequenceChanged(ctx context.Context, handler func(ctx context.Context, ev *domain.SequenceEvent) error) error
	SubscribeDatasetsReload(ctx context.Context, handler func(ctx context.Context, names []string) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// TileFetcher fetches basemap tiles from an upstream tile server.
type TileFetcher interface {
	Fetch(ctx context.Context, z, x, y int) ([]byte, string, error)
}
