package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/wasteatlas/wasteatlas/internal/core/domain"
)

// Subjects carrying atlas events.
const (
	SubjectSequenceChanged = "atlas.sequence.changed"
	SubjectDatasetsReload  = "atlas.datasets.reload"

	reloadStream = "ATLAS_RELOADS"
)

// ReloadMessage is the payload of a datasets reload request.
type ReloadMessage struct {
	Datasets    []string  `json:"datasets"`
	RequestedAt time.Time `json:"requested_at"`
}

// Publisher implements ports.EventPublisher. Sequence changes go out on
// core NATS for live fan-out; reload requests go through JetStream so an
// API that is restarting still sees them.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and ensures the reload stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:      reloadStream,
		Subjects:  []string{"atlas.datasets.>"},
		Retention: nats.LimitsPolicy,
		MaxAge:    1 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

func (p *Publisher) PublishSequenceChanged(ctx context.Context, ev *domain.SequenceEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.conn.Publish(SubjectSequenceChanged, data)
}

func (p *Publisher) PublishDatasetsReload(ctx context.Context, names []string) error {
	data, err := json.Marshal(ReloadMessage{Datasets: names, RequestedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectDatasetsReload, data, nats.Context(ctx))
	return err
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection (e.g. for the WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("wasteatlas"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
