package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/wasteatlas/wasteatlas/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber opens its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

func (s *Subscriber) SubscribeSequenceChanged(ctx context.Context, handler func(ctx context.Context, ev *domain.SequenceEvent) error) error {
	sub, err := s.conn.Subscribe(SubjectSequenceChanged, func(msg *nats.Msg) {
		var ev domain.SequenceEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			slog.Warn("bad sequence event", "error", err)
			return
		}
		if err := handler(ctx, &ev); err != nil {
			slog.Warn("sequence event handler", "error", err)
		}
	})
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// SubscribeDatasetsReload delivers reload requests published after the
// subscription starts. Each API instance gets every request.
func (s *Subscriber) SubscribeDatasetsReload(ctx context.Context, handler func(ctx context.Context, names []string) error) error {
	sub, err := s.js.Subscribe(SubjectDatasetsReload, func(msg *nats.Msg) {
		var rm ReloadMessage
		if err := json.Unmarshal(msg.Data, &rm); err != nil {
			_ = msg.Term()
			return
		}
		if err := handler(ctx, rm.Datasets); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.DeliverNew(),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
