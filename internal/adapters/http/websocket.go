package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/wasteatlas/wasteatlas/internal/adapters/nats"
	"github.com/wasteatlas/wasteatlas/internal/core/domain"
	"github.com/wasteatlas/wasteatlas/internal/core/usecases"
	"github.com/wasteatlas/wasteatlas/internal/pkg/metrics"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsEventBuffer  = 32
)

// wsMessage is sent by clients to drive the shared sequence.
type wsMessage struct {
	Action string `json:"action"` // "forward" | "reverse" | "set"
	Index  int    `json:"index"`  // for "set"
}

// WebSocketHandler returns a handler that streams sequence events to
// connected clients and applies the transitions they send:
// {"action":"forward"}, {"action":"reverse"}, {"action":"set","index":3}.
// With NATS, events from every API instance are relayed; without it only
// local transitions are seen.
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remoteAddr)

		var mu sync.Mutex

		// Helper: thread-safe write; a stalled client fails the write
		// instead of holding the lock forever.
		writeRaw := func(data []byte) error {
			mu.Lock()
			defer mu.Unlock()
			_ = c.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			return c.WriteMessage(websocket.TextMessage, data)
		}
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			return writeRaw(data)
		}

		if deps.NATS != nil {
			sub, err := deps.NATS.Subscribe(natsadapter.SubjectSequenceChanged, func(msg *nats.Msg) {
				_ = writeRaw(msg.Data)
			})
			if err != nil {
				slog.Error("ws subscribe", "error", err)
				return
			}
			defer func() { _ = sub.Unsubscribe() }()
		} else {
			// Watch callbacks run inside transitions, so they only queue.
			// Each event carries the full position, so a dropped one is
			// corrected by the next.
			events := make(chan domain.SequenceEvent, wsEventBuffer)
			stop := deps.Sequence.Watch(func(ev domain.SequenceEvent) {
				select {
				case events <- ev:
				default:
					slog.Warn("ws client too slow, dropping event", "remote", remoteAddr, "index", ev.Sequence.Index)
				}
			})
			defer stop()

			relayDone := make(chan struct{})
			defer close(relayDone)
			go func() {
				for {
					select {
					case ev := <-events:
						if err := writeJSON(ev); err != nil {
							return
						}
					case <-relayDone:
						return
					}
				}
			}()
		}

		// Current position first, so the client can draw without polling.
		if deps.Sequence.Ready() {
			_ = writeJSON(domain.SequenceEvent{
				Generation: deps.Sequence.Generation(),
				Action:     "state",
				Sequence:   deps.Sequence.State(),
				Year:       deps.Sequence.Year(),
				At:         time.Now().UTC(),
			})
		}

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					_ = c.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		ctx := context.Background()
		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			switch m.Action {
			case usecases.ActionForward:
				_, err = deps.Sequence.Forward(ctx)
			case usecases.ActionReverse:
				_, err = deps.Sequence.Reverse(ctx)
			case usecases.ActionSet:
				_, err = deps.Sequence.SetDirect(ctx, m.Index)
			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
				continue
			}
			if err != nil {
				_ = writeJSON(map[string]string{"error": err.Error()})
			}
		}

		close(done)
		slog.Info("ws client disconnected", "remote", remoteAddr)
	}
}
