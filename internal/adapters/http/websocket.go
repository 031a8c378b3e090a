package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	natsadapter "github.com/samirrijal/missionsketch/internal/adapters/nats"
	"github.com/samirrijal/missionsketch/internal/pkg/metrics"
)

const wsPingInterval = 30 * time.Second

// wsMessage is sent from client to subscribe/unsubscribe to a mission.
type wsMessage struct {
	Action  string `json:"action"` // "subscribe" | "unsubscribe"
	Mission string `json:"mission"`
}

// WebSocketHandler relays the notifications and panel signals of missions
// to connected clients.
// Clients send JSON: {"action":"subscribe","mission":"<id>"}
func WebSocketHandler(relay *natsadapter.Relay) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		remoteAddr := c.RemoteAddr().String()
		log := slog.Default().With("remote", remoteAddr)
		log.Info("ws client connected")
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		var mu sync.Mutex
		writeJSON := func(v any) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		if relay == nil {
			_ = writeJSON(map[string]string{"error": "signal relay not configured"})
			return
		}

		// mission id -> unsubscribe
		subs := make(map[string]func())

		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(wsPingInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
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
			if m.Mission == "" {
				_ = writeJSON(map[string]string{"error": "mission is required"})
				continue
			}

			switch m.Action {
			case "subscribe":
				if _, exists := subs[m.Mission]; exists {
					_ = writeJSON(map[string]string{"status": "already subscribed", "mission": m.Mission})
					continue
				}
				unsub, err := relay.Subscribe(m.Mission, func(data []byte) {
					_ = writeJSON(json.RawMessage(data))
				})
				if err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				subs[m.Mission] = unsub
				_ = writeJSON(map[string]string{"status": "subscribed", "mission": m.Mission})

			case "unsubscribe":
				if unsub, exists := subs[m.Mission]; exists {
					unsub()
					delete(subs, m.Mission)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "mission": m.Mission})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + m.Mission})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		for _, unsub := range subs {
			unsub()
		}
		log.Info("ws client disconnected")
	}
}
