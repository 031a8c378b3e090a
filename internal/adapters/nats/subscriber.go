package natsadapter

import (
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
)

// Relay fans mission messages out to in-process listeners such as
// WebSocket clients.
type Relay struct {
	conn *nats.Conn

	mu   sync.Mutex
	subs []*nats.Subscription
}

// NewRelay creates a relay sharing a NATS connection.
func NewRelay(conn *nats.Conn) *Relay {
	return &Relay{conn: conn}
}

// MissionSubject matches every message about one mission.
func MissionSubject(missionID string) string {
	return "mission.*." + missionID
}

// Subscribe calls fn with the raw payload of every message about missionID
// until the returned function is called.
func (r *Relay) Subscribe(missionID string, fn func(data []byte)) (func(), error) {
	if missionID == "" {
		return nil, fmt.Errorf("mission id required")
	}
	sub, err := r.conn.Subscribe(MissionSubject(missionID), func(msg *nats.Msg) {
		fn(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", missionID, err)
	}

	r.mu.Lock()
	r.subs = append(r.subs, sub)
	r.mu.Unlock()

	return func() { r.remove(sub) }, nil
}

// Connected reports whether the underlying connection is up.
func (r *Relay) Connected() bool {
	return r.conn != nil && r.conn.IsConnected()
}

func (r *Relay) remove(sub *nats.Subscription) {
	_ = sub.Unsubscribe()
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.subs {
		if s == sub {
			r.subs = append(r.subs[:i], r.subs[i+1:]...)
			return
		}
	}
}

// Close unsubscribes every listener.
func (r *Relay) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.subs {
		_ = sub.Unsubscribe()
	}
	r.subs = nil
}
