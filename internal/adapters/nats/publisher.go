package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/missionsketch/internal/core/domain"
)

// Subject prefixes. Each is followed by the mission ID.
const (
	SubjectNotify   = "mission.notify."
	SubjectSignal   = "mission.signal."
	SubjectExported = "mission.exported."
)

// Event is the payload of every mission message.
type Event struct {
	Type        string               `json:"type"`
	Mission     string               `json:"mission"`
	Level       string               `json:"level,omitempty"`
	Message     string               `json:"message,omitempty"`
	VertexCount int                  `json:"vertex_count,omitempty"`
	Export      *domain.ExportRecord `json:"export,omitempty"`
	At          time.Time            `json:"at"`
}

// Event types.
const (
	EventNotify       = "notify"
	EventMissionPanel = "show-mission-panel"
	EventPolygonPanel = "show-polygon-panel"
	EventExported     = "exported"
)

// Publisher implements ports.Notifier and ports.PanelSignaler on core NATS,
// and publishes archived exports to JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	now  func() time.Time
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return NewPublisherConn(conn)
}

// NewPublisherConn builds a publisher on an existing connection and makes
// sure the export stream exists.
func NewPublisherConn(conn *nats.Conn) (*Publisher, error) {
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:      "MISSION_EXPORTS",
		Subjects:  []string{SubjectExported + ">"},
		Retention: nats.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// The stream may already exist; update it instead.
		if _, err := js.UpdateStream(&cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js, now: time.Now}, nil
}

func (p *Publisher) ReportSuccess(ctx context.Context, missionID, message string) error {
	return p.publish(SubjectNotify+missionID, Event{Type: EventNotify, Mission: missionID, Level: "success", Message: message})
}

func (p *Publisher) ReportError(ctx context.Context, missionID, message string) error {
	return p.publish(SubjectNotify+missionID, Event{Type: EventNotify, Mission: missionID, Level: "error", Message: message})
}

func (p *Publisher) ShowMissionPanel(ctx context.Context, missionID string) error {
	return p.publish(SubjectSignal+missionID, Event{Type: EventMissionPanel, Mission: missionID})
}

func (p *Publisher) ShowPolygonPanel(ctx context.Context, missionID string, vertexCount int) error {
	return p.publish(SubjectSignal+missionID, Event{Type: EventPolygonPanel, Mission: missionID, VertexCount: vertexCount})
}

// PublishExported records an archived export on the durable stream.
func (p *Publisher) PublishExported(ctx context.Context, rec *domain.ExportRecord) error {
	data, err := json.Marshal(Event{Type: EventExported, Mission: rec.MissionID, Export: rec, At: p.now().UTC()})
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectExported+rec.MissionID, data, nats.Context(ctx), nats.MsgId(rec.ID))
	return err
}

func (p *Publisher) publish(subject string, ev Event) error {
	ev.At = p.now().UTC()
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.conn.Publish(subject, data)
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
