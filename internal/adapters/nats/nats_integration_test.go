//go:build integration

package natsadapter_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	natsadapter "github.com/samirrijal/missionsketch/internal/adapters/nats"
	"github.com/samirrijal/missionsketch/internal/core/domain"
	"github.com/samirrijal/missionsketch/internal/pkg/config"
)

// setupPublisher connects to the NATS server from config. JetStream must be enabled.
func setupPublisher(t *testing.T) (*natsadapter.Publisher, *natsadapter.Relay) {
	t.Helper()
	cfg, err := config.Load("missionsketch-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	conn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		t.Fatalf("connect nats: %v", err)
	}
	pub, err := natsadapter.NewPublisherConn(conn)
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}
	relay := natsadapter.NewRelay(conn)
	t.Cleanup(func() {
		relay.Close()
		pub.Close()
	})
	return pub, relay
}

func receive(t *testing.T, ch <-chan []byte) natsadapter.Event {
	t.Helper()
	select {
	case data := <-ch:
		var ev natsadapter.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return natsadapter.Event{}
}

func TestIntegration_RelayReceivesMissionEvents(t *testing.T) {
	pub, relay := setupPublisher(t)
	ctx := context.Background()
	mission := "it-" + time.Now().Format("150405.000000")

	ch := make(chan []byte, 8)
	unsubscribe, err := relay.Subscribe(mission, func(data []byte) { ch <- data })
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer unsubscribe()

	if err := pub.ReportError(ctx, mission, "Invalid index"); err != nil {
		t.Fatalf("report: %v", err)
	}
	ev := receive(t, ch)
	if ev.Type != natsadapter.EventNotify || ev.Level != "error" || ev.Message != "Invalid index" {
		t.Errorf("unexpected notify event %+v", ev)
	}

	if err := pub.ShowPolygonPanel(ctx, mission, 4); err != nil {
		t.Fatalf("signal: %v", err)
	}
	ev = receive(t, ch)
	if ev.Type != natsadapter.EventPolygonPanel || ev.VertexCount != 4 {
		t.Errorf("unexpected signal event %+v", ev)
	}

	rec := domain.ExportRecord{ID: mission + "-1", MissionID: mission, Name: "coordinates.csv", MIMEType: "text/csv"}
	if err := pub.PublishExported(ctx, &rec); err != nil {
		t.Fatalf("publish exported: %v", err)
	}
	ev = receive(t, ch)
	if ev.Type != natsadapter.EventExported || ev.Export == nil || ev.Export.ID != rec.ID {
		t.Errorf("unexpected exported event %+v", ev)
	}
}

func TestIntegration_SubscribeRequiresMission(t *testing.T) {
	_, relay := setupPublisher(t)
	if _, err := relay.Subscribe("", func([]byte) {}); err == nil {
		t.Error("expected error for empty mission id")
	}
}
