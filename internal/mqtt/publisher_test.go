package mqtt

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"climatedash-server/internal/config"
	"climatedash-server/internal/modules/dashboard/types"
)

func testPublisher() *Publisher {
	cfg := config.Config{
		MQTTBroker:   "127.0.0.1",
		MQTTPort:     1, // nothing listens here
		MQTTClientID: "climatedash-test",
		MQTTTopic:    "climatedash/test",
	}
	return NewPublisher(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestEncodeSelection(t *testing.T) {
	at := time.Date(2026, 3, 4, 5, 6, 7, 890, time.FixedZone("X", 3600))
	b, err := encodeSelection(types.SelectionEvent{Year: 2007, Countries: []string{"Congo, Rep.", "Spain"}, At: at})
	if err != nil {
		t.Fatalf("encodeSelection: %v", err)
	}
	want := `{"year":2007,"countries":["Congo, Rep.","Spain"],"at":"2026-03-04T04:06:07Z"}`
	if string(b) != want {
		t.Errorf("payload = %s; want %s", b, want)
	}
}

func TestEncodeSelection_nilCountries(t *testing.T) {
	b, err := encodeSelection(types.SelectionEvent{Year: 1990})
	if err != nil {
		t.Fatalf("encodeSelection: %v", err)
	}
	want := `{"year":1990,"countries":[],"at":"0001-01-01T00:00:00Z"}`
	if string(b) != want {
		t.Errorf("payload = %s; want %s", b, want)
	}
}

func TestPublishSelection_notConnectedDrops(t *testing.T) {
	p := testPublisher()
	if p.IsConnected() {
		t.Fatal("IsConnected() = true before Connect")
	}
	// Must return immediately without panicking.
	p.PublishSelection(types.SelectionEvent{Year: 2000})
}

func TestConnect_contextDeadline(t *testing.T) {
	p := testPublisher()
	defer p.Disconnect()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	if err := p.Connect(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Connect() = %v; want deadline exceeded", err)
	}
}

func TestConnect_afterDisconnect(t *testing.T) {
	p := testPublisher()
	p.Disconnect()
	p.Disconnect()

	if err := p.Connect(context.Background()); !errors.Is(err, errStopped) {
		t.Fatalf("Connect() = %v; want errStopped", err)
	}
}
