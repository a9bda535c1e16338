package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"

	"github.com/glabrego/xkcd-cli/internal/xkcd"
)

func runNATSServer(t *testing.T) *server.Server {
	t.Helper()

	opts := &server.Options{
		Host:           "127.0.0.1",
		Port:           -1,
		NoLog:          true,
		NoSigs:         true,
		MaxControlLine: 256,
	}

	s, err := server.NewServer(opts)
	if err != nil {
		t.Fatalf("failed to create nats server: %v", err)
	}

	go s.Start()

	if !s.ReadyForConnections(5 * time.Second) {
		s.Shutdown()
		t.Fatalf("nats server not ready")
	}

	return s
}

func TestNATSPublisher_PublishNewComic(t *testing.T) {
	s := runNATSServer(t)
	t.Cleanup(func() { s.Shutdown() })

	url := "nats://" + s.Addr().String()

	p, err := NewNATSPublisher(discardLogger(), url)
	if err != nil {
		t.Fatalf("failed to create publisher: %v", err)
	}
	t.Cleanup(p.Close)

	nc, err := nats.Connect(url)
	if err != nil {
		t.Fatalf("failed to connect subscriber: %v", err)
	}
	t.Cleanup(nc.Close)

	msgCh := make(chan *nats.Msg, 1)
	if _, err := nc.ChanSubscribe(NewComicSubject, msgCh); err != nil {
		t.Fatalf("failed to subscribe: %v", err)
	}
	if err := nc.FlushTimeout(2 * time.Second); err != nil {
		t.Fatalf("failed to flush subscription: %v", err)
	}

	comic := xkcd.Comic{Num: 3000, SafeTitle: "Latest", Permalink: "https://xkcd.com/3000/"}
	if err := p.PublishNewComic(context.Background(), comic); err != nil {
		t.Fatalf("publish returned error: %v", err)
	}

	select {
	case msg := <-msgCh:
		var got Event
		if err := json.Unmarshal(msg.Data, &got); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		if got.Num != 3000 || got.Title != "Latest" || got.Permalink != comic.Permalink {
			t.Fatalf("unexpected event: %+v", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("did not receive new comic message")
	}
}

func TestNewNATSPublisher_ConnectError(t *testing.T) {
	if _, err := NewNATSPublisher(discardLogger(), "nats://127.0.0.1:1"); err == nil {
		t.Fatal("expected connection error")
	}
}
