package feed

import (
	"bufio"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/zstd"

	"github.com/nmoreau/strikecore/engine/bus"
	"github.com/nmoreau/strikecore/types"
)

func testEvent() types.CombatEvent {
	return types.CombatEvent{
		Kind:      types.EventDamageDealt,
		Actor:     "hero",
		Target:    "goblin",
		Payload:   map[string]any{"amount": float64(6)},
		Timestamp: time.Now().UTC().Truncate(time.Millisecond),
	}
}

func waitForClients(t *testing.T, s *Server, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.Clients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("clients = %d, want %d", s.Clients(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestServer_BroadcastsToViewer(t *testing.T) {
	s := NewServer(nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()
	defer s.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	waitForClients(t, s, 1)

	want := testEvent()
	s.HandleEvent(want)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	got, err := bus.Decode(msg)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.Kind != want.Kind || got.Actor != want.Actor || got.Target != want.Target {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if got.Payload["amount"] != float64(6) {
		t.Errorf("payload amount = %v", got.Payload["amount"])
	}
}

func TestServer_DisconnectRemovesClient(t *testing.T) {
	s := NewServer(nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()
	defer s.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	waitForClients(t, s, 1)

	conn.Close()
	waitForClients(t, s, 0)
}

func TestServer_CloseRejectsNewViewers(t *testing.T) {
	s := NewServer(nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	s.Close()
	// Broadcasting after close must not panic.
	s.HandleEvent(testEvent())
	if s.Clients() != 0 {
		t.Errorf("clients = %d after close", s.Clients())
	}
}

func TestArchive_WriteAndReadBack(t *testing.T) {
	dir := t.TempDir()
	a := NewArchive(dir, "events")

	want := testEvent()
	a.HandleEvent(want)
	a.HandleEvent(want)
	if err := a.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if a.Dropped() != 0 {
		t.Errorf("dropped = %d, want 0", a.Dropped())
	}

	matches, err := filepath.Glob(filepath.Join(dir, "events-*.jsonl.zst"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one archive file, got %v (err %v)", matches, err)
	}

	f, err := os.Open(matches[0])
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer f.Close()
	r, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd reader failed: %v", err)
	}
	defer r.Close()

	var lines int
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines++
		got, err := bus.Decode(scanner.Bytes())
		if err != nil {
			t.Fatalf("line %d decode failed: %v", lines, err)
		}
		if got.Kind != want.Kind || got.Actor != want.Actor {
			t.Errorf("line %d: got %+v", lines, got)
		}
	}
	if lines != 2 {
		t.Errorf("archive lines = %d, want 2", lines)
	}
}
