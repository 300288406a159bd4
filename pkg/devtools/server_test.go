package devtools

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/withgalaxy/quasar/pkg/counter"
	"github.com/withgalaxy/quasar/pkg/store"
)

func startServer(t *testing.T) (*Server, string) {
	t.Helper()
	srv := NewServer()
	srv.Start()

	ts := httptest.NewServer(http.HandlerFunc(srv.HandleWebSocket))
	t.Cleanup(func() {
		srv.Close()
		ts.Close()
	})

	return srv, "ws" + strings.TrimPrefix(ts.URL, "http")
}

func dial(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("WebSocket dial failed: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func read(t *testing.T, ws *websocket.Conn) Message {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := ws.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	return msg
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNewServer(t *testing.T) {
	srv := NewServer()
	if srv == nil {
		t.Fatal("NewServer returned nil")
	}
	if srv.clients == nil {
		t.Error("clients map not initialized")
	}
	if srv.broadcast == nil {
		t.Error("broadcast channel not initialized")
	}
	if got := srv.Stores(); len(got) != 0 {
		t.Errorf("Stores() = %v, want none", got)
	}
}

func TestServerConnectMessage(t *testing.T) {
	srv, wsURL := startServer(t)

	ws := dial(t, wsURL)
	msg := read(t, ws)

	if msg.Type != MsgTypeConnect {
		t.Errorf("expected MsgTypeConnect, got %v", msg.Type)
	}
	if len(msg.Stores) != 0 {
		t.Errorf("expected no stores, got %v", msg.Stores)
	}

	waitFor(t, func() bool { return srv.Clients() == 1 })
}

func TestAttachSendsLatestOnConnect(t *testing.T) {
	srv, wsURL := startServer(t)

	c := counter.New()
	detach := Attach(srv, "counter", c.Store())
	defer detach()

	c.Increment()
	c.Increment()

	ws := dial(t, wsURL)

	hello := read(t, ws)
	if hello.Type != MsgTypeConnect {
		t.Fatalf("expected connect, got %v", hello.Type)
	}
	if len(hello.Stores) != 1 || hello.Stores[0] != "counter" {
		t.Errorf("connect stores = %v, want [counter]", hello.Stores)
	}

	snap := read(t, ws)
	if snap.Type != MsgTypeSnapshot || snap.Store != "counter" {
		t.Fatalf("unexpected message %+v", snap)
	}
	if string(snap.Snapshot) != "2" {
		t.Errorf("snapshot = %s, want 2", snap.Snapshot)
	}
}

func TestAttachStreamsChanges(t *testing.T) {
	srv, wsURL := startServer(t)

	atom := store.NewAtom([]string{"a"})
	detach := Attach[[]string](srv, "list", atom)
	defer detach()

	ws := dial(t, wsURL)
	read(t, ws)
	read(t, ws)
	waitFor(t, func() bool { return srv.Clients() == 1 })

	atom.Set([]string{"a", "b"})

	msg := read(t, ws)
	if msg.Type != MsgTypeSnapshot {
		t.Fatalf("expected snapshot, got %v", msg.Type)
	}
	var got []string
	if err := json.Unmarshal(msg.Snapshot, &got); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(got) != 2 || got[1] != "b" {
		t.Errorf("snapshot = %v, want [a b]", got)
	}
}

func TestDetach(t *testing.T) {
	srv, wsURL := startServer(t)

	atom := store.NewAtom(1)
	detach := Attach[int](srv, "n", atom)

	ws := dial(t, wsURL)
	read(t, ws)
	read(t, ws)
	waitFor(t, func() bool { return srv.Clients() == 1 })

	detach()

	msg := read(t, ws)
	if msg.Type != MsgTypeDetach || msg.Store != "n" {
		t.Errorf("expected detach of n, got %+v", msg)
	}
	if got := atom.Subscribers(); got != 0 {
		t.Errorf("Subscribers() = %d after detach, want 0", got)
	}
	if got := srv.Stores(); len(got) != 0 {
		t.Errorf("Stores() = %v, want none", got)
	}
}

func TestSeqIncreases(t *testing.T) {
	srv, wsURL := startServer(t)

	atom := store.NewAtom(0)
	detach := Attach[int](srv, "n", atom)
	defer detach()

	ws := dial(t, wsURL)
	read(t, ws)
	first := read(t, ws)
	waitFor(t, func() bool { return srv.Clients() == 1 })

	atom.Set(1)
	atom.Set(2)

	second := read(t, ws)
	third := read(t, ws)

	if !(first.Seq < second.Seq && second.Seq < third.Seq) {
		t.Errorf("seq not increasing: %d %d %d", first.Seq, second.Seq, third.Seq)
	}
	if string(third.Snapshot) != "2" {
		t.Errorf("last snapshot = %s, want 2", third.Snapshot)
	}
}

func TestConcurrentPublishKeepsSeqOrder(t *testing.T) {
	srv, wsURL := startServer(t)

	ws := dial(t, wsURL)
	read(t, ws)
	waitFor(t, func() bool { return srv.Clients() == 1 })

	const publishers = 8
	const perPublisher = 50

	var wg sync.WaitGroup
	for i := 0; i < publishers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := "store-" + strconv.Itoa(i)
			for j := 0; j < perPublisher; j++ {
				srv.Publish(name, json.RawMessage(strconv.Itoa(j)))
			}
		}(i)
	}
	wg.Wait()

	var last uint64
	for i := 0; i < publishers*perPublisher; i++ {
		msg := read(t, ws)
		if msg.Seq <= last {
			t.Fatalf("frame %d has seq %d after seq %d", i, msg.Seq, last)
		}
		last = msg.Seq
	}
}

func TestAttachConcurrentWritersPublishFinalValue(t *testing.T) {
	srv := NewServer()
	srv.Start()
	defer srv.Close()

	atom := store.NewAtom(0)
	detach := Attach[int](srv, "n", atom)
	defer detach()

	var wg sync.WaitGroup
	for i := 1; i <= 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				atom.Set(i*1000 + j)
			}
		}(i)
	}
	wg.Wait()

	srv.mu.RLock()
	got := string(srv.latest["n"].Snapshot)
	srv.mu.RUnlock()

	if want := strconv.Itoa(atom.Get()); got != want {
		t.Errorf("latest snapshot = %s, want %s", got, want)
	}
}

func TestServerDisconnect(t *testing.T) {
	srv, wsURL := startServer(t)

	ws := dial(t, wsURL)
	read(t, ws)
	waitFor(t, func() bool { return srv.Clients() == 1 })

	ws.Close()

	waitFor(t, func() bool { return srv.Clients() == 0 })
}

func TestServerClose(t *testing.T) {
	srv, wsURL := startServer(t)

	ws := dial(t, wsURL)
	read(t, ws)
	waitFor(t, func() bool { return srv.Clients() == 1 })

	srv.Close()
	srv.Close()

	if got := srv.Clients(); got != 0 {
		t.Errorf("Clients() = %d after Close, want 0", got)
	}

	srv.Publish("late", json.RawMessage(`1`))
}
