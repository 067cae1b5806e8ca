package push

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// pushServer is a test push endpoint that records everything clients send.
type pushServer struct {
	t      *testing.T
	server *httptest.Server
	gate   chan struct{} // if non-nil, upgrades block until closed

	mu       sync.Mutex
	received []Command
	conns    []*websocket.Conn
}

func newPushServer(t *testing.T, gate chan struct{}) *pushServer {
	ps := &pushServer{t: t, gate: gate}

	ps.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ps.gate != nil {
			<-ps.gate
		}
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		ps.mu.Lock()
		ps.conns = append(ps.conns, conn)
		ps.mu.Unlock()

		for {
			var cmd Command
			if err := conn.ReadJSON(&cmd); err != nil {
				return
			}
			ps.mu.Lock()
			ps.received = append(ps.received, cmd)
			ps.mu.Unlock()
		}
	}))

	t.Cleanup(ps.server.Close)
	return ps
}

func (ps *pushServer) url() string {
	return "ws" + strings.TrimPrefix(ps.server.URL, "http")
}

func (ps *pushServer) commands() []Command {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return append([]Command(nil), ps.received...)
}

func (ps *pushServer) lastConn() *websocket.Conn {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if len(ps.conns) == 0 {
		return nil
	}
	return ps.conns[len(ps.conns)-1]
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func testConfig(url string) Config {
	cfg := DefaultConfig()
	cfg.URL = url
	cfg.IdleClose = 0
	return cfg
}

func TestConn_QueueAndDrainOrder(t *testing.T) {
	gate := make(chan struct{})
	ps := newPushServer(t, gate)

	c := NewConn(testConfig(ps.url()), nil, nil)

	// First send while Closed: enqueue and begin opening.
	if err := c.Send(Subscribe(1002)); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if got := c.State(); got != StateConnecting {
		t.Fatalf("state = %v, want connecting", got)
	}

	// Second send while still Connecting: enqueue behind the first.
	if err := c.Send(Subscribe(189)); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if got := c.QueueLen(); got != 2 {
		t.Fatalf("queue len = %d, want 2", got)
	}

	// Let the upgrade through; the queue must drain in FIFO order.
	close(gate)
	waitFor(t, "drain", func() bool { return len(ps.commands()) == 2 })

	got := ps.commands()
	if got[0].Channel != 1002 || got[1].Channel != 189 {
		t.Errorf("drain order = [%d, %d], want [1002, 189]", got[0].Channel, got[1].Channel)
	}

	waitFor(t, "open", func() bool { return c.State() == StateOpen })
	if c.QueueLen() != 0 {
		t.Errorf("queue len = %d after drain, want 0", c.QueueLen())
	}
}

func TestConn_SendWhileOpen(t *testing.T) {
	ps := newPushServer(t, nil)
	c := NewConn(testConfig(ps.url()), nil, nil)

	c.Send(Subscribe(1002))
	waitFor(t, "open", func() bool { return c.State() == StateOpen })

	if err := c.Send(Unsubscribe(1002)); err != nil {
		t.Fatalf("Send while open failed: %v", err)
	}

	waitFor(t, "both commands", func() bool { return len(ps.commands()) == 2 })
	cmds := ps.commands()
	if cmds[1].Command != CommandUnsubscribe {
		t.Errorf("second command = %q, want unsubscribe", cmds[1].Command)
	}
}

func TestConn_IdleClose(t *testing.T) {
	ps := newPushServer(t, nil)

	cfg := testConfig(ps.url())
	cfg.IdleClose = 50 * time.Millisecond
	c := NewConn(cfg, nil, nil)

	c.Send(Subscribe(1002))
	waitFor(t, "open", func() bool { return c.State() == StateOpen })

	waitFor(t, "idle close", func() bool { return c.State() == StateClosed })
}

func TestConn_IdleCloseDisabled(t *testing.T) {
	ps := newPushServer(t, nil)

	c := NewConn(testConfig(ps.url()), nil, nil) // IdleClose = 0

	c.Send(Subscribe(1002))
	waitFor(t, "open", func() bool { return c.State() == StateOpen })

	time.Sleep(150 * time.Millisecond)
	if got := c.State(); got != StateOpen {
		t.Errorf("state = %v after idle period, want open with auto-close disabled", got)
	}
}

func TestConn_IdleTimerResetBySend(t *testing.T) {
	ps := newPushServer(t, nil)

	cfg := testConfig(ps.url())
	cfg.IdleClose = 120 * time.Millisecond
	c := NewConn(cfg, nil, nil)

	c.Send(Subscribe(1002))
	waitFor(t, "open", func() bool { return c.State() == StateOpen })

	// Keep transmitting inside the idle window; the deadline must keep
	// moving and the connection must stay open well past one idle period.
	for i := 0; i < 5; i++ {
		time.Sleep(50 * time.Millisecond)
		if err := c.Send(Subscribe(1003)); err != nil {
			t.Fatalf("Send failed: %v", err)
		}
	}
	if got := c.State(); got != StateOpen {
		t.Errorf("state = %v, want open while traffic flows", got)
	}
}

func TestConn_IdleExpiryRacingTransmitDoesNotClose(t *testing.T) {
	ps := newPushServer(t, nil)

	cfg := testConfig(ps.url())
	cfg.IdleClose = 200 * time.Millisecond
	c := NewConn(cfg, nil, nil)

	c.Send(Subscribe(1002))
	waitFor(t, "open", func() bool { return c.State() == StateOpen })

	// A transmit has just moved the idle deadline...
	if err := c.Send(Subscribe(1003)); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	// ...and an expiry that fired just before the reset now gets the lock.
	// Fresh traffic must win: the connection stays open.
	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()
	c.idleClose(gen)

	if got := c.State(); got != StateOpen {
		t.Errorf("state = %v, want open when expiry races a fresh transmit", got)
	}

	// With no further traffic the deadline still lands.
	waitFor(t, "idle close", func() bool { return c.State() == StateClosed })
}

func TestConn_QueueSurvivesDisconnect(t *testing.T) {
	ps := newPushServer(t, nil)
	c := NewConn(testConfig(ps.url()), nil, nil)

	c.Send(Subscribe(1002))
	waitFor(t, "open", func() bool { return c.State() == StateOpen })
	waitFor(t, "first command", func() bool { return len(ps.commands()) == 1 })

	// Server drops the connection.
	ps.lastConn().Close()
	waitFor(t, "closed", func() bool { return c.State() == StateClosed })

	// A queued command issued before the next open survives and is sent on
	// the new connection.
	c.Send(Subscribe(189))
	waitFor(t, "resend after reconnect", func() bool { return len(ps.commands()) == 2 })

	if got := ps.commands()[1].Channel; got != 189 {
		t.Errorf("resent channel = %d, want 189", got)
	}
}

func TestConn_ExplicitCloseRetainsQueue(t *testing.T) {
	// Unroutable URL: the open fails and the command stays queued.
	cfg := DefaultConfig()
	cfg.URL = "ws://127.0.0.1:1/push"
	cfg.HandshakeTimeout = 100 * time.Millisecond
	c := NewConn(cfg, nil, nil)

	c.Send(Subscribe(1002))
	waitFor(t, "failed open", func() bool { return c.State() == StateClosed })

	if got := c.QueueLen(); got != 1 {
		t.Fatalf("queue len = %d, want 1 (retained)", got)
	}

	c.Close()
	if got := c.QueueLen(); got != 1 {
		t.Errorf("queue len = %d after Close, want 1 (Close does not clear)", got)
	}

	if dropped := c.DiscardQueued(); dropped != 1 {
		t.Errorf("DiscardQueued = %d, want 1", dropped)
	}
	if got := c.QueueLen(); got != 0 {
		t.Errorf("queue len = %d after discard, want 0", got)
	}
}

func TestConn_MalformedFrameIsNotFatal(t *testing.T) {
	ps := newPushServer(t, nil)

	frames := make(chan Frame, 10)
	handler := FrameHandlerFunc(func(f Frame) { frames <- f })

	c := NewConn(testConfig(ps.url()), handler, nil)
	c.Send(Subscribe(1002))
	waitFor(t, "open", func() bool { return c.State() == StateOpen })

	conn := ps.lastConn()
	conn.WriteMessage(websocket.TextMessage, []byte(`{"garbage": true}`))
	conn.WriteMessage(websocket.TextMessage, []byte(`[1010]`))

	// The valid heartbeat after the bad frame still arrives.
	select {
	case f := <-frames:
		if _, ok := f.(HeartbeatFrame); !ok {
			t.Errorf("frame = %T, want HeartbeatFrame", f)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no frame dispatched after malformed one")
	}

	if got := c.State(); got != StateOpen {
		t.Errorf("state = %v, want open (bad frame must not tear down)", got)
	}
}

func TestConn_DispatchesTickerFrames(t *testing.T) {
	ps := newPushServer(t, nil)

	frames := make(chan Frame, 1)
	c := NewConn(testConfig(ps.url()), FrameHandlerFunc(func(f Frame) { frames <- f }), nil)

	c.Send(Subscribe(1002))
	waitFor(t, "open", func() bool { return c.State() == StateOpen })

	ps.lastConn().WriteMessage(websocket.TextMessage,
		[]byte(`[1002, 5, [1, "0.07", "0.069", "0.071", "0", "0", "0", 0, "0.072", "0.04"]]`))

	select {
	case f := <-frames:
		tf, ok := f.(TickerFrame)
		if !ok {
			t.Fatalf("frame = %T, want TickerFrame", f)
		}
		if len(tf.Updates) != 1 || tf.Updates[0].Last != "0.07" {
			t.Errorf("updates = %+v, want one update with last 0.07", tf.Updates)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ticker frame not dispatched")
	}
}
