package push

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is a lazily-opened persistent push connection with outbound queueing
// and idle auto-close. One Conn per push endpoint.
type Conn struct {
	cfg     Config
	logger  *slog.Logger
	handler FrameHandler

	mu           sync.Mutex
	state        State
	ws           *websocket.Conn
	queue        []Command
	idle         *time.Timer
	lastActivity time.Time // last successful transmit; the idle deadline is measured from here
	gen          int       // connection generation; guards stale read-loop and timer events
}

// NewConn creates a push connection manager. The connection itself is not
// opened until the first Send.
func NewConn(cfg Config, handler FrameHandler, logger *slog.Logger) *Conn {
	if logger == nil {
		logger = slog.Default()
	}
	return &Conn{
		cfg:     cfg,
		logger:  logger,
		handler: handler,
	}
}

// State returns the current connection state.
func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// QueueLen returns the number of queued-but-unsent commands.
func (c *Conn) QueueLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Send transmits a command if the connection is open, resetting the idle
// timer. Otherwise it enqueues the command and, if the connection is
// closed, begins opening it. Send never waits for the open to complete.
func (c *Conn) Send(cmd Command) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateOpen:
		if err := c.writeLocked(cmd); err != nil {
			c.logger.Warn("send failed", "command", cmd.Command, "channel", cmd.Channel, "error", err)
			// Unsent command stays queued for the next open.
			c.queue = append(c.queue, cmd)
			c.teardownLocked()
			return err
		}
		c.armIdleLocked()
		return nil

	case StateConnecting:
		c.queue = append(c.queue, cmd)
		return nil

	default: // StateClosed
		c.queue = append(c.queue, cmd)
		c.state = StateConnecting
		go c.open(c.gen)
		return nil
	}
}

// Close tears the connection down explicitly and cancels the idle timer.
// Queued-but-unsent commands are retained and will be transmitted after the
// next successful open; use DiscardQueued to drop them instead.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardownLocked()
	return nil
}

// DiscardQueued drops all queued-but-unsent commands and reports how many
// were dropped.
func (c *Conn) DiscardQueued() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.queue)
	c.queue = nil
	return n
}

// open dials the push endpoint and, on success, drains the queue in FIFO
// order before marking the connection open. The lock is held across the
// whole drain, so a Send racing with it lands strictly after every
// pre-existing queued command.
func (c *Conn) open(gen int) {
	dialer := websocket.Dialer{
		HandshakeTimeout: c.cfg.HandshakeTimeout,
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.HandshakeTimeout)
	ws, _, err := dialer.DialContext(ctx, c.cfg.URL, nil)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gen != gen || c.state != StateConnecting {
		// Superseded by a Close while dialing.
		if ws != nil {
			ws.Close()
		}
		return
	}

	if err != nil {
		c.state = StateClosed
		c.gen++
		c.logger.Warn("connection open failed", "url", c.cfg.URL, "error", err)
		// Queue retained for the next Send.
		return
	}

	c.ws = ws
	go c.readLoop(ws, gen)

	for len(c.queue) > 0 {
		cmd := c.queue[0]
		c.queue = c.queue[1:]
		if err := c.writeLocked(cmd); err != nil {
			c.logger.Warn("drain failed", "command", cmd.Command, "channel", cmd.Channel, "error", err)
			c.queue = append([]Command{cmd}, c.queue...)
			c.teardownLocked()
			return
		}
	}

	c.state = StateOpen
	c.armIdleLocked()
	c.logger.Debug("connection open", "url", c.cfg.URL)
}

// readLoop decodes and dispatches inbound frames until the connection dies.
func (c *Conn) readLoop(ws *websocket.Conn, gen int) {
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			c.mu.Lock()
			if c.gen == gen {
				c.logger.Debug("connection closed", "error", err)
				c.teardownLocked()
			}
			c.mu.Unlock()
			return
		}

		frame, err := DecodeFrame(data)
		if err != nil {
			c.logger.Warn("malformed frame", "error", err, "payload", string(data))
			continue
		}

		if c.handler != nil {
			c.handler.HandleFrame(frame)
		}
	}
}

// writeLocked serializes and transmits one command. Caller holds mu.
func (c *Conn) writeLocked(cmd Command) error {
	data, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// armIdleLocked starts or resets the idle-close countdown. Caller holds mu.
func (c *Conn) armIdleLocked() {
	if c.cfg.IdleClose <= 0 {
		return
	}
	c.lastActivity = time.Now()
	if c.idle != nil {
		c.idle.Reset(c.cfg.IdleClose)
		return
	}
	gen := c.gen
	c.idle = time.AfterFunc(c.cfg.IdleClose, func() {
		c.idleClose(gen)
	})
}

// idleClose actively closes the connection after the idle deadline.
//
// The expiry can race a Send holding mu: Reset on a timer whose callback has
// already fired does not recall the callback, so by the time this runs a
// transmit may have moved the deadline. Re-check against the last activity
// and re-arm instead of closing when traffic won the race.
func (c *Conn) idleClose(gen int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gen != gen || c.state != StateOpen {
		return
	}
	if remaining := c.cfg.IdleClose - time.Since(c.lastActivity); remaining > 0 {
		c.idle.Reset(remaining)
		return
	}
	c.logger.Debug("closing idle connection", "idle", c.cfg.IdleClose)
	c.teardownLocked()
}

// teardownLocked moves to Closed: stops the idle timer, closes the socket,
// and bumps the generation so stale events are ignored. The queue is NOT
// cleared. Caller holds mu.
func (c *Conn) teardownLocked() {
	if c.idle != nil {
		c.idle.Stop()
		c.idle = nil
	}
	if c.ws != nil {
		c.ws.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		c.ws.Close()
		c.ws = nil
	}
	c.state = StateClosed
	c.gen++
}
