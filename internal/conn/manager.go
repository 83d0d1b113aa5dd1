// Package conn owns the single live channel to the session authority.
package conn

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/worldsim/client/pkg/protocol"
)

type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
)

var ErrNotConnected = errors.New("channel not connected")

const (
	writeTimeout = 3 * time.Second
	pingInterval = 20 * time.Second
)

// Manager guarantees at most one open channel per session. Decoded events
// and status transitions go out through the injected callbacks; nothing
// else escapes this package. There is no automatic reconnect: an unexpected
// drop lands in disconnected and stays there until the next Open.
type Manager struct {
	base     string
	log      *zap.Logger
	onEvent  func(protocol.Event)
	onStatus func(Status, error)

	mu     sync.Mutex
	conn   *websocket.Conn
	cancel context.CancelFunc
	status Status
	gen    int // bumped on every Open/Close so stale readers can't clobber state
}

func NewManager(baseURL string, log *zap.Logger, onEvent func(protocol.Event), onStatus func(Status, error)) *Manager {
	return &Manager{
		base:     baseURL,
		log:      log,
		onEvent:  onEvent,
		onStatus: onStatus,
		status:   StatusDisconnected,
	}
}

func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Open dials the channel for the given lobby membership. An already-open
// channel is closed first.
func (m *Manager) Open(ctx context.Context, lobbyID, playerID string) error {
	m.Close()

	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.status = StatusConnecting
	m.mu.Unlock()
	m.notify(StatusConnecting, nil)

	target := fmt.Sprintf("%s/multiplayer/ws?lobby_id=%s&player_id=%s",
		m.base, url.QueryEscape(lobbyID), url.QueryEscape(playerID))
	c, _, err := websocket.Dial(ctx, target, nil)
	if err != nil {
		m.mu.Lock()
		if m.gen == gen {
			m.status = StatusDisconnected
		}
		m.mu.Unlock()
		m.notify(StatusDisconnected, err)
		return fmt.Errorf("open channel: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	m.mu.Lock()
	if m.gen != gen {
		// A concurrent Open/Close won the race; this dial is obsolete.
		m.mu.Unlock()
		cancel()
		_ = c.Close(websocket.StatusNormalClosure, "superseded")
		return errors.New("open channel: superseded")
	}
	m.conn = c
	m.cancel = cancel
	m.status = StatusConnected
	m.mu.Unlock()
	m.notify(StatusConnected, nil)

	m.log.Info("channel open", zap.String("lobby_id", lobbyID), zap.String("player_id", playerID))
	go m.run(runCtx, c, gen)
	return nil
}

// Close tears down the current channel, if any. Safe to call when already
// disconnected.
func (m *Manager) Close() {
	m.mu.Lock()
	cancel := m.cancel
	wasConnected := m.status != StatusDisconnected
	m.gen++
	m.conn = nil
	m.cancel = nil
	m.status = StatusDisconnected
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if wasConnected {
		m.notify(StatusDisconnected, nil)
	}
}

// Send encodes and writes one outbound frame. Returns ErrNotConnected while
// the channel is down; never panics the caller.
func (m *Manager) Send(msg protocol.Message) error {
	m.mu.Lock()
	c := m.conn
	m.mu.Unlock()
	if c == nil {
		return ErrNotConnected
	}

	data, err := protocol.Encode(msg)
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := c.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	return nil
}

func (m *Manager) run(ctx context.Context, c *websocket.Conn, gen int) {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return m.readLoop(ctx, c) })
	g.Go(func() error { return m.keepalive(ctx, c) })

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil // explicit Close
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		err = nil
	}
	_ = c.Close(websocket.StatusNormalClosure, "bye")

	m.mu.Lock()
	if m.gen != gen {
		// Superseded by a newer Open/Close, which owns status now.
		m.mu.Unlock()
		return
	}
	m.conn = nil
	m.cancel = nil
	m.status = StatusDisconnected
	m.mu.Unlock()

	if err != nil {
		m.log.Warn("channel dropped", zap.Error(err))
	}
	m.notify(StatusDisconnected, err)
}

func (m *Manager) readLoop(ctx context.Context, c *websocket.Conn) error {
	for {
		_, data, err := c.Read(ctx)
		if err != nil {
			return err
		}
		ev, err := protocol.Decode(data)
		if err != nil {
			// Malformed frame: log, drop, keep the channel alive.
			m.log.Warn("dropping undecodable frame", zap.Error(err))
			continue
		}
		if m.onEvent != nil {
			m.onEvent(ev)
		}
	}
}

func (m *Manager) keepalive(ctx context.Context, c *websocket.Conn) error {
	t := time.NewTicker(pingInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			pctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.Ping(pctx)
			cancel()
			if err != nil {
				return fmt.Errorf("keepalive: %w", err)
			}
		}
	}
}

func (m *Manager) notify(st Status, err error) {
	if m.onStatus != nil {
		m.onStatus(st, err)
	}
}
