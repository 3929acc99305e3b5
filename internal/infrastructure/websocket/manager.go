// Package websocket pushes session events to browser tabs.
package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"artisanx/internal/domain/entity"
	"artisanx/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 256
)

// Client is one websocket connection bound to a session.
type Client struct {
	SessionID string
	Conn      *websocket.Conn
	Send      chan []byte

	closeOnce sync.Once
}

func NewClient(sessionID string, conn *websocket.Conn) *Client {
	return &Client{
		SessionID: sessionID,
		Conn:      conn,
		Send:      make(chan []byte, sendBuffer),
	}
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.Send) })
}

// Manager tracks the open connections of every session. A session may have
// more than one connection while a tab reconnects.
type Manager struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	lookup  SessionLookup
}

func NewManager(lookup SessionLookup) *Manager {
	return &Manager{
		clients: make(map[string]map[*Client]struct{}),
		lookup:  lookup,
	}
}

func (m *Manager) Register(c *Client) {
	m.mu.Lock()
	set, ok := m.clients[c.SessionID]
	if !ok {
		set = make(map[*Client]struct{})
		m.clients[c.SessionID] = set
	}
	set[c] = struct{}{}
	m.mu.Unlock()
	logger.Info("WebSocket: client registered for session %s", c.SessionID)
}

func (m *Manager) Unregister(c *Client) {
	m.mu.Lock()
	removed := m.removeLocked(c)
	m.mu.Unlock()
	if removed {
		logger.Info("WebSocket: client unregistered for session %s", c.SessionID)
	}
}

func (m *Manager) removeLocked(c *Client) bool {
	set, ok := m.clients[c.SessionID]
	if !ok {
		return false
	}
	if _, ok := set[c]; !ok {
		return false
	}
	delete(set, c)
	if len(set) == 0 {
		delete(m.clients, c.SessionID)
	}
	c.closeSend()
	return true
}

// CloseSession drops every connection of sessionID.
func (m *Manager) CloseSession(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for c := range m.clients[sessionID] {
		m.removeLocked(c)
	}
}

func (m *Manager) ClientCount(sessionID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients[sessionID])
}

// Publish queues event for every connection of sessionID. It never blocks:
// a connection whose buffer is full is dropped and must reconnect.
func (m *Manager) Publish(sessionID string, event entity.SessionEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("WebSocket: failed to marshal %s event for session %s: %v", event.Type, sessionID, err)
		return
	}
	m.sendToSession(sessionID, payload)
}

func (m *Manager) sendToSession(sessionID string, payload []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for c := range m.clients[sessionID] {
		select {
		case c.Send <- payload:
		default:
			logger.Warn("WebSocket: session %s send buffer full, closing connection", sessionID)
			m.removeLocked(c)
		}
	}
}

// ReadPump reads client messages until the connection fails.
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("WebSocket: read error for session %s: %v", c.SessionID, err)
			}
			return
		}
		m.HandleClientMessage(c, message)
	}
}

// WritePump drains Send to the connection and keeps it alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Error("WebSocket: write error for session %s: %v", c.SessionID, err)
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
