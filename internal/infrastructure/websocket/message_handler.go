package websocket

import (
	"encoding/json"
	"time"

	"artisanx/internal/usecase"
	"artisanx/pkg/logger"
)

const (
	MessageTypePing                = "ping"
	MessageTypePong                = "pong"
	MessageTypeGetState            = "get_state"
	MessageTypeDismissNotification = "dismiss_notification"
	MessageTypeError               = "error"
)

// SessionHandle is what a connection may do to its session directly.
type SessionHandle interface {
	View() usecase.ViewModel
	RemoveNotification(id string)
}

// SessionLookup resolves a session id, reporting false when it is unknown.
type SessionLookup func(sessionID string) (SessionHandle, bool)

// WSMessage is the envelope of client-to-server messages and of the
// direct replies to them.
type WSMessage struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
}

type reply struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

type DismissNotificationData struct {
	ID string `json:"id"`
}

func (m *Manager) HandleClientMessage(c *Client, raw []byte) {
	var msg WSMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		logger.Warn("WebSocket: invalid message from session %s: %v", c.SessionID, err)
		m.sendError(c, "Invalid message format")
		return
	}

	switch msg.Type {
	case MessageTypePing:
		m.send(c, MessageTypePong, map[string]string{"status": "alive"})

	case MessageTypeGetState:
		session, ok := m.session(c)
		if !ok {
			return
		}
		m.send(c, "state", session.View())

	case MessageTypeDismissNotification:
		var data DismissNotificationData
		if err := json.Unmarshal(msg.Data, &data); err != nil || data.ID == "" {
			m.sendError(c, "Notification id is required")
			return
		}
		if session, ok := m.session(c); ok {
			session.RemoveNotification(data.ID)
		}

	default:
		logger.Debug("WebSocket: unknown message type '%s' from session %s", msg.Type, c.SessionID)
		m.sendError(c, "Unknown message type")
	}
}

func (m *Manager) session(c *Client) (SessionHandle, bool) {
	if m.lookup == nil {
		m.sendError(c, "Session not found")
		return nil, false
	}
	s, ok := m.lookup(c.SessionID)
	if !ok {
		m.sendError(c, "Session not found")
	}
	return s, ok
}

func (m *Manager) send(c *Client, typ string, data interface{}) {
	payload, err := json.Marshal(reply{Type: typ, Data: data, Timestamp: time.Now().UTC().Format(time.RFC3339)})
	if err != nil {
		logger.Error("WebSocket: failed to marshal %s reply: %v", typ, err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[c.SessionID][c]; !ok {
		return
	}
	select {
	case c.Send <- payload:
	default:
		logger.Warn("WebSocket: session %s send buffer full, closing connection", c.SessionID)
		m.removeLocked(c)
	}
}

func (m *Manager) sendError(c *Client, message string) {
	m.send(c, MessageTypeError, map[string]string{"error": message})
}
