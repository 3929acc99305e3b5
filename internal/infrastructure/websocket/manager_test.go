package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artisanx/internal/domain/entity"
	"artisanx/internal/usecase"
)

type fakeSession struct {
	mu        sync.Mutex
	dismissed []string
}

func (f *fakeSession) View() usecase.ViewModel {
	return usecase.ViewModel{SessionID: "s1", Locale: "en"}
}

func (f *fakeSession) RemoveNotification(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dismissed = append(f.dismissed, id)
}

func (f *fakeSession) dismissedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.dismissed...)
}

var upgrader = websocket.Upgrader{}

// connect starts a server that binds every connection to sessionID and
// dials it.
func connect(t *testing.T, m *Manager, sessionID string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := NewClient(sessionID, conn)
		m.Register(c)
		go c.ReadPump(m)
		go c.WritePump()
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Eventually(t, func() bool { return m.ClientCount(sessionID) == 1 }, time.Second, 5*time.Millisecond)
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var out map[string]interface{}
	require.NoError(t, conn.ReadJSON(&out))
	return out
}

func TestPublishReachesSessionClients(t *testing.T) {
	m := NewManager(nil)
	conn := connect(t, m, "s1")
	other := connect(t, m, "s2")

	m.Publish("s1", entity.SessionEvent{Type: entity.EventState, Domain: "products", Data: []string{"1"}})

	got := readJSON(t, conn)
	assert.Equal(t, "state", got["type"])
	assert.Equal(t, "products", got["domain"])

	require.NoError(t, other.SetReadDeadline(time.Now().Add(50*time.Millisecond)))
	_, _, err := other.ReadMessage()
	assert.Error(t, err, "other sessions receive nothing")
}

func TestPublishToUnknownSessionIsNoop(t *testing.T) {
	m := NewManager(nil)
	assert.NotPanics(t, func() {
		m.Publish("missing", entity.SessionEvent{Type: entity.EventSession})
	})
}

func TestPingPong(t *testing.T) {
	m := NewManager(nil)
	conn := connect(t, m, "s1")

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	got := readJSON(t, conn)
	assert.Equal(t, MessageTypePong, got["type"])
}

func TestDismissNotificationAndGetState(t *testing.T) {
	session := &fakeSession{}
	m := NewManager(func(id string) (SessionHandle, bool) {
		if id != "s1" {
			return nil, false
		}
		return session, true
	})
	conn := connect(t, m, "s1")

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type": "dismiss_notification",
		"data": map[string]string{"id": "n1"},
	}))
	require.Eventually(t, func() bool {
		return len(session.dismissedIDs()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"n1"}, session.dismissedIDs())

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "get_state"}))
	got := readJSON(t, conn)
	assert.Equal(t, "state", got["type"])
	data, ok := got["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "s1", data["sessionId"])
}

func TestInvalidMessages(t *testing.T) {
	m := NewManager(func(string) (SessionHandle, bool) { return nil, false })
	conn := connect(t, m, "gone")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	assert.Equal(t, MessageTypeError, readJSON(t, conn)["type"])

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "teleport"}))
	assert.Equal(t, MessageTypeError, readJSON(t, conn)["type"])

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "get_state"}))
	got := readJSON(t, conn)
	assert.Equal(t, MessageTypeError, got["type"])
	raw, _ := json.Marshal(got["data"])
	assert.Contains(t, string(raw), "Session not found")
}

func TestCloseSessionDisconnects(t *testing.T) {
	m := NewManager(nil)
	conn := connect(t, m, "s1")

	m.CloseSession("s1")
	assert.Zero(t, m.ClientCount("s1"))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "the server closes the connection")
}
