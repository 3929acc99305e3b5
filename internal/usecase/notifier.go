package usecase

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"artisanx/internal/domain/entity"
)

const DefaultNotificationTTL = 6 * time.Second

// Notifier keeps the transient notification list of one session. Every
// notification removes itself after the TTL.
type Notifier struct {
	mu       sync.Mutex
	items    []entity.Notification
	timers   map[string]*time.Timer
	ttl      time.Duration
	onChange func([]entity.Notification)
	closed   bool
}

func NewNotifier(ttl time.Duration, onChange func([]entity.Notification)) *Notifier {
	if ttl <= 0 {
		ttl = DefaultNotificationTTL
	}
	return &Notifier{
		timers:   make(map[string]*time.Timer),
		ttl:      ttl,
		onChange: onChange,
	}
}

func newNotificationID() string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("%d-%s", time.Now().UnixNano(), suffix)
}

func (n *Notifier) Notify(message string, typ entity.NotificationType, link *entity.NotificationLink) string {
	id := newNotificationID()

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return id
	}

	n.items = append(n.items, entity.Notification{ID: id, Message: message, Type: typ, Link: link})
	n.timers[id] = time.AfterFunc(n.ttl, func() { n.Remove(id) })
	n.changedLocked()
	return id
}

// Remove dismisses a notification. Unknown ids, including ones that already
// expired, are ignored.
func (n *Notifier) Remove(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	idx := -1
	for i, item := range n.items {
		if item.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	n.items = append(n.items[:idx:idx], n.items[idx+1:]...)
	if t, ok := n.timers[id]; ok {
		t.Stop()
		delete(n.timers, id)
	}
	n.changedLocked()
}

func (n *Notifier) List() []entity.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]entity.Notification(nil), n.items...)
}

// Close stops all pending expiry timers.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	for id, t := range n.timers {
		t.Stop()
		delete(n.timers, id)
	}
	n.items = nil
}

func (n *Notifier) changedLocked() {
	if n.onChange != nil {
		n.onChange(append([]entity.Notification(nil), n.items...))
	}
}
