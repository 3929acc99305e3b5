package entity

type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationInfo    NotificationType = "info"
	NotificationError   NotificationType = "error"
)

// NotificationLink points the client at the page that resolves the
// notification.
type NotificationLink struct {
	Text string `json:"text"`
	Page string `json:"page"`
}

type Notification struct {
	ID      string            `json:"id"`
	Message string            `json:"message"`
	Type    NotificationType  `json:"type"`
	Link    *NotificationLink `json:"link,omitempty"`
}

// SessionEvent is pushed to the websocket client of a session.
type SessionEvent struct {
	Type   string      `json:"type"`
	Domain string      `json:"domain,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

const (
	EventState         = "state"
	EventNotifications = "notifications"
	EventSession       = "session"
)
