package entity

import "time"

type ChatMessage struct {
	ID        string    `json:"id" firestore:"id,omitempty"`
	SenderID  string    `json:"senderId" firestore:"senderId"`
	Text      string    `json:"text" firestore:"text"`
	Timestamp time.Time `json:"timestamp" firestore:"timestamp"`
}

func (m *ChatMessage) SetID(id string) { m.ID = id }
