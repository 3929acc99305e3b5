package entity

import (
	"sort"
	"strings"
	"time"
)

type Participant struct {
	Name   string `json:"name" firestore:"name"`
	Avatar string `json:"avatar" firestore:"avatar"`
}

type LastMessage struct {
	Text      string    `json:"text" firestore:"text"`
	Timestamp time.Time `json:"timestamp" firestore:"timestamp"`
}

// Conversation between exactly two users. Messages live in the nested
// messages collection and are filled in from the live message watch.
type Conversation struct {
	ID             string                 `json:"id" firestore:"id,omitempty"`
	ParticipantIDs []string               `json:"participantIds" firestore:"participantIds"`
	Participants   map[string]Participant `json:"participants" firestore:"participants"`
	LastMessage    *LastMessage           `json:"lastMessage,omitempty" firestore:"lastMessage,omitempty"`
	Messages       []ChatMessage          `json:"messages,omitempty" firestore:"-"`
}

func (c *Conversation) SetID(id string) { c.ID = id }

func (c *Conversation) HasParticipant(userID string) bool {
	for _, id := range c.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// ConversationID is symmetric in its arguments.
func ConversationID(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, "-")
}
