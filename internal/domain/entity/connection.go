package entity

import "time"

type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionRejected ConnectionStatus = "rejected"
)

type ConnectionRequest struct {
	ID           string           `json:"id" firestore:"id"`
	SenderID     string           `json:"senderId" firestore:"senderId"`
	SenderName   string           `json:"senderName" firestore:"senderName"`
	SenderAvatar string           `json:"senderAvatar" firestore:"senderAvatar"`
	SenderRole   Role             `json:"senderRole" firestore:"senderRole"`
	ReceiverID   string           `json:"receiverId" firestore:"receiverId"`
	Status       ConnectionStatus `json:"status" firestore:"status"`
	Timestamp    time.Time        `json:"timestamp" firestore:"timestamp"`
}

func (c *ConnectionRequest) SetID(id string) { c.ID = id }
