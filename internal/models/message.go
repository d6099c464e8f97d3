package models

import "time"

// Message is a conversation message owned by the main marketplace app.
// Only the fields the resolver needs are stored here.
type Message struct {
	ID             int       `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       int       `json:"sender_id"`
	ReceiverID     int       `json:"receiver_id"`
	Content        string    `json:"content"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"created_at"`
}
