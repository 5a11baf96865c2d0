package dto

import (
	"github.com/google/uuid"
)

// PersistMessageRequest travels over the internal message bus from the hub
// to the persistence consumer.
type PersistMessageRequest struct {
	SessionId uuid.UUID `json:"session_id"`
	SenderId  uuid.UUID `json:"sender_id"`
	Sender    string    `json:"sender"`
	Kind      string    `json:"kind"`
	Content   string    `json:"content"`
}
