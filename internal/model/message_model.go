package model

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage and AudioMessage are append-only room content. The hub relays
// content live regardless of whether these rows persist; writing them is a
// side effect handled by the message consumer.

const (
	MessageKindChat  = "chat"
	MessageKindAudio = "audio"
)

type ChatMessage struct {
	Id         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SessionId  uuid.UUID `gorm:"type:uuid;not null;index" json:"session_id"`
	Session    Session   `gorm:"foreignKey:SessionId" json:"-"`
	SenderName string    `gorm:"type:varchar(50);not null" json:"sender_name"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

type AudioMessage struct {
	Id         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SessionId  uuid.UUID `gorm:"type:uuid;not null;index" json:"session_id"`
	Session    Session   `gorm:"foreignKey:SessionId" json:"-"`
	SenderName string    `gorm:"type:varchar(50);not null" json:"sender_name"`
	// Content is the clip payload as sent over the wire (data URL / base64).
	// Binary storage lives outside this service.
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}
