package model

import (
	"time"

	"github.com/google/uuid"
)

// Session is a host-owned room. Deleting a session is always a soft delete
// (IsActive=false) because participants, messages and notifications keep
// referencing it.
type Session struct {
	Id                   uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RoomCode             string    `gorm:"type:char(8);unique;not null;index" json:"room_code"`
	HostId               uuid.UUID `gorm:"type:uuid;not null;index" json:"host_id"`
	Host                 User      `gorm:"foreignKey:HostId" json:"-"`
	IsActive             bool      `gorm:"default:true" json:"is_active"`
	IsDiscoverable       bool      `gorm:"default:true" json:"is_discoverable"`
	MaxParticipants      int       `gorm:"default:10" json:"max_participants"`
	IsSuggestionsEnabled bool      `gorm:"default:true" json:"is_suggestions_enabled"`
	CreatedAt            time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}
