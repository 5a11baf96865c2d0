package model

import (
	"time"

	"github.com/google/uuid"
)

// User is a minimal identity record. Tokens are issued by an external auth
// service; we only mirror what the session domain needs (discoverability for
// host-side user search, display name for participant rows).
type User struct {
	Id             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Username       string    `gorm:"type:varchar(150);unique;not null;index" json:"username"`
	DisplayName    string    `gorm:"type:varchar(50)" json:"display_name"`
	Email          string    `gorm:"type:varchar(255)" json:"email,omitempty"`
	IsDiscoverable bool      `gorm:"default:true" json:"is_discoverable"`
	CreatedAt      time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}
