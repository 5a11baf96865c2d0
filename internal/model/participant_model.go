package model

import (
	"time"

	"github.com/google/uuid"
)

// Participant statuses. A participant row exists per (session, user) pair and
// carries the admission state machine:
//
//	pending  -> accepted | rejected   (host decision, or self-accept on invite)
//	accepted -> kicked | disconnected (host kick, or connection drop)
//
// kicked and rejected are sticky for the subject; only the host can move them
// back to accepted via an explicit re-add. disconnected is advisory and flips
// back to accepted on reconnect.
const (
	StatusPending      = "pending"
	StatusAccepted     = "accepted"
	StatusRejected     = "rejected"
	StatusKicked       = "kicked"
	StatusDisconnected = "disconnected"
)

const (
	RequestTypeInvite      = "invite"
	RequestTypeJoinRequest = "join_request"
)

const (
	QualityHigh   = "high"
	QualityMedium = "medium"
	QualityLow    = "low"
)

type Participant struct {
	Id                uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SessionId         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_participants_session_user,priority:1" json:"session_id"`
	Session           Session   `gorm:"foreignKey:SessionId" json:"-"`
	UserId            uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_participants_session_user,priority:2" json:"user_id"`
	User              User      `gorm:"foreignKey:UserId" json:"-"`
	DisplayName       string    `gorm:"type:varchar(50);default:'Guest'" json:"display_name"`
	Status            string    `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	RequestType       string    `gorm:"type:varchar(20);default:'join_request'" json:"request_type"`
	ConnectionQuality string    `gorm:"type:varchar(20);default:'high'" json:"connection_quality"`
	JoinedAt          time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"joined_at"`

	// ChannelName is the last known connection handle for this participant.
	// It is a stale-prone cache hint only; targeted delivery always resolves
	// through live hub membership.
	ChannelName string `gorm:"type:varchar(255)" json:"channel_name,omitempty"`
}
