package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	MaxParticipants    int   `json:"max_participants" validate:"omitempty,min=1"`
	SuggestionsEnabled *bool `json:"suggestions_enabled"`
	Discoverable       *bool `json:"discoverable"`
}

type JoinWithCodeRequest struct {
	RoomCode string `json:"room_code" validate:"required,len=8,numeric"`
}

type InviteParticipantRequest struct {
	Username string `json:"username" validate:"required"`
}

type RespondInviteRequest struct {
	// Action mirrors the participant status it produces.
	Action string `json:"action" validate:"required,oneof=accepted rejected"`
}

type DecideRequest struct {
	Username string `json:"username" validate:"required"`
	Action   string `json:"action" validate:"required,oneof=accept reject kick"`
}

type AddParticipantRequest struct {
	Username string `json:"username" validate:"required"`
}

type SessionResponse struct {
	Id                   uuid.UUID `json:"id"`
	RoomCode             string    `json:"room_code"`
	HostUsername         string    `json:"host_username"`
	IsActive             bool      `json:"is_active"`
	IsDiscoverable       bool      `json:"is_discoverable"`
	MaxParticipants      int       `json:"max_participants"`
	IsSuggestionsEnabled bool      `json:"is_suggestions_enabled"`
	CreatedAt            time.Time `json:"created_at"`
}

type AvailableSessionResponse struct {
	SessionResponse
	ParticipantCount int64 `json:"participant_count"`
}

type ParticipantResponse struct {
	Id                uuid.UUID `json:"id"`
	Username          string    `json:"username"`
	DisplayName       string    `json:"display_name"`
	Status            string    `json:"status"`
	RequestType       string    `json:"request_type"`
	ConnectionQuality string    `json:"connection_quality"`
	JoinedAt          time.Time `json:"joined_at"`
}

type InvitationResponse struct {
	SessionId    uuid.UUID `json:"session_id"`
	RoomCode     string    `json:"room_code"`
	HostUsername string    `json:"host_username"`
	InvitedAt    time.Time `json:"invited_at"`
}

// SessionDetailResponse backs the room page: the session, the caller's own
// participant row, and the host's moderation panels.
type SessionDetailResponse struct {
	Session         SessionResponse       `json:"session"`
	Me              ParticipantResponse   `json:"me"`
	IsHost          bool                  `json:"is_host"`
	Participants    []ParticipantResponse `json:"participants"`
	CurrentCount    int64                 `json:"current_count"`
	PendingRequests []ParticipantResponse `json:"pending_requests,omitempty"`
	InvitedUsers    []ParticipantResponse `json:"invited_users,omitempty"`
	Discoverable    []string              `json:"discoverable_users,omitempty"`
}
