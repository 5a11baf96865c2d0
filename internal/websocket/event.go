package websocket

import "encoding/json"

// Inbound/outbound event kinds carried over a room connection.
const (
	EventChatMessage       = "chat_message"
	EventSignal            = "signal"
	EventUserJoin          = "user_join"
	EventAudioMessage      = "audio_message"
	EventParticipantUpdate = "participant_update"

	// server-originated push, never accepted inbound
	EventNotification = "notification"
)

// Envelope is the wire format in both directions: a required type plus
// type-dependent fields. Unknown fields are ignored, unknown types dropped.
type Envelope struct {
	Type string `json:"type"`

	// chat_message
	Message    string `json:"message,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`

	// signal
	Data   json.RawMessage `json:"data,omitempty"`
	Target string          `json:"target,omitempty"`

	// user_join / participant_update
	Username    string `json:"username,omitempty"`
	ChannelName string `json:"channel_name,omitempty"`
	Action      string `json:"action,omitempty"`

	// audio_message
	Content string `json:"content,omitempty"`

	// set by the server on rebroadcast
	Sender string `json:"sender,omitempty"`

	// notification push
	Notification interface{} `json:"notification,omitempty"`
}
