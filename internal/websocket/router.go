package websocket

import (
	"context"
	"encoding/json"

	"roomlink-be/internal/dto"
	"roomlink-be/internal/model"
	"roomlink-be/internal/pkg/logger"
	"roomlink-be/internal/service"
)

// Router dispatches inbound room events. Each handler validates, enriches
// and fans out; a malformed event is logged and dropped so the connection
// survives bad input.
type Router struct {
	sessionService    service.ISessionService
	suggestionService service.ISuggestionService
	publisherService  service.IPublisherService
	logger            logger.ILogger
}

func NewRouter(
	sessionService service.ISessionService,
	suggestionService service.ISuggestionService,
	publisherService service.IPublisherService,
	log logger.ILogger,
) *Router {
	return &Router{
		sessionService:    sessionService,
		suggestionService: suggestionService,
		publisherService:  publisherService,
		logger:            log,
	}
}

func (r *Router) Dispatch(client *Client, data []byte) {
	var event Envelope
	if err := json.Unmarshal(data, &event); err != nil {
		r.drop(client, "Malformed event payload", err)
		return
	}

	ctx := context.Background()

	switch event.Type {
	case EventChatMessage:
		r.handleChat(ctx, client, &event)
	case EventSignal:
		r.handleSignal(client, &event)
	case EventUserJoin:
		r.handleUserJoin(client, &event)
	case EventAudioMessage:
		r.handleAudio(ctx, client, &event)
	case EventParticipantUpdate:
		r.handleParticipantUpdate(ctx, client, &event)
	default:
		r.drop(client, "Unknown event type: "+event.Type, nil)
	}
}

func (r *Router) handleChat(ctx context.Context, client *Client, event *Envelope) {
	if event.Message == "" {
		r.drop(client, "Chat message without text", nil)
		return
	}

	// Enrichment happens before fan-out and outside any room lock, so a slow
	// dictionary load never stalls delivery for the rest of the room. A failed
	// session lookup degrades to no hint and no history; the room still gets
	// the text.
	session, err := r.sessionService.GetSessionByRoomCode(ctx, client.RoomCode)
	if err != nil {
		r.logger.Warn("Router", "Chat session lookup failed, sending without suggestion", map[string]interface{}{"room": client.RoomCode, "user": client.Username, "error": err.Error()})
	}
	suggestion := r.suggestionService.Lookup(ctx, session, event.Message)

	client.Hub.Broadcast(client.RoomCode, &Envelope{
		Type:       EventChatMessage,
		Message:    event.Message,
		Suggestion: suggestion,
		Sender:     client.Username,
	})

	if session != nil {
		r.persist(ctx, client, session, model.MessageKindChat, event.Message)
	}
}

func (r *Router) handleSignal(client *Client, event *Envelope) {
	if len(event.Data) == 0 {
		r.drop(client, "Signal without payload", nil)
		return
	}

	client.Hub.SendSignal(client.RoomCode, &Envelope{
		Type:   EventSignal,
		Data:   event.Data,
		Target: event.Target,
		Sender: client.Username,
	})
}

func (r *Router) handleUserJoin(client *Client, _ *Envelope) {
	client.Hub.Broadcast(client.RoomCode, &Envelope{
		Type:        EventUserJoin,
		Username:    client.Username,
		ChannelName: client.ID,
	})
}

func (r *Router) handleAudio(ctx context.Context, client *Client, event *Envelope) {
	if event.Content == "" {
		r.drop(client, "Audio message without content", nil)
		return
	}

	client.Hub.Broadcast(client.RoomCode, &Envelope{
		Type:    EventAudioMessage,
		Content: event.Content,
		Sender:  client.Username,
	})

	session, err := r.sessionService.GetSessionByRoomCode(ctx, client.RoomCode)
	if err != nil {
		r.logger.Warn("Router", "Audio persisted without session", map[string]interface{}{"room": client.RoomCode, "error": err.Error()})
		return
	}
	r.persist(ctx, client, session, model.MessageKindAudio, event.Content)
}

func (r *Router) handleParticipantUpdate(ctx context.Context, client *Client, event *Envelope) {
	if event.Username == "" || event.Action == "" {
		r.drop(client, "Participant update missing username or action", nil)
		return
	}

	// Self-reported link quality is also recorded on the participant row, so
	// the session detail view reflects it. Best effort, delivery first.
	if event.Username == client.Username {
		switch event.Action {
		case model.QualityHigh, model.QualityMedium, model.QualityLow:
			if err := r.sessionService.SetConnectionQuality(ctx, client.UserID, client.RoomCode, event.Action); err != nil {
				r.logger.Warn("Router", "Failed to record connection quality", map[string]interface{}{"room": client.RoomCode, "user": client.Username, "error": err.Error()})
			}
		}
	}

	client.Hub.Broadcast(client.RoomCode, &Envelope{
		Type:     EventParticipantUpdate,
		Username: event.Username,
		Action:   event.Action,
		Sender:   client.Username,
	})
}

// persist hands the message to the async pipeline; delivery already happened,
// so a publish failure costs history, not the broadcast.
func (r *Router) persist(ctx context.Context, client *Client, session *model.Session, kind, content string) {
	if r.publisherService == nil {
		return
	}
	payload, err := json.Marshal(dto.PersistMessageRequest{
		SessionId: session.Id,
		SenderId:  client.UserID,
		Sender:    client.Username,
		Kind:      kind,
		Content:   content,
	})
	if err != nil {
		r.logger.Error("Router", "Failed to marshal persistence payload", map[string]interface{}{"room": client.RoomCode, "error": err.Error()})
		return
	}
	if err := r.publisherService.Publish(ctx, payload); err != nil {
		r.logger.Error("Router", "Failed to enqueue message for persistence", map[string]interface{}{"room": client.RoomCode, "error": err.Error()})
	}
}

func (r *Router) drop(client *Client, reason string, err error) {
	details := map[string]interface{}{"room": client.RoomCode, "user": client.Username}
	if err != nil {
		details["error"] = err.Error()
	}
	r.logger.Warn("Router", reason, details)
}
