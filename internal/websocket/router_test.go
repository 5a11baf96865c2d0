package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"roomlink-be/internal/dto"
	"roomlink-be/internal/model"
	"roomlink-be/internal/service"

	"github.com/google/uuid"
)

// stubSessionService answers room lookups from a fixed session. The embedded
// interface panics on anything else the router should never call.
type stubSessionService struct {
	service.ISessionService
	session *model.Session
	err     error

	qualityMu    sync.Mutex
	qualityCalls []string // "<user_id>|<quality>"
}

func (s *stubSessionService) GetSessionByRoomCode(ctx context.Context, roomCode string) (*model.Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.session, nil
}

func (s *stubSessionService) SetConnectionQuality(ctx context.Context, userId uuid.UUID, roomCode, quality string) error {
	s.qualityMu.Lock()
	defer s.qualityMu.Unlock()
	s.qualityCalls = append(s.qualityCalls, userId.String()+"|"+quality)
	return nil
}

func (s *stubSessionService) recordedQuality() []string {
	s.qualityMu.Lock()
	defer s.qualityMu.Unlock()
	return append([]string(nil), s.qualityCalls...)
}

type stubSuggester struct {
	tip string
}

func (s *stubSuggester) Lookup(ctx context.Context, session *model.Session, text string) string {
	if session == nil || !session.IsSuggestionsEnabled {
		return ""
	}
	return s.tip
}

type stubPublisher struct {
	mu        sync.Mutex
	published [][]byte
	err       error
}

func (p *stubPublisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, payload)
	return nil
}

func (p *stubPublisher) persisted(t *testing.T) dto.PersistMessageRequest {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.published) != 1 {
		t.Fatalf("published %d payloads, want 1", len(p.published))
	}
	var req dto.PersistMessageRequest
	if err := json.Unmarshal(p.published[0], &req); err != nil {
		t.Fatalf("undecodable persistence payload: %v", err)
	}
	return req
}

func (p *stubPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}

type routerFixture struct {
	hub       *Hub
	router    *Router
	publisher *stubPublisher
	sessions  *stubSessionService
	session   *model.Session
	alice     *Client
	bob       *Client
}

func newRouterFixture(t *testing.T, tip string) *routerFixture {
	t.Helper()
	session := &model.Session{Id: uuid.New(), RoomCode: "11111111", IsActive: true, IsSuggestionsEnabled: true}
	publisher := &stubPublisher{}
	sessions := &stubSessionService{session: session}
	hub := NewHub(nopLogger{})
	router := NewRouter(sessions, &stubSuggester{tip: tip}, publisher, nopLogger{})

	f := &routerFixture{
		hub:       hub,
		router:    router,
		publisher: publisher,
		sessions:  sessions,
		session:   session,
		alice:     newTestClient(hub, "11111111", "alice"),
		bob:       newTestClient(hub, "11111111", "bob"),
	}
	f.alice.router = router
	f.bob.router = router
	hub.Join(f.alice)
	hub.Join(f.bob)
	return f
}

func TestDispatchChat(t *testing.T) {
	f := newRouterFixture(t, "Tip: Win + R - Open Run dialog.")

	f.router.Dispatch(f.alice, []byte(`{"type":"chat_message","message":"how do I run this?"}`))

	for _, c := range []*Client{f.alice, f.bob} {
		event := recv(t, c)
		if event.Type != EventChatMessage || event.Message != "how do I run this?" {
			t.Errorf("client %s got %+v", c.Username, event)
		}
		if event.Sender != "alice" {
			t.Errorf("client %s: sender = %q, want alice", c.Username, event.Sender)
		}
		if event.Suggestion != "Tip: Win + R - Open Run dialog." {
			t.Errorf("client %s: suggestion = %q", c.Username, event.Suggestion)
		}
	}

	req := f.publisher.persisted(t)
	if req.SessionId != f.session.Id || req.SenderId != f.alice.UserID {
		t.Errorf("persisted ids = %+v", req)
	}
	if req.Kind != model.MessageKindChat || req.Sender != "alice" || req.Content != "how do I run this?" {
		t.Errorf("persisted payload = %+v", req)
	}
}

func TestDispatchChatWithoutSuggestion(t *testing.T) {
	f := newRouterFixture(t, "")

	f.router.Dispatch(f.alice, []byte(`{"type":"chat_message","message":"hello"}`))

	if event := recv(t, f.bob); event.Suggestion != "" {
		t.Errorf("suggestion = %q, want empty", event.Suggestion)
	}
}

func TestDispatchChatMissingText(t *testing.T) {
	f := newRouterFixture(t, "")

	f.router.Dispatch(f.alice, []byte(`{"type":"chat_message"}`))

	assertSilent(t, f.alice)
	assertSilent(t, f.bob)
	if f.publisher.count() != 0 {
		t.Error("empty chat was persisted")
	}
}

// A failed session lookup costs the hint and the history row, never the
// broadcast itself.
func TestDispatchChatSessionLookupFails(t *testing.T) {
	f := newRouterFixture(t, "Tip: Win + R - Open Run dialog.")
	f.router.sessionService = &stubSessionService{err: errors.New("gone")}

	f.router.Dispatch(f.alice, []byte(`{"type":"chat_message","message":"how do I run this?"}`))

	for _, c := range []*Client{f.alice, f.bob} {
		event := recv(t, c)
		if event.Type != EventChatMessage || event.Message != "how do I run this?" || event.Sender != "alice" {
			t.Errorf("client %s got %+v", c.Username, event)
		}
		if event.Suggestion != "" {
			t.Errorf("client %s: suggestion = %q, want none without a session", c.Username, event.Suggestion)
		}
	}
	if f.publisher.count() != 0 {
		t.Error("chat persisted despite failed session lookup")
	}
}

func TestDispatchMalformedPayload(t *testing.T) {
	f := newRouterFixture(t, "")

	f.router.Dispatch(f.alice, []byte(`{not json`))
	f.router.Dispatch(f.alice, []byte(`{"type":"teleport"}`))

	assertSilent(t, f.alice)
	assertSilent(t, f.bob)
}

func TestDispatchSignal(t *testing.T) {
	f := newRouterFixture(t, "")

	f.router.Dispatch(f.alice, []byte(`{"type":"signal","data":{"sdp":"offer"},"target":"bob"}`))

	event := recv(t, f.bob)
	if event.Type != EventSignal || string(event.Data) != `{"sdp":"offer"}` {
		t.Errorf("bob got %+v", event)
	}
	if event.Sender != "alice" {
		t.Errorf("sender = %q, want alice", event.Sender)
	}
	assertSilent(t, f.alice)
}

func TestDispatchSignalWithoutPayload(t *testing.T) {
	f := newRouterFixture(t, "")

	f.router.Dispatch(f.alice, []byte(`{"type":"signal","target":"bob"}`))

	assertSilent(t, f.bob)
}

func TestDispatchUserJoin(t *testing.T) {
	f := newRouterFixture(t, "")

	f.router.Dispatch(f.alice, []byte(`{"type":"user_join"}`))

	event := recv(t, f.bob)
	if event.Type != EventUserJoin || event.Username != "alice" {
		t.Errorf("bob got %+v", event)
	}
	if event.ChannelName != f.alice.ID {
		t.Errorf("channel = %q, want the sender's connection handle", event.ChannelName)
	}
	recv(t, f.alice) // join announcements reach the joiner too
}

func TestDispatchAudio(t *testing.T) {
	f := newRouterFixture(t, "")

	f.router.Dispatch(f.bob, []byte(`{"type":"audio_message","content":"b64clip"}`))

	event := recv(t, f.alice)
	if event.Type != EventAudioMessage || event.Content != "b64clip" || event.Sender != "bob" {
		t.Errorf("alice got %+v", event)
	}
	// Audio is never routed through suggestion enrichment.
	if event.Suggestion != "" {
		t.Errorf("audio carried suggestion %q", event.Suggestion)
	}

	req := f.publisher.persisted(t)
	if req.Kind != model.MessageKindAudio || req.Content != "b64clip" || req.Sender != "bob" {
		t.Errorf("persisted payload = %+v", req)
	}
}

func TestDispatchAudioMissingContent(t *testing.T) {
	f := newRouterFixture(t, "")

	f.router.Dispatch(f.bob, []byte(`{"type":"audio_message"}`))

	assertSilent(t, f.alice)
	if f.publisher.count() != 0 {
		t.Error("empty audio was persisted")
	}
}

func TestDispatchParticipantUpdate(t *testing.T) {
	f := newRouterFixture(t, "")

	f.router.Dispatch(f.alice, []byte(`{"type":"participant_update","username":"bob","action":"muted"}`))

	event := recv(t, f.bob)
	if event.Type != EventParticipantUpdate || event.Username != "bob" || event.Action != "muted" {
		t.Errorf("bob got %+v", event)
	}
	if event.Sender != "alice" {
		t.Errorf("sender = %q, want alice", event.Sender)
	}

	f.router.Dispatch(f.alice, []byte(`{"type":"participant_update","username":"bob"}`))
	recv(t, f.alice) // drain the first update
	assertSilent(t, f.bob)
}

// A member reporting its own link quality gets the value recorded on its
// participant row; reports about other users are relayed but never recorded.
func TestDispatchParticipantUpdateRecordsOwnQuality(t *testing.T) {
	f := newRouterFixture(t, "")

	f.router.Dispatch(f.alice, []byte(`{"type":"participant_update","username":"alice","action":"low"}`))

	event := recv(t, f.bob)
	if event.Username != "alice" || event.Action != "low" {
		t.Errorf("bob got %+v", event)
	}
	calls := f.sessions.recordedQuality()
	if len(calls) != 1 || calls[0] != f.alice.UserID.String()+"|low" {
		t.Errorf("quality calls = %v, want one for alice/low", calls)
	}

	// About someone else, or not a quality value: relay only.
	f.router.Dispatch(f.alice, []byte(`{"type":"participant_update","username":"bob","action":"high"}`))
	f.router.Dispatch(f.alice, []byte(`{"type":"participant_update","username":"alice","action":"muted"}`))
	recv(t, f.bob)
	recv(t, f.bob)
	if calls := f.sessions.recordedQuality(); len(calls) != 1 {
		t.Errorf("quality calls = %v, want no new entries", calls)
	}
}

func TestDispatchChatSurvivesPublishFailure(t *testing.T) {
	f := newRouterFixture(t, "")
	f.publisher.err = errors.New("broker down")

	f.router.Dispatch(f.alice, []byte(`{"type":"chat_message","message":"hello"}`))

	// Delivery already happened; the publish failure only costs history.
	if event := recv(t, f.bob); event.Message != "hello" {
		t.Errorf("bob got %+v", event)
	}
}
