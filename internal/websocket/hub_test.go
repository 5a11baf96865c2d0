package websocket

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

// newTestClient builds a hub-addressable client without a socket; delivery is
// observed straight off the send buffer, no pumps running.
func newTestClient(hub *Hub, roomCode, username string) *Client {
	return &Client{
		Hub:      hub,
		ID:       uuid.NewString(),
		RoomCode: roomCode,
		Username: username,
		UserID:   uuid.New(),
		send:     make(chan []byte, 8),
	}
}

func recv(t *testing.T, c *Client) *Envelope {
	t.Helper()
	select {
	case data := <-c.send:
		var event Envelope
		if err := json.Unmarshal(data, &event); err != nil {
			t.Fatalf("undecodable frame: %v", err)
		}
		return &event
	default:
		t.Fatalf("client %s: no frame queued", c.Username)
		return nil
	}
}

func assertSilent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.send:
		t.Errorf("client %s: unexpected frame %s", c.Username, data)
	default:
	}
}

func TestBroadcastReachesAllMembers(t *testing.T) {
	hub := NewHub(nopLogger{})
	alice := newTestClient(hub, "11111111", "alice")
	bob := newTestClient(hub, "11111111", "bob")
	outsider := newTestClient(hub, "22222222", "carol")
	hub.Join(alice)
	hub.Join(bob)
	hub.Join(outsider)

	hub.Broadcast("11111111", &Envelope{Type: EventChatMessage, Message: "hello", Sender: "alice"})

	for _, c := range []*Client{alice, bob} {
		event := recv(t, c)
		if event.Type != EventChatMessage || event.Message != "hello" || event.Sender != "alice" {
			t.Errorf("client %s got %+v", c.Username, event)
		}
	}
	assertSilent(t, outsider)
}

func TestSignalTargetedDelivery(t *testing.T) {
	hub := NewHub(nopLogger{})
	alice := newTestClient(hub, "11111111", "alice")
	bob := newTestClient(hub, "11111111", "bob")
	carol := newTestClient(hub, "11111111", "carol")
	hub.Join(alice)
	hub.Join(bob)
	hub.Join(carol)

	hub.SendSignal("11111111", &Envelope{
		Type:   EventSignal,
		Data:   json.RawMessage(`{"sdp":"offer"}`),
		Target: "bob",
		Sender: "alice",
	})

	event := recv(t, bob)
	if event.Target != "bob" || event.Sender != "alice" || string(event.Data) != `{"sdp":"offer"}` {
		t.Errorf("bob got %+v", event)
	}
	assertSilent(t, alice)
	assertSilent(t, carol)
}

func TestSignalUntargetedExcludesSender(t *testing.T) {
	hub := NewHub(nopLogger{})
	alice := newTestClient(hub, "11111111", "alice")
	bob := newTestClient(hub, "11111111", "bob")
	carol := newTestClient(hub, "11111111", "carol")
	hub.Join(alice)
	hub.Join(bob)
	hub.Join(carol)

	hub.SendSignal("11111111", &Envelope{
		Type:   EventSignal,
		Data:   json.RawMessage(`{"candidate":"x"}`),
		Sender: "alice",
	})

	recv(t, bob)
	recv(t, carol)
	assertSilent(t, alice)
}

// A signal targeted at the sender itself goes nowhere; the sender filter
// runs before the target match.
func TestSignalSelfTargetDropped(t *testing.T) {
	hub := NewHub(nopLogger{})
	alice := newTestClient(hub, "11111111", "alice")
	bob := newTestClient(hub, "11111111", "bob")
	hub.Join(alice)
	hub.Join(bob)

	hub.SendSignal("11111111", &Envelope{
		Type:   EventSignal,
		Data:   json.RawMessage(`{}`),
		Target: "alice",
		Sender: "alice",
	})

	assertSilent(t, alice)
	assertSilent(t, bob)
}

func TestMultipleConnectionsPerUser(t *testing.T) {
	hub := NewHub(nopLogger{})
	tab1 := newTestClient(hub, "11111111", "alice")
	tab2 := newTestClient(hub, "11111111", "alice")
	bob := newTestClient(hub, "11111111", "bob")
	hub.Join(tab1)
	hub.Join(tab2)
	hub.Join(bob)

	if got := hub.MemberCount("11111111"); got != 3 {
		t.Errorf("MemberCount = %d, want 3", got)
	}

	hub.SendSignal("11111111", &Envelope{
		Type:   EventSignal,
		Data:   json.RawMessage(`{}`),
		Target: "alice",
		Sender: "bob",
	})

	recv(t, tab1)
	recv(t, tab2)
	assertSilent(t, bob)
}

func TestLeaveAndRoomCollection(t *testing.T) {
	hub := NewHub(nopLogger{})
	alice := newTestClient(hub, "11111111", "alice")
	bob := newTestClient(hub, "11111111", "bob")
	hub.Join(alice)
	hub.Join(bob)

	hub.Leave(alice)
	if got := hub.MemberCount("11111111"); got != 1 {
		t.Errorf("MemberCount after leave = %d, want 1", got)
	}
	if alice.enqueue([]byte("late")) {
		t.Error("enqueue after leave accepted a frame")
	}

	// Remaining members still receive; the departed one is not written to.
	hub.Broadcast("11111111", &Envelope{Type: EventChatMessage, Message: "still here"})
	recv(t, bob)

	hub.Leave(bob)
	if got := hub.MemberCount("11111111"); got != 0 {
		t.Errorf("MemberCount after last leave = %d, want 0", got)
	}
	if hub.getRoom("11111111") != nil {
		t.Error("empty room was not collected")
	}

	// Leave is idempotent.
	hub.Leave(bob)
}

func TestSendToUser(t *testing.T) {
	hub := NewHub(nopLogger{})
	alice := newTestClient(hub, "11111111", "alice")
	bob := newTestClient(hub, "11111111", "bob")
	hub.Join(alice)
	hub.Join(bob)

	hub.SendToUser("11111111", "bob", &Envelope{Type: EventNotification, Notification: "ping"})

	event := recv(t, bob)
	if event.Type != EventNotification {
		t.Errorf("bob got %+v", event)
	}
	assertSilent(t, alice)
}

func TestPushToUsernameAcrossRooms(t *testing.T) {
	hub := NewHub(nopLogger{})
	bobHere := newTestClient(hub, "11111111", "bob")
	bobThere := newTestClient(hub, "22222222", "bob")
	alice := newTestClient(hub, "11111111", "alice")
	hub.Join(bobHere)
	hub.Join(bobThere)
	hub.Join(alice)

	hub.PushToUsername("bob", &Envelope{Type: EventNotification, Notification: "invited"})

	recv(t, bobHere)
	recv(t, bobThere)
	assertSilent(t, alice)

	// Offline user: nothing to deliver, nothing breaks.
	hub.PushToUsername("nobody", &Envelope{Type: EventNotification})
}

func TestEnqueueDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(nopLogger{})
	slow := &Client{
		Hub:      hub,
		ID:       uuid.NewString(),
		RoomCode: "11111111",
		Username: "slow",
		send:     make(chan []byte, 1),
	}
	fast := newTestClient(hub, "11111111", "fast")
	hub.Join(slow)
	hub.Join(fast)

	hub.Broadcast("11111111", &Envelope{Type: EventChatMessage, Message: "one"})
	hub.Broadcast("11111111", &Envelope{Type: EventChatMessage, Message: "two"})

	// The slow member holds only the first frame; the fast one got both.
	if event := recv(t, slow); event.Message != "one" {
		t.Errorf("slow got %q, want the first frame", event.Message)
	}
	assertSilent(t, slow)
	recv(t, fast)
	recv(t, fast)
}
