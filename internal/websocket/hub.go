package websocket

import (
	"encoding/json"
	"sync"

	"roomlink-be/internal/pkg/logger"
)

// Hub tracks the live connections of every room. Each room is its own
// ordering domain: join, leave and fan-out for one room serialize on that
// room's lock, and rooms never share a lock, so one room's traffic cannot
// stall another's.
//
// Members are addressable by username, which lets targeted signal delivery
// filter before fan-out instead of broadcasting and dropping at the
// receiver.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*room

	logger logger.ILogger
}

type room struct {
	mu sync.Mutex
	// username -> connections (one user may hold several, e.g. two tabs)
	members map[string][]*Client
}

func NewHub(log logger.ILogger) *Hub {
	return &Hub{
		rooms:  make(map[string]*room),
		logger: log,
	}
}

func (h *Hub) getOrCreateRoom(roomCode string) *room {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[roomCode]
	if !ok {
		r = &room{members: make(map[string][]*Client)}
		h.rooms[roomCode] = r
	}
	return r
}

func (h *Hub) getRoom(roomCode string) *room {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms[roomCode]
}

// Join registers a connection with its room.
func (h *Hub) Join(client *Client) {
	r := h.getOrCreateRoom(client.RoomCode)

	r.mu.Lock()
	r.members[client.Username] = append(r.members[client.Username], client)
	r.mu.Unlock()

	h.logger.Info("Hub", "Client joined room", map[string]interface{}{"room": client.RoomCode, "user": client.Username})
}

// Leave deregisters a connection. Idempotent; empty rooms are garbage
// collected since nothing persists across empty periods.
func (h *Hub) Leave(client *Client) {
	r := h.getRoom(client.RoomCode)
	if r == nil {
		return
	}

	r.mu.Lock()
	conns := r.members[client.Username]
	for i, c := range conns {
		if c == client {
			r.members[client.Username] = append(conns[:i], conns[i+1:]...)
			c.closeSend()
			break
		}
	}
	if len(r.members[client.Username]) == 0 {
		delete(r.members, client.Username)
	}
	empty := len(r.members) == 0
	r.mu.Unlock()

	if empty {
		h.mu.Lock()
		// Recheck under the hub lock; a concurrent Join may have revived it.
		r.mu.Lock()
		if len(r.members) == 0 && h.rooms[client.RoomCode] == r {
			delete(h.rooms, client.RoomCode)
		}
		r.mu.Unlock()
		h.mu.Unlock()
	}

	h.logger.Info("Hub", "Client left room", map[string]interface{}{"room": client.RoomCode, "user": client.Username})
}

// Broadcast delivers the event to every member of the room, sender included.
func (h *Hub) Broadcast(roomCode string, event *Envelope) {
	h.send(roomCode, event, nil)
}

// SendSignal relays a signaling payload. Targeted signals reach only the
// target's connections; untargeted signals reach everyone except the sender.
// Either way the sender never sees its own signal echoed back.
func (h *Hub) SendSignal(roomCode string, event *Envelope) {
	h.send(roomCode, event, func(username string) bool {
		if username == event.Sender {
			return false
		}
		return event.Target == "" || event.Target == username
	})
}

// SendToUser delivers to one member of one room, wherever it is connected.
// Used for best-effort notification push.
func (h *Hub) SendToUser(roomCode, username string, event *Envelope) {
	h.send(roomCode, event, func(member string) bool {
		return member == username
	})
}

func (h *Hub) send(roomCode string, event *Envelope, allow func(username string) bool) {
	r := h.getRoom(roomCode)
	if r == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Hub", "Failed to marshal event", map[string]interface{}{"error": err.Error()})
		return
	}

	// Holding the room lock keeps the membership snapshot consistent with
	// delivery: no message reaches a connection that is concurrently removed.
	// Delivery itself is a non-blocking channel send, so the lock is cheap.
	r.mu.Lock()
	defer r.mu.Unlock()

	for username, conns := range r.members {
		if allow != nil && !allow(username) {
			continue
		}
		for _, client := range conns {
			if ok := client.enqueue(data); !ok {
				// Slow or mid-teardown member. Drop it; the rest of the room
				// still gets the event.
				h.logger.Warn("Hub", "Send buffer full, dropping client", map[string]interface{}{"room": roomCode, "user": username})
			}
		}
	}
}

// PushToUsername delivers to every connection a user holds across all rooms.
// Best-effort notification push; an offline user simply gets nothing.
func (h *Hub) PushToUsername(username string, event *Envelope) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Hub", "Failed to marshal event", map[string]interface{}{"error": err.Error()})
		return
	}

	h.mu.RLock()
	rooms := make([]*room, 0, len(h.rooms))
	for _, r := range h.rooms {
		rooms = append(rooms, r)
	}
	h.mu.RUnlock()

	for _, r := range rooms {
		r.mu.Lock()
		for _, client := range r.members[username] {
			client.enqueue(data)
		}
		r.mu.Unlock()
	}
}

// MemberCount reports the live connection membership of a room.
func (h *Hub) MemberCount(roomCode string) int {
	r := h.getRoom(roomCode)
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, conns := range r.members {
		n += len(conns)
	}
	return n
}
