package ws

import (
	"log/slog"
	"sort"
	"sync"

	"roomchat/internal/models"
	"roomchat/internal/room"
)

const defaultBufferSize = 64

type Hub struct {
	// Map of connID -> outbound event channel
	conns map[string]chan models.ServerEvent

	// Map of room name -> broadcast group
	groups map[string]*room.Group[models.ServerEvent]

	bufferSize int
	log        *slog.Logger

	mu sync.RWMutex
}

func NewHub(log *slog.Logger, bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &Hub{
		conns:      make(map[string]chan models.ServerEvent),
		groups:     make(map[string]*room.Group[models.ServerEvent]),
		bufferSize: bufferSize,
		log:        log,
	}
}

// Register opens the outbound channel of a connection.
func (h *Hub) Register(connID string) chan models.ServerEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.conns[connID]; ok {
		return ch
	}
	ch := make(chan models.ServerEvent, h.bufferSize)
	h.conns[connID] = ch
	return ch
}

// Unregister closes the connection's channel and drops it from every group.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.conns[connID]; ok {
		close(ch)
		delete(h.conns, connID)
	}

	for name, g := range h.groups {
		g.Leave(connID)
		if g.Len() == 0 {
			delete(h.groups, name)
		}
	}
}

func (h *Hub) Subscribe(connID, roomName string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	g, ok := h.groups[roomName]
	if !ok {
		g = room.New(room.Config[models.ServerEvent]{
			ID:      roomName,
			Deliver: h.deliver,
		})
		h.groups[roomName] = g
	}
	g.Join(connID)
}

func (h *Hub) Unsubscribe(connID, roomName string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	g, ok := h.groups[roomName]
	if !ok {
		return
	}
	g.Leave(connID)
	if g.Len() == 0 {
		delete(h.groups, roomName)
	}
}

func (h *Hub) Emit(connID string, ev models.ServerEvent) {
	h.deliver(connID, "", ev)
}

func (h *Hub) EmitToRoom(roomName string, ev models.ServerEvent) {
	if g := h.group(roomName); g != nil {
		g.Broadcast(ev)
	}
}

func (h *Hub) EmitToRoomExcept(roomName, exceptConnID string, ev models.ServerEvent) {
	if g := h.group(roomName); g != nil {
		g.Broadcast(ev, exceptConnID)
	}
}

// Rooms returns the names of rooms with at least one subscriber.
func (h *Hub) Rooms() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.groups))
	for name := range h.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *Hub) group(roomName string) *room.Group[models.ServerEvent] {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.groups[roomName]
}

// deliver never blocks. The read lock is held across the send so that
// Unregister cannot close the channel underneath it.
func (h *Hub) deliver(receiverID string, roomName string, ev models.ServerEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ch, online := h.conns[receiverID]
	if !online {
		return
	}

	select {
	case ch <- ev:
	default:
		h.log.Warn("dropping event, send buffer full", "conn_id", receiverID, "room", roomName, "event", ev.Event)
	}
}
