package session

import (
	"log/slog"
	"sync"

	"roomchat/internal/messages"
	"roomchat/internal/models"
	"roomchat/internal/presence"
)

type State int

const (
	StateUnjoined State = iota
	StateJoined
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnjoined:
		return "unjoined"
	case StateJoined:
		return "joined"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session is the state machine of a single connection:
// unjoined -> joined -> closed. Operations of one session are expected to
// be called sequentially by its connection; the mutex only guards against
// Disconnect racing a late handler during teardown.
type Session struct {
	coordinator *Coordinator
	connID      string
	state       State
	log         *slog.Logger

	mu sync.Mutex
}

func (s *Session) ConnID() string {
	return s.connID
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Join registers the connection as username in room and announces it.
// On error the session stays unjoined and nothing is broadcast.
func (s *Session) Join(username, room string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateClosed:
		return models.ErrSessionClosed
	case StateJoined:
		return models.ErrAlreadyJoined
	}

	c := s.coordinator
	unlock := c.lockRoom(presence.Normalize(room))
	defer unlock()

	user, err := c.store.AddUser(s.connID, username, room)
	if err != nil {
		s.log.Debug("join rejected", "username", username, "room", room, "error", err)
		return err
	}
	s.state = StateJoined

	c.bus.Subscribe(s.connID, user.Room)
	c.bus.Emit(s.connID, models.NewMessageEvent(c.factory.System(messages.Welcome(user.Username))))
	c.bus.EmitToRoomExcept(user.Room, s.connID, models.NewMessageEvent(c.factory.System(messages.Joined(user.Username))))
	c.broadcastRoster(user.Room)

	s.log.Info("user joined", "username", user.Username, "room", user.Room)
	return nil
}

// SendMessage relays text to every member of the caller's room, the caller
// included.
func (s *Session) SendMessage(text string) error {
	user, err := s.joinedUser()
	if err != nil {
		return err
	}

	c := s.coordinator
	if c.filter.IsProfane(text) {
		s.log.Debug("message rejected by filter", "room", user.Room)
		return models.ErrProfanity
	}
	if c.sanitize != nil {
		text = c.sanitize(text)
	}

	c.bus.EmitToRoom(user.Room, models.NewMessageEvent(c.factory.Generate(user.Username, text)))
	return nil
}

// SendLocation relays a map link for the coordinates to the caller's room.
func (s *Session) SendLocation(latitude, longitude float64) error {
	user, err := s.joinedUser()
	if err != nil {
		return err
	}

	c := s.coordinator
	c.bus.EmitToRoom(user.Room, models.NewLocationEvent(c.factory.Location(user.Username, latitude, longitude)))
	return nil
}

// Disconnect closes the session. If it was joined, the remaining members of
// the room get a departure notice and the updated roster. Calling it more
// than once is a no-op.
func (s *Session) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return
	}
	s.state = StateClosed

	c := s.coordinator
	current, ok := c.store.GetUser(s.connID)
	if !ok {
		return
	}
	unlock := c.lockRoom(current.Room)
	defer unlock()

	user, ok := c.store.RemoveUser(s.connID)
	if !ok {
		return
	}
	c.bus.Unsubscribe(s.connID, user.Room)
	c.bus.EmitToRoom(user.Room, models.NewMessageEvent(c.factory.System(messages.Left(user.Username))))
	c.broadcastRoster(user.Room)

	s.log.Info("user left", "username", user.Username, "room", user.Room)
}

func (s *Session) joinedUser() (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateClosed:
		return models.User{}, models.ErrSessionClosed
	case StateUnjoined:
		return models.User{}, models.ErrNotJoined
	}

	// The store is the source of truth for the caller's identity.
	user, ok := s.coordinator.store.GetUser(s.connID)
	if !ok {
		return models.User{}, models.ErrNotJoined
	}
	return user, nil
}
