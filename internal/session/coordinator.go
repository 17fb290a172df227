package session

import (
	"log/slog"
	"sync"

	"roomchat/internal/messages"
	"roomchat/internal/models"
	"roomchat/internal/presence"
	"roomchat/internal/roster"
)

// Broadcaster delivers server events to connections and room groups.
type Broadcaster interface {
	Subscribe(connID, room string)
	Unsubscribe(connID, room string)
	Emit(connID string, ev models.ServerEvent)
	EmitToRoom(room string, ev models.ServerEvent)
	EmitToRoomExcept(room, exceptConnID string, ev models.ServerEvent)
}

// ProfanityFilter decides whether a chat text may be relayed.
type ProfanityFilter interface {
	IsProfane(text string) bool
}

// FilterFunc adapts a plain function to ProfanityFilter.
type FilterFunc func(text string) bool

func (f FilterFunc) IsProfane(text string) bool {
	return f(text)
}

type Config struct {
	Store       *presence.Store
	Broadcaster Broadcaster
	Filter      ProfanityFilter
	// Sanitize, when set, rewrites chat text after it passed the filter.
	Sanitize func(string) string
	Logger   *slog.Logger
}

// Coordinator owns the shared collaborators of every session.
type Coordinator struct {
	store     *presence.Store
	directory *roster.Directory
	factory   *messages.Factory
	bus       Broadcaster
	filter    ProfanityFilter
	sanitize  func(string) string
	log       *slog.Logger

	// Membership changes of one room, together with the roster broadcast
	// that follows them, run under that room's lock.
	roomsMu sync.Mutex
	rooms   map[string]*roomLock
}

type roomLock struct {
	mu   sync.Mutex
	refs int
}

func NewCoordinator(cfg Config) *Coordinator {
	filter := cfg.Filter
	if filter == nil {
		filter = FilterFunc(func(string) bool { return false })
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Coordinator{
		store:     cfg.Store,
		directory: roster.NewDirectory(cfg.Store),
		factory:   messages.NewFactory(),
		bus:       cfg.Broadcaster,
		filter:    filter,
		sanitize:  cfg.Sanitize,
		log:       log,
		rooms:     make(map[string]*roomLock),
	}
}

// NewSession starts an unjoined session for the given connection.
func (c *Coordinator) NewSession(connID string) *Session {
	return &Session{
		coordinator: c,
		connID:      connID,
		state:       StateUnjoined,
		log:         c.log.With("conn_id", connID),
	}
}

// Roster returns the current roster of room.
func (c *Coordinator) Roster(room string) models.RoomRoster {
	return c.directory.Roster(room)
}

func (c *Coordinator) broadcastRoster(room string) {
	c.bus.EmitToRoom(room, models.NewRoomDataEvent(c.directory.Roster(room)))
}

// lockRoom acquires the membership lock of room and returns its release.
// Locks are dropped from the map once nobody holds or waits for them.
func (c *Coordinator) lockRoom(room string) func() {
	c.roomsMu.Lock()
	l, ok := c.rooms[room]
	if !ok {
		l = &roomLock{}
		c.rooms[room] = l
	}
	l.refs++
	c.roomsMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		c.roomsMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(c.rooms, room)
		}
		c.roomsMu.Unlock()
	}
}
