package presence

import (
	"strings"

	"roomchat/internal/models"

	"github.com/c-pro/geche"
	"github.com/samber/lo"
)

// Store is the registry of joined connections keyed by connection ID.
// All mutations happen inside an exclusive locker transaction, so the
// duplicate check and the insert of AddUser are atomic.
type Store struct {
	users *geche.Locker[string, models.User]
}

func NewStore() *Store {
	return &Store{
		users: geche.NewLocker[string, models.User](geche.NewMapCache[string, models.User]()),
	}
}

// Normalize trims and lowercases a username or room name.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// AddUser registers connectionID as username in room.
func (s *Store) AddUser(connectionID, username, room string) (models.User, error) {
	username = Normalize(username)
	room = Normalize(room)
	if username == "" || room == "" {
		return models.User{}, models.ErrValidation
	}

	tx := s.users.Lock()
	defer tx.Unlock()

	if _, err := tx.Get(connectionID); err == nil {
		return models.User{}, models.ErrAlreadyJoined
	}

	for _, u := range tx.Snapshot() {
		if u.Room == room && u.Username == username {
			return models.User{}, models.ErrDuplicateUser
		}
	}

	user := models.User{ID: connectionID, Username: username, Room: room}
	tx.Set(connectionID, user)
	return user, nil
}

// RemoveUser deletes and returns the user for connectionID. Removing an
// unknown connection is not an error.
func (s *Store) RemoveUser(connectionID string) (models.User, bool) {
	tx := s.users.Lock()
	defer tx.Unlock()

	user, err := tx.Get(connectionID)
	if err != nil {
		return models.User{}, false
	}
	_ = tx.Del(connectionID)
	return user, true
}

func (s *Store) GetUser(connectionID string) (models.User, bool) {
	tx := s.users.RLock()
	defer tx.Unlock()

	user, err := tx.Get(connectionID)
	if err != nil {
		return models.User{}, false
	}
	return user, true
}

// GetUsersInRoom returns a snapshot of the users in room, in no particular order.
func (s *Store) GetUsersInRoom(room string) []models.User {
	room = Normalize(room)

	tx := s.users.RLock()
	snapshot := tx.Snapshot()
	tx.Unlock()

	return lo.Filter(lo.Values(snapshot), func(u models.User, _ int) bool {
		return u.Room == room
	})
}

func (s *Store) Len() int {
	tx := s.users.RLock()
	defer tx.Unlock()
	return tx.Len()
}
