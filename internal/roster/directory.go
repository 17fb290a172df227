package roster

import (
	"slices"
	"strings"

	"roomchat/internal/models"
	"roomchat/internal/presence"
)

type userLister interface {
	GetUsersInRoom(room string) []models.User
}

// Directory derives room rosters from the presence store.
type Directory struct {
	users userLister
}

func NewDirectory(users userLister) *Directory {
	return &Directory{users: users}
}

// Roster returns the users of room sorted ascending by username.
// An empty room yields an empty, non-nil user list.
func (d *Directory) Roster(room string) models.RoomRoster {
	users := d.users.GetUsersInRoom(room)
	if users == nil {
		users = []models.User{}
	}

	slices.SortStableFunc(users, func(a, b models.User) int {
		return strings.Compare(a.Username, b.Username)
	})

	return models.RoomRoster{
		Room:  presence.Normalize(room),
		Users: users,
	}
}
