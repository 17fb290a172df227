package room

import (
	"slices"
	"sync"
)

// DeliverFunc hands an event to one member of a group.
type DeliverFunc[E any] func(receiverID string, groupID string, ev E)

// Group is a named broadcast group: a member set plus the callback used to
// reach each member.
type Group[E any] struct {
	ID      string
	Members map[string]bool

	Deliver DeliverFunc[E]

	mux sync.RWMutex
}

type Config[E any] struct {
	ID      string
	Deliver DeliverFunc[E]
}

func New[E any](config Config[E]) *Group[E] {
	return &Group[E]{
		ID:      config.ID,
		Members: make(map[string]bool),
		Deliver: config.Deliver,
	}
}

func (g *Group[E]) Join(memberID string) {
	g.mux.Lock()
	defer g.mux.Unlock()
	g.Members[memberID] = true
}

func (g *Group[E]) Leave(memberID string) {
	g.mux.Lock()
	defer g.mux.Unlock()
	delete(g.Members, memberID)
}

func (g *Group[E]) Len() int {
	g.mux.RLock()
	defer g.mux.RUnlock()
	return len(g.Members)
}

// Broadcast delivers ev to every member except the listed ones.
func (g *Group[E]) Broadcast(ev E, except ...string) {
	g.mux.RLock()
	receivers := make([]string, 0, len(g.Members))
	for id := range g.Members {
		if !slices.Contains(except, id) {
			receivers = append(receivers, id)
		}
	}
	g.mux.RUnlock()

	if g.Deliver == nil {
		return
	}
	for _, id := range receivers {
		g.Deliver(id, g.ID, ev)
	}
}
