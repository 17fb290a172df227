package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"roomchat/internal/models"
)

type rosterSource interface {
	Roster(room string) models.RoomRoster
}

type presenceCounter interface {
	Len() int
}

type connStats interface {
	Connections() int
	Rooms() []string
}

type API struct {
	rooms    rosterSource
	presence presenceCounter
	conns    connStats
	log      *slog.Logger
}

func New(rooms rosterSource, presence presenceCounter, conns connStats, log *slog.Logger) *API {
	return &API{rooms: rooms, presence: presence, conns: conns, log: log}
}

type HealthResponse struct {
	Status      string `json:"status"`
	Users       int    `json:"users"`
	Connections int    `json:"connections"`
	Rooms       int    `json:"rooms"`
}

// RoomHandler returns the current roster of the room named in the path.
func (a *API) RoomHandler(w http.ResponseWriter, r *http.Request) {
	room := r.PathValue("room")
	a.writeJSON(w, a.rooms.Roster(room))
}

func (a *API) HealthHandler(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, HealthResponse{
		Status:      "ok",
		Users:       a.presence.Len(),
		Connections: a.conns.Connections(),
		Rooms:       len(a.conns.Rooms()),
	})
}

func (a *API) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.log.Error("failed to encode response", "error", err)
	}
}
