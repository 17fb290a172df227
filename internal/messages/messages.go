package messages

import (
	"fmt"
	"strconv"
	"time"

	"roomchat/internal/models"
)

const mapsURL = "https://google.com/maps/?q="

// Factory builds timestamped messages.
type Factory struct {
	now func() time.Time
}

func NewFactory() *Factory {
	return &Factory{now: time.Now}
}

// Generate builds a message from username. An empty username marks the
// message as system-originated.
func (f *Factory) Generate(username, text string) models.Message {
	if username == "" {
		username = models.SystemUsername
	}
	return models.Message{
		Username:  username,
		Text:      text,
		CreatedAt: f.now().UnixMilli(),
	}
}

func (f *Factory) System(text string) models.Message {
	return f.Generate(models.SystemUsername, text)
}

// Location builds a map link for the coordinates. Out of range values are
// passed through as is.
func (f *Factory) Location(username string, latitude, longitude float64) models.LocationMessage {
	return models.LocationMessage{
		Username:  username,
		URL:       mapsURL + formatCoord(latitude) + "," + formatCoord(longitude),
		CreatedAt: f.now().UnixMilli(),
	}
}

func Welcome(username string) string {
	return fmt.Sprintf("Welcome, %s!", username)
}

func Joined(username string) string {
	return fmt.Sprintf("%s has joined.", username)
}

func Left(username string) string {
	return fmt.Sprintf("%s has left the room.", username)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
