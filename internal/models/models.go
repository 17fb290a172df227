package models

import "errors"

// SystemUsername is attributed to messages not sent by any connected user.
const SystemUsername = "Admin"

var (
	ErrValidation    = errors.New("Username and Room are required")
	ErrDuplicateUser = errors.New("User already exists in this room")
	ErrProfanity     = errors.New("Profanity is not allowed")
	ErrNotJoined     = errors.New("You must join a room first")
	ErrAlreadyJoined = errors.New("Already joined a room")
	ErrSessionClosed = errors.New("Session is closed")
	ErrUnknownEvent  = errors.New("unknown event")
)

// User is a connection's identity inside a room.
type User struct {
	ID       string `json:"id" msgpack:"id"`
	Username string `json:"username" msgpack:"username"`
	Room     string `json:"room" msgpack:"room"`
}

// Message represents a chat message.
type Message struct {
	Username  string `json:"username" msgpack:"username"`
	Text      string `json:"text" msgpack:"text"`
	CreatedAt int64  `json:"createdAt" msgpack:"createdAt"` // Unix timestamp (milliseconds)
}

// LocationMessage carries a link to a map pinned at the sender's position.
type LocationMessage struct {
	Username  string `json:"username" msgpack:"username"`
	URL       string `json:"url" msgpack:"url"`
	CreatedAt int64  `json:"createdAt" msgpack:"createdAt"` // Unix timestamp (milliseconds)
}

// RoomRoster is the sorted list of users currently in a room.
type RoomRoster struct {
	Room  string `json:"room" msgpack:"room"`
	Users []User `json:"users" msgpack:"users"`
}

type JoinPayload struct {
	Username string `json:"username" msgpack:"username"`
	Room     string `json:"room" msgpack:"room"`
}

type LocationPayload struct {
	Latitude  float64 `json:"latitude" msgpack:"latitude"`
	Longitude float64 `json:"longitude" msgpack:"longitude"`
}

// ClientEvent represents an event sent from the client to the server.
// AckID, when set, is echoed back in the matching ack event.
type ClientEvent struct {
	Event    ClientEventType  `json:"event" msgpack:"event"`
	AckID    int64            `json:"ackId,omitempty" msgpack:"ackId,omitempty"`
	Join     *JoinPayload     `json:"join,omitempty" msgpack:"join,omitempty"`
	Text     string           `json:"text,omitempty" msgpack:"text,omitempty"`
	Location *LocationPayload `json:"location,omitempty" msgpack:"location,omitempty"`
}

// ServerEvent represents an event sent to the client.
type ServerEvent struct {
	Event           ServerEventType  `json:"event" msgpack:"event"`
	AckID           int64            `json:"ackId,omitempty" msgpack:"ackId,omitempty"`
	Error           string           `json:"error,omitempty" msgpack:"error,omitempty"`
	Message         *Message         `json:"message,omitempty" msgpack:"message,omitempty"`
	LocationMessage *LocationMessage `json:"locationMessage,omitempty" msgpack:"locationMessage,omitempty"`
	RoomData        *RoomRoster      `json:"roomData,omitempty" msgpack:"roomData,omitempty"`
}

type ClientEventType string

const (
	ClientEventJoin         ClientEventType = "join"
	ClientEventSendMessage  ClientEventType = "sendMessage"
	ClientEventSendLocation ClientEventType = "sendLocation"
)

type ServerEventType string

const (
	ServerEventAck             ServerEventType = "ack"
	ServerEventMessage         ServerEventType = "message"
	ServerEventLocationMessage ServerEventType = "locationMessage"
	ServerEventRoomData        ServerEventType = "roomData"
)

func NewMessageEvent(m Message) ServerEvent {
	return ServerEvent{Event: ServerEventMessage, Message: &m}
}

func NewLocationEvent(m LocationMessage) ServerEvent {
	return ServerEvent{Event: ServerEventLocationMessage, LocationMessage: &m}
}

func NewRoomDataEvent(r RoomRoster) ServerEvent {
	return ServerEvent{Event: ServerEventRoomData, RoomData: &r}
}

// NewAck answers the client event with the given ack id. A nil err
// acknowledges success.
func NewAck(ackID int64, err error) ServerEvent {
	ev := ServerEvent{Event: ServerEventAck, AckID: ackID}
	if err != nil {
		ev.Error = err.Error()
	}
	return ev
}
