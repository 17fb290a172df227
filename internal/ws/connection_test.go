package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"roomchat/internal/models"

	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type frame struct {
	kind int
	data []byte
}

type mockWS struct {
	readCh      chan []byte
	writeCh     chan frame
	closeCh     chan struct{}
	closeOnce   sync.Once
	closed      bool
	errToReturn error
}

func newMockWS() *mockWS {
	return &mockWS{
		readCh:  make(chan []byte, 10),
		writeCh: make(chan frame, 20),
		closeCh: make(chan struct{}),
	}
}

func (m *mockWS) Close() error {
	m.closeOnce.Do(func() {
		m.closed = true
		close(m.closeCh)
	})
	return nil
}

func (m *mockWS) SetWriteDeadline(time.Time) error { return nil }

func (m *mockWS) WriteMessage(kind int, data []byte) error {
	if m.errToReturn != nil {
		return m.errToReturn
	}
	m.writeCh <- frame{kind: kind, data: data}
	return nil
}

func (m *mockWS) ReadMessage() (int, []byte, error) {
	if m.errToReturn != nil {
		return 0, nil, m.errToReturn
	}
	select {
	case data, ok := <-m.readCh:
		if !ok {
			return 0, nil, errors.New("closed")
		}
		return websocket.TextMessage, data, nil
	case <-m.closeCh:
		return 0, nil, errors.New("connection closed")
	}
}

func (m *mockWS) send(t *testing.T, ev models.ClientEvent) {
	t.Helper()
	data, err := json.Marshal(ev)
	require.NoError(t, err)
	m.readCh <- data
}

func (m *mockWS) next(t *testing.T) models.ServerEvent {
	t.Helper()
	select {
	case f := <-m.writeCh:
		require.Equal(t, websocket.TextMessage, f.kind)
		var ev models.ServerEvent
		require.NoError(t, json.Unmarshal(f.data, &ev))
		return ev
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for a written frame")
		return models.ServerEvent{}
	}
}

type mockHub struct {
	registerCh   chan string
	unregisterCh chan string
	userChans    map[string]chan models.ServerEvent
}

func newMockHub() *mockHub {
	return &mockHub{
		registerCh:   make(chan string, 10),
		unregisterCh: make(chan string, 10),
		userChans:    make(map[string]chan models.ServerEvent),
	}
}

func (m *mockHub) Register(connID string) chan models.ServerEvent {
	m.registerCh <- connID
	ch := make(chan models.ServerEvent, 10)
	m.userChans[connID] = ch
	return ch
}

func (m *mockHub) Unregister(connID string) {
	m.unregisterCh <- connID
	if ch, ok := m.userChans[connID]; ok {
		close(ch)
		delete(m.userChans, connID)
	}
}

// mockSession answers from canned errors and pushes a welcome event onto
// the hub channel on join, like the real coordinator does.
type mockSession struct {
	mu           sync.Mutex
	calls        []string
	disconnected bool
	joinErr      error
	out          chan models.ServerEvent
}

func (s *mockSession) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *mockSession) Join(username, room string) error {
	s.record("join:" + username + "@" + room)
	if s.joinErr != nil {
		return s.joinErr
	}
	s.out <- models.NewMessageEvent(models.Message{Username: models.SystemUsername, Text: "Welcome, " + username + "!"})
	return nil
}

func (s *mockSession) SendMessage(text string) error {
	s.record("send:" + text)
	return models.ErrNotJoined
}

func (s *mockSession) SendLocation(latitude, longitude float64) error {
	s.record("location")
	return nil
}

func (s *mockSession) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disconnected = true
}

func startConnection(t *testing.T) (*mockHub, *mockWS, *mockSession, context.CancelFunc, chan error) {
	t.Helper()
	hub := newMockHub()
	ws := newMockWS()
	sess := &mockSession{}
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	conn := NewConnection(hub, ws, "user1", sess, CodecFor(""), 0, log)
	require.NotNil(t, conn)
	sess.out = hub.userChans["user1"]

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- conn.Handle(ctx)
	}()
	return hub, ws, sess, cancel, done
}

func TestConnection_Lifecycle(t *testing.T) {
	hub, ws, sess, cancel, done := startConnection(t)
	defer cancel()

	select {
	case id := <-hub.registerCh:
		require.Equal(t, "user1", id)
	default:
		t.Fatal("Register not called on NewConnection")
	}

	// 1. Join: the queued welcome is written before the ack.
	ws.send(t, models.ClientEvent{
		Event: models.ClientEventJoin,
		AckID: 1,
		Join:  &models.JoinPayload{Username: "alice", Room: "general"},
	})
	ev := ws.next(t)
	require.Equal(t, models.ServerEventMessage, ev.Event)
	require.Equal(t, "Welcome, alice!", ev.Message.Text)

	ack := ws.next(t)
	require.Equal(t, models.ServerEventAck, ack.Event)
	require.Equal(t, int64(1), ack.AckID)
	require.Empty(t, ack.Error)

	// 2. Failing operation acks the error, the connection stays up.
	ws.send(t, models.ClientEvent{Event: models.ClientEventSendMessage, AckID: 2, Text: "hello"})
	ack = ws.next(t)
	require.Equal(t, int64(2), ack.AckID)
	require.Equal(t, models.ErrNotJoined.Error(), ack.Error)

	// 3. Unknown events are answered, not fatal.
	ws.send(t, models.ClientEvent{Event: "dance", AckID: 3})
	ack = ws.next(t)
	require.Equal(t, models.ErrUnknownEvent.Error(), ack.Error)

	// 4. Server events are written as they arrive.
	hub.userChans["user1"] <- models.NewRoomDataEvent(models.RoomRoster{Room: "general", Users: []models.User{}})
	ev = ws.next(t)
	require.Equal(t, models.ServerEventRoomData, ev.Event)
	require.Equal(t, "general", ev.RoomData.Room)

	// 5. Undecodable frames are skipped.
	ws.readCh <- []byte("{not json")
	ws.send(t, models.ClientEvent{Event: models.ClientEventSendLocation, AckID: 4})
	ack = ws.next(t)
	require.Equal(t, int64(4), ack.AckID)
	require.Empty(t, ack.Error)

	// 6. Stop
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Handle did not return after cancel")
	}

	select {
	case id := <-hub.unregisterCh:
		require.Equal(t, "user1", id)
	default:
		t.Error("Unregister not called")
	}

	require.True(t, ws.closed, "WS Close not called")
	require.True(t, sess.disconnected, "session not disconnected")
	require.Equal(t, []string{"join:alice@general", "send:hello", "location"}, sess.calls)
}

func TestConnection_JoinWithoutPayload(t *testing.T) {
	_, ws, sess, cancel, _ := startConnection(t)
	defer cancel()

	ws.send(t, models.ClientEvent{Event: models.ClientEventJoin, AckID: 7})
	ack := ws.next(t)
	require.Equal(t, models.ErrValidation.Error(), ack.Error)
	require.Empty(t, sess.calls)
}

func TestConnection_WSError(t *testing.T) {
	hub := newMockHub()
	ws := newMockWS()
	sess := &mockSession{}

	conn := NewConnection(hub, ws, "user2", sess, CodecFor(ProtocolJSON), 0, logs.GetLoggerFromLevel(slog.LevelDebug))

	// Simulate ReadMessage error immediately
	ws.errToReturn = errors.New("read error")

	done := make(chan error)
	go func() {
		done <- conn.Handle(context.Background())
	}()

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("Handle did not return on error")
	}

	require.True(t, ws.closed, "WS Close not called")
	require.True(t, sess.disconnected, "session not disconnected")
}
