package ws

import (
	"log/slog"
	"testing"
	"time"

	"roomchat/internal/models"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, ch chan models.ServerEvent) models.ServerEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
		return models.ServerEvent{}
	}
}

func requireEmpty(t *testing.T, ch chan models.ServerEvent) {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if ok {
			t.Fatalf("unexpected event %+v", ev)
		}
	default:
	}
}

func TestHub_Lifecycle(t *testing.T) {
	h := NewHub(logs.GetLoggerFromLevel(slog.LevelDebug), 10)

	ch1 := h.Register("c1")
	ch2 := h.Register("c2")
	ch3 := h.Register("c3")
	require.NotNil(t, ch1)
	require.Equal(t, 3, h.Connections())

	h.Subscribe("c1", "general")
	h.Subscribe("c2", "general")
	h.Subscribe("c3", "random")
	require.Equal(t, []string{"general", "random"}, h.Rooms())

	msg := models.NewMessageEvent(models.Message{Username: "alice", Text: "hello"})
	h.EmitToRoom("general", msg)
	require.Equal(t, "hello", recv(t, ch1).Message.Text)
	require.Equal(t, "hello", recv(t, ch2).Message.Text)
	requireEmpty(t, ch3)

	h.EmitToRoomExcept("general", "c1", msg)
	recv(t, ch2)
	requireEmpty(t, ch1)

	h.Emit("c3", msg)
	recv(t, ch3)

	// Unknown room and connection are silent no-ops.
	h.EmitToRoom("nowhere", msg)
	h.Emit("ghost", msg)

	h.Unsubscribe("c3", "random")
	require.Equal(t, []string{"general"}, h.Rooms())

	h.Unregister("c1")
	_, ok := <-ch1
	require.False(t, ok, "channel should be closed after unregister")

	h.EmitToRoom("general", msg)
	recv(t, ch2)

	h.Unregister("c2")
	require.Empty(t, h.Rooms())
	require.Equal(t, 1, h.Connections())
}

func TestHub_FullBufferDrops(t *testing.T) {
	h := NewHub(logs.GetLoggerFromLevel(slog.LevelDebug), 1)
	ch := h.Register("c1")

	ev := models.NewMessageEvent(models.Message{Text: "x"})
	h.Emit("c1", ev)
	h.Emit("c1", ev) // dropped, must not block

	recv(t, ch)
	requireEmpty(t, ch)
}
