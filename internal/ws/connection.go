package ws

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"roomchat/internal/models"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

type wsConnection interface {
	Close() error
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
}

type eventHub interface {
	Register(connID string) chan models.ServerEvent
	Unregister(connID string)
}

type clientSession interface {
	Join(username, room string) error
	SendMessage(text string) error
	SendLocation(latitude, longitude float64) error
	Disconnect()
}

type Connection struct {
	ws           wsConnection
	hub          eventHub
	session      clientSession
	codec        Codec
	connID       string
	pingInterval time.Duration
	log          *slog.Logger
	fromClient   chan models.ClientEvent
	fromServer   chan models.ServerEvent
	errorCh      chan error
}

func NewConnection(
	hub eventHub,
	ws wsConnection,
	connID string,
	session clientSession,
	codec Codec,
	pingInterval time.Duration,
	log *slog.Logger,
) *Connection {
	return &Connection{
		ws:           ws,
		hub:          hub,
		session:      session,
		codec:        codec,
		connID:       connID,
		pingInterval: pingInterval,
		log:          log.With("conn_id", connID),
		fromClient:   make(chan models.ClientEvent),
		fromServer:   hub.Register(connID),
		errorCh:      make(chan error, 2),
	}
}

// Handle runs the connection until the socket fails or ctx is done. The
// session is disconnected before the outbound channel is released.
func (c *Connection) Handle(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		c.session.Disconnect()
		c.hub.Unregister(c.connID)
		close(c.fromClient)
		close(c.errorCh)
	}()

	var wg sync.WaitGroup
	wg.Go(func() {
		c.errorCh <- c.pumpMessages(ctx)
		cancel()
	})

	wg.Go(func() {
		c.errorCh <- c.mainLoop(ctx)
		cancel()
	})

	var err error
	select {
	case err = <-c.errorCh:
	case <-ctx.Done():
	}
	_ = c.ws.Close()
	wg.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

func (c *Connection) pumpMessages(ctx context.Context) error {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return err
		}

		var ev models.ClientEvent
		if err := c.codec.Decode(data, &ev); err != nil {
			c.log.Warn("skipping undecodable frame", "error", err)
			continue
		}

		select {
		case c.fromClient <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Connection) mainLoop(ctx context.Context) error {
	var tick <-chan time.Time
	if c.pingInterval > 0 {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case ev := <-c.fromClient:
			if err := c.processClientEvent(ev); err != nil {
				return err
			}
		case ev, ok := <-c.fromServer:
			if !ok {
				return nil
			}
			if err := c.write(ev); err != nil {
				return err
			}
		case <-tick:
			if err := c.ping(); err != nil {
				return err
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// processClientEvent runs one client event against the session and answers
// with an ack. Events the session queued for this connection are written
// before the ack.
func (c *Connection) processClientEvent(ev models.ClientEvent) error {
	var err error
	switch ev.Event {
	case models.ClientEventJoin:
		if ev.Join == nil {
			err = models.ErrValidation
			break
		}
		err = c.session.Join(ev.Join.Username, ev.Join.Room)
	case models.ClientEventSendMessage:
		err = c.session.SendMessage(ev.Text)
	case models.ClientEventSendLocation:
		var loc models.LocationPayload
		if ev.Location != nil {
			loc = *ev.Location
		}
		err = c.session.SendLocation(loc.Latitude, loc.Longitude)
	default:
		err = models.ErrUnknownEvent
	}

	if err != nil {
		c.log.Debug("client event failed", "event", ev.Event, "error", err)
	}

	if err := c.flush(); err != nil {
		return err
	}

	if ev.AckID == 0 {
		return nil
	}
	return c.write(models.NewAck(ev.AckID, err))
}

func (c *Connection) flush() error {
	for {
		select {
		case ev, ok := <-c.fromServer:
			if !ok {
				return nil
			}
			if err := c.write(ev); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (c *Connection) write(ev models.ServerEvent) error {
	data, err := c.codec.Encode(ev)
	if err != nil {
		c.log.Error("failed to encode event", "event", ev.Event, "error", err)
		return nil
	}
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(c.codec.FrameType(), data)
}

func (c *Connection) ping() error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.PingMessage, nil)
}
