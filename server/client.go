package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/minaorangina/bluff/game"
	"github.com/minaorangina/bluff/protocol"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 1024

	sendBuffer = 16
)

var (
	ErrUnsupportedCommand = errors.New("unsupported command")
	ErrWrongPlayer        = errors.New("message sent for another player")
)

// client streams one player's view of a match over a websocket and feeds
// the player's actions to their engine
type client struct {
	conn  *websocket.Conn
	seat  *seat
	store game.Store
	log   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	send   chan protocol.OutboundMessage

	mu   sync.Mutex
	last *game.GameData
}

func newClient(ctx context.Context, conn *websocket.Conn, p *seat, store game.Store, logger *zap.Logger) *client {
	ctx, cancel := context.WithCancel(ctx)
	return &client{
		conn:   conn,
		seat:   p,
		store:  store,
		log:    logger.With(zap.String("game", p.session.RoomID), zap.Stringer("seat", p.session.Seat)),
		ctx:    ctx,
		cancel: cancel,
		send:   make(chan protocol.OutboundMessage, sendBuffer),
	}
}

// listen blocks until the peer goes away
func (c *client) listen() error {
	defer c.cancel()

	sub, err := c.store.Observe(c.ctx, c.seat.session.RoomID, c.update)
	if err != nil {
		c.conn.Close()
		return err
	}
	defer sub.Close()

	go c.writePump()
	c.update(c.seat.session.Engine.Snapshot())
	c.readPump()
	return nil
}

// update sends a snapshot unless the player has already seen a newer one
func (c *client) update(data game.GameData) {
	c.mu.Lock()
	prev := c.last
	if prev != nil && data.Version <= prev.Version {
		c.mu.Unlock()
		return
	}
	c.last = &data
	c.mu.Unlock()

	c.enqueue(protocol.BuildUpdateMessage(c.seat.playerID, c.seat.session.Seat, prev, data))
}

func (c *client) enqueue(msg protocol.OutboundMessage) {
	select {
	case c.send <- msg:
	case <-c.ctx.Done():
	}
}

func (c *client) sendError(err error) {
	c.enqueue(protocol.BuildErrorMessage(c.seat.playerID, c.seat.session.Seat, err))
}

func (c *client) readPump() {
	defer c.cancel()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		msg, err := protocol.DecodeInbound(data)
		if err != nil {
			c.sendError(err)
			continue
		}
		c.handle(msg)
	}
}

func (c *client) handle(msg protocol.InboundMessage) {
	if msg.PlayerID != "" && msg.PlayerID != c.seat.playerID {
		c.sendError(ErrWrongPlayer)
		return
	}

	engine := c.seat.session.Engine
	actor := c.seat.session.Seat

	var res game.SaveResult
	var err error
	switch msg.Command {
	case protocol.Start:
		res, err = engine.Start(c.ctx, actor)
	case protocol.SelectCard:
		res, err = engine.SelectCard(c.ctx, actor, msg.Card)
	case protocol.DeclareRoundCard:
		res, err = engine.DeclareRoundCard(c.ctx, actor, msg.Card)
	case protocol.PlayTurn:
		res, err = engine.PlayTurn(c.ctx, actor, msg.BluffCard)
	case protocol.Pass:
		res, err = engine.Pass(c.ctx, actor)
	case protocol.CallBluff:
		res, err = engine.CallBluff(c.ctx, actor)
	default:
		err = ErrUnsupportedCommand
	}
	if err != nil {
		c.sendError(err)
		return
	}

	go func() {
		if err := <-res; err != nil && !errors.Is(err, game.ErrStaleWrite) {
			c.log.Error("save failed", zap.Stringer("command", msg.Command), zap.Error(err))
			c.sendError(err)
		}
	}()
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.cancel()
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.cancel()
				return
			}
		}
	}
}
