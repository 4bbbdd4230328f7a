package transport

import (
	"context"
	"time"

	ws "github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/config"
	"github.com/cory-johannsen/warband/internal/game/session"
	"github.com/cory-johannsen/warband/internal/protocol"
)

// conn wraps one upgraded connection. readLoop and writeLoop each run on
// their own goroutine; gorilla allows one concurrent reader and one
// concurrent writer.
type conn struct {
	ws           *ws.Conn
	readTimeout  time.Duration
	writeTimeout time.Duration
	pingPeriod   time.Duration
	logger       *zap.Logger
}

func newConn(c *ws.Conn, cfg config.WebSocketConfig, logger *zap.Logger) *conn {
	if cfg.MaxMessageBytes > 0 {
		c.SetReadLimit(cfg.MaxMessageBytes)
	}
	return &conn{
		ws:           c,
		readTimeout:  cfg.ReadTimeout,
		writeTimeout: cfg.WriteTimeout,
		pingPeriod:   cfg.ReadTimeout * 9 / 10,
		logger:       logger,
	}
}

func (c *conn) extendRead() {
	if c.readTimeout > 0 {
		_ = c.ws.SetReadDeadline(time.Now().Add(c.readTimeout))
	}
}

func (c *conn) writeDeadline() time.Time {
	if c.writeTimeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(c.writeTimeout)
}

// readLoop decodes inbound frames and hands every envelope to h in frame
// order. Malformed frames are dropped.
//
// Postcondition: Returns the read error that ended the connection.
func (c *conn) readLoop(ctx context.Context, sess *session.Session, h Handler) error {
	c.extendRead()
	c.ws.SetPongHandler(func(string) error {
		c.extendRead()
		return nil
	})
	for {
		_, frame, err := c.ws.ReadMessage()
		if err != nil {
			return err
		}
		c.extendRead()
		envs, err := protocol.Decode(frame)
		if err != nil {
			c.logger.Debug("dropping malformed frame",
				zap.Int("bytes", len(frame)),
				zap.Error(err),
			)
			continue
		}
		for _, env := range envs {
			h.Handle(ctx, sess, env)
		}
	}
}

// writeLoop writes everything queued on sess as one frame per wakeup and
// pings the client between frames. When the queue closes it sends a close
// frame and closes the connection, which ends readLoop.
func (c *conn) writeLoop(sess *session.Session) {
	defer c.ws.Close()

	var ping <-chan time.Time
	if c.pingPeriod > 0 {
		t := time.NewTicker(c.pingPeriod)
		defer t.Stop()
		ping = t.C
	}
	out := sess.Outbound()
	for {
		select {
		case env, ok := <-out:
			if !ok {
				_ = c.ws.WriteControl(ws.CloseMessage,
					ws.FormatCloseMessage(ws.CloseNormalClosure, ""), c.writeDeadline())
				return
			}
			batch := sess.Drain(env)
			frame, err := protocol.Encode(batch)
			if err != nil {
				c.logger.Error("encoding frame", zap.Int("envelopes", len(batch)), zap.Error(err))
				continue
			}
			_ = c.ws.SetWriteDeadline(c.writeDeadline())
			if err := c.ws.WriteMessage(ws.TextMessage, frame); err != nil {
				c.logger.Debug("writing frame", zap.Error(err))
				return
			}
		case <-ping:
			if err := c.ws.WriteControl(ws.PingMessage, nil, c.writeDeadline()); err != nil {
				c.logger.Debug("writing ping", zap.Error(err))
				return
			}
		}
	}
}
