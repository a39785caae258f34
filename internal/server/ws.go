package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/park285/simple-ai-chess/internal/session"
	"github.com/park285/simple-ai-chess/pkg/chessdto"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	wsWriteTimeout = 5 * time.Second
	wsPingTimeout  = 5 * time.Second
	wsReplyBuffer  = 4
)

// handleWS pushes a state message for every update of the caller's session and
// accepts move/restart/state requests. Successful moves are answered by the update
// stream itself; only rejections get a direct reply.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		s.logger.Warn("ws_accept_failed", zap.String("session_id", sess.ID), zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusInternalError, "unexpected close")
	conn.SetReadLimit(maxBodyBytes)

	logger := s.logger.With(zap.String("session_id", sess.ID))
	logger.Info("ws_connected")
	defer logger.Info("ws_disconnected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	updates, unsubscribe := sess.Subscribe()
	defer unsubscribe()

	replies := make(chan chessdto.ServerMessage, wsReplyBuffer)
	go s.readLoop(ctx, cancel, conn, sess, replies, logger)

	if err := s.writeMessage(ctx, conn, s.stateMessage(sess)); err != nil {
		logger.Debug("ws_write_failed", zap.Error(err))
		return
	}

	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "")
			return
		case u, ok := <-updates:
			if !ok {
				_ = conn.Close(websocket.StatusGoingAway, "session closed")
				return
			}
			st := s.stateOf(sess, u.Snapshot)
			if err := s.writeMessage(ctx, conn, chessdto.ServerMessage{Type: chessdto.MsgState, State: &st}); err != nil {
				logger.Debug("ws_write_failed", zap.Error(err))
				return
			}
		case msg := <-replies:
			if err := s.writeMessage(ctx, conn, msg); err != nil {
				logger.Debug("ws_write_failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			pingCtx, pingCancel := context.WithTimeout(ctx, wsPingTimeout)
			err := conn.Ping(pingCtx)
			pingCancel()
			if err != nil {
				logger.Warn("ws_ping_failed", zap.Error(err))
				_ = conn.Close(websocket.StatusGoingAway, "ping failure")
				return
			}
		}
	}
}

func (s *Server) readLoop(
	ctx context.Context,
	cancel context.CancelFunc,
	conn *websocket.Conn,
	sess *session.Session,
	replies chan<- chessdto.ServerMessage,
	logger *zap.Logger,
) {
	defer cancel()
	for {
		var msg chessdto.ClientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if status := websocket.CloseStatus(err); status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && !errors.Is(err, context.Canceled) {
				logger.Debug("ws_read_failed", zap.Error(err))
			}
			return
		}

		var reply *chessdto.ServerMessage
		switch msg.Type {
		case chessdto.MsgMove:
			snap, err := sess.Game().AttemptMove(msg.From, msg.To)
			if err != nil {
				de := s.pres.Formatter().Error(err, msg.From, msg.To)
				st := s.stateOf(sess, snap)
				reply = &chessdto.ServerMessage{Type: chessdto.MsgError, State: &st, Error: &de}
			}
		case chessdto.MsgRestart:
			if _, err := sess.Game().Restart(); err != nil {
				de := s.pres.Formatter().Error(err, "", "")
				reply = &chessdto.ServerMessage{Type: chessdto.MsgError, Error: &de}
			}
		case chessdto.MsgState:
			m := s.stateMessage(sess)
			reply = &m
		default:
			de := s.pres.Formatter().BadRequest()
			reply = &chessdto.ServerMessage{Type: chessdto.MsgError, Error: &de}
		}
		if reply == nil {
			continue
		}
		select {
		case replies <- *reply:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) stateMessage(sess *session.Session) chessdto.ServerMessage {
	st := s.stateOf(sess, sess.Game().Snapshot())
	return chessdto.ServerMessage{Type: chessdto.MsgState, State: &st}
}

func (s *Server) writeMessage(ctx context.Context, conn *websocket.Conn, msg chessdto.ServerMessage) error {
	writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return wsjson.Write(writeCtx, conn, msg)
}
