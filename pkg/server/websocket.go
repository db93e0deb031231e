package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/navtree/internal/errors"
	"github.com/vango-dev/navtree/pkg/router"
)

// Message is a client request on the WebSocket.
//
//	{"id": "1", "op": "navigate", "path": "/users/42", "push": true}
//	{"id": "2", "op": "back"}
type Message struct {
	// ID is echoed in the reply.
	ID string `json:"id,omitempty"`

	// Op is navigate (the default), back, forward or history.
	Op string `json:"op,omitempty"`

	Path    string          `json:"path,omitempty"`
	Push    bool            `json:"push,omitempty"`
	Replace bool            `json:"replace,omitempty"`
	State   json.RawMessage `json:"state,omitempty"`
	Params  map[string]any  `json:"params,omitempty"`
}

// Reply answers one Message.
type Reply struct {
	ID      string               `json:"id,omitempty"`
	Page    *router.Page         `json:"page,omitempty"`
	History *HistoryReply        `json:"history,omitempty"`
	Error   *errors.NavtreeError `json:"error,omitempty"`
}

// HistoryReply answers the history op.
type HistoryReply struct {
	Entries []router.HistoryEntry `json:"entries"`
	Index   int                   `json:"index"`
}

// HandleWebSocket upgrades the request and serves navigation messages
// until the client disconnects. Every connection owns a router, so
// history is per connection.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		if s.metrics != nil {
			s.metrics.WebSocketError("upgrade")
		}
		return
	}

	s.trackConn(conn, true)
	if s.metrics != nil {
		s.metrics.ConnectionOpened()
	}
	defer func() {
		s.trackConn(conn, false)
		if s.metrics != nil {
			s.metrics.ConnectionClosed()
		}
		conn.Close()
	}()

	// The upgrade outlives the request, so the session gets its own context.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go s.pingLoop(ctx, conn)
	s.readLoop(ctx, conn, s.NewRouter(true))
}

// readLoop reads messages until the connection is closed or an error occurs.
func (s *Server) readLoop(ctx context.Context, conn *websocket.Conn, rt *router.Router) {
	conn.SetReadDeadline(time.Now().Add(s.config.PongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.config.PongTimeout))
	})

	for {
		var msg Message
		err := conn.ReadJSON(&msg)
		if isDecodeError(err) {
			if err := s.writeReply(conn, Reply{Error: errors.New("E701").Wrap(err)}); err != nil {
				return
			}
			continue
		}
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
				if s.metrics != nil {
					s.metrics.WebSocketError("read")
				}
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(s.config.PongTimeout))

		if err := s.writeReply(conn, s.handleMessage(ctx, rt, msg)); err != nil {
			s.logger.Error("write error", "error", err)
			if s.metrics != nil {
				s.metrics.WebSocketError("write")
			}
			return
		}
	}
}

// handleMessage runs one message with panic recovery.
func (s *Server) handleMessage(ctx context.Context, rt *router.Router, msg Message) (reply Reply) {
	reply.ID = msg.ID
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("message panic",
				"panic", r,
				"op", msg.Op,
				"stack", string(debug.Stack()))
			reply = Reply{ID: msg.ID, Error: errors.New("E702")}
		}
	}()

	var page *router.Page
	var err error
	switch msg.Op {
	case "", "navigate":
		if msg.Path == "" {
			reply.Error = errors.New("E701").WithDetail("navigate needs a path")
			return reply
		}
		var opts []router.NavigateOption
		if msg.Push {
			opts = append(opts, router.WithHistory())
		}
		if msg.Replace {
			opts = append(opts, router.WithReplace())
		}
		if len(msg.State) > 0 {
			opts = append(opts, router.WithState(msg.State))
		}
		if len(msg.Params) > 0 {
			opts = append(opts, router.WithParams(msg.Params))
		}
		page, err = rt.Navigate(ctx, msg.Path, opts...)
	case "back":
		page, err = rt.Back(ctx)
	case "forward":
		page, err = rt.Forward(ctx)
	case "history":
		entries, index := rt.History()
		reply.History = &HistoryReply{Entries: entries, Index: index}
		return reply
	default:
		reply.Error = errors.New("E701").WithDetail("unknown op " + msg.Op)
		return reply
	}

	if err != nil {
		reply.Error = errors.Classify(err, "E702")
		return reply
	}
	reply.Page = page
	return reply
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return stderrors.As(err, &syntaxErr) || stderrors.As(err, &typeErr)
}

func (s *Server) writeReply(conn *websocket.Conn, reply Reply) error {
	conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	return conn.WriteJSON(reply)
}

// pingLoop keeps the connection alive until ctx is done. WriteControl
// may run concurrently with the reader's writes.
func (s *Server) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(s.config.PongTimeout * 9 / 10)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deadline := time.Now().Add(s.config.WriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

func (s *Server) trackConn(conn *websocket.Conn, add bool) {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	if add {
		s.conns[conn] = struct{}{}
	} else {
		delete(s.conns, conn)
	}
}

// closeConns sends a close frame to every open session.
func (s *Server) closeConns() {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	deadline := time.Now().Add(time.Second)
	for conn := range s.conns {
		conn.WriteControl(websocket.CloseMessage, msg, deadline)
		conn.Close()
	}
}
