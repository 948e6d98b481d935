package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/mgpai22/kara/internal/player"
)

const (
	wsWriteWait    = 10 * time.Second
	wsPongWait     = 60 * time.Second
	wsPingPeriod   = wsPongWait * 9 / 10
	wsMaxMessage   = 4096
	wsMessageFrame = "frame"
	wsMessageError = "error"
)

// message from the browser player: the media element's current time
type clockTick struct {
	T float64 `json:"t"`
}

type inbound struct {
	tick clockTick
	err  error
}

type wsMessage struct {
	Type  string     `json:"type"`
	Frame *frameView `json:"frame,omitempty"`
	Error string     `json:"error,omitempty"`
}

func (s *Server) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.opts.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return len(s.opts.AllowedOrigins) == 0
}

// GET /api/ws: the client sends {"t": seconds} on every clock update and
// receives a frame whenever what is on screen changes.
func (s *Server) serveWS(c *gin.Context) {
	up := s.upgrader()
	conn, err := up.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warnw("Websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	log := s.log.With("remote", c.ClientIP())
	log.Debugw("Websocket connected")

	conn.SetReadLimit(wsMaxMessage)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	// the reader only reads; every write happens below
	messages := make(chan inbound)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Debugw("Websocket read failed", "error", err)
				}
				return
			}
			_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))

			var msg inbound
			msg.err = json.Unmarshal(data, &msg.tick)
			select {
			case messages <- msg:
			case <-c.Request.Context().Done():
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	var (
		last    string
		started bool
	)
	for {
		select {
		case <-done:
			log.Debugw("Websocket closed")
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case msg := <-messages:
			if msg.err != nil {
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				if err := conn.WriteJSON(wsMessage{Type: wsMessageError, Error: "expected {\"t\": seconds}"}); err != nil {
					return
				}
				continue
			}
			frame := s.session.Tick(fromSeconds(msg.tick.T))
			key := player.FrameKey(frame)
			if started && key == last {
				continue
			}
			last, started = key, true

			view := newFrameView(frame)
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(wsMessage{Type: wsMessageFrame, Frame: &view}); err != nil {
				log.Debugw("Websocket write failed", "error", err)
				return
			}
		}
	}
}
