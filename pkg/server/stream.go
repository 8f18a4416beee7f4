package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/toast/internal/errors"
)

// maxClientMessage bounds frames read from stream clients.
const maxClientMessage = 512

// handleStream upgrades to a WebSocket, sends the current list and then
// one frame per store change. Clients may send {"type":"dismiss","id":N}
// when a toast is clicked.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	c, err := s.hub.add()
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader already answered the request.
		s.hub.remove(c)
		s.logger.Warn("stream upgrade failed", "error", errors.New("E301").Wrap(err))
		return
	}

	s.streams.Add(1)
	defer s.streams.Done()
	defer conn.Close()

	log := s.logger.With("client", c.id)
	log.Debug("stream client connected", "remote", r.RemoteAddr)

	// Registered before the snapshot is taken, so no change falls in between.
	// Frames at or below the snapshot seq are skipped by pump.
	seq, toasts := s.store.Snapshot()
	snapshot, err := json.Marshal(Frame{Seq: seq, Kind: FrameSnapshot, Toasts: encodeToasts(toasts)})
	if err != nil {
		s.hub.remove(c)
		log.Error("encode snapshot failed", "error", err)
		return
	}
	conn.SetWriteDeadline(time.Now().Add(s.config.StreamWriteTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, snapshot); err != nil {
		s.hub.remove(c)
		log.Debug("snapshot write failed", "error", err)
		return
	}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.pump(conn, c, seq)
	}()

	s.readClient(conn, log)

	s.hub.remove(c)
	<-writerDone
	log.Debug("stream client disconnected")
}

// pump writes queued frames until the hub closes the client queue. Only
// pump writes to conn after the snapshot. Each frame carries the full list,
// so a frame that arrives behind a newer one is dropped instead of sent.
func (s *Server) pump(conn *websocket.Conn, c *streamClient, last uint64) {
	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case f, ok := <-c.send:
			conn.SetWriteDeadline(time.Now().Add(s.config.StreamWriteTimeout))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				// Unblocks readClient.
				conn.Close()
				return
			}
			if f.seq <= last {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, f.data); err != nil {
				conn.Close()
				s.hub.remove(c)
				return
			}
			last = f.seq
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(s.config.StreamWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				s.hub.remove(c)
				return
			}
		}
	}
}

// readClient handles client messages until the connection fails.
func (s *Server) readClient(conn *websocket.Conn, log *slog.Logger) {
	pongWait := 2 * s.config.PingInterval
	conn.SetReadLimit(maxClientMessage)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Debug("ignoring malformed client message", "error", err)
			continue
		}
		switch msg.Type {
		case "dismiss":
			s.store.Dismiss(msg.ID)
		case "clear":
			s.store.Clear()
		default:
			log.Debug("ignoring client message", "type", msg.Type)
		}
	}
}
