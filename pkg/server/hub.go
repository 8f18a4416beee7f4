package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/vango-dev/toast/internal/errors"
	"github.com/vango-dev/toast/pkg/toast"
)

// frameData is an encoded frame and the Seq it was encoded from.
type frameData struct {
	seq  uint64
	data []byte
}

// streamClient is one connected /ws client. The hub owns send and closes
// it when the client is removed.
type streamClient struct {
	id   string
	send chan frameData
	once sync.Once
}

func (c *streamClient) close() {
	c.once.Do(func() { close(c.send) })
}

// hub fans store changes out to stream clients.
type hub struct {
	mu      sync.RWMutex
	clients map[string]*streamClient
	closed  bool

	max    int
	buffer int
	logger *slog.Logger
}

func newHub(max, buffer int, logger *slog.Logger) *hub {
	return &hub{
		clients: make(map[string]*streamClient),
		max:     max,
		buffer:  buffer,
		logger:  logger,
	}
}

// add registers a new client. It fails once the hub is full or closed.
func (h *hub) add() (*streamClient, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, errors.New("E302").WithDetail("server is shutting down").
			WithStatus(http.StatusServiceUnavailable)
	}
	if h.max > 0 && len(h.clients) >= h.max {
		return nil, errors.New("E304").WithDetailf("limit is %d clients", h.max)
	}

	c := &streamClient{
		id:   uuid.NewString(),
		send: make(chan frameData, h.buffer),
	}
	h.clients[c.id] = c
	return c, nil
}

// remove unregisters c and closes its queue. Safe to call more than once.
func (h *hub) remove(c *streamClient) {
	h.mu.Lock()
	delete(h.clients, c.id)
	h.mu.Unlock()
	c.close()
}

// broadcast queues ch for every client without blocking. Clients whose
// queue is full are disconnected.
func (h *hub) broadcast(ch toast.Change) {
	data, err := json.Marshal(encodeChange(ch))
	if err != nil {
		h.logger.Error("encode frame failed", "seq", ch.Seq, "error", err)
		return
	}
	f := frameData{seq: ch.Seq, data: data}

	var slow []*streamClient
	h.mu.RLock()
	for _, c := range h.clients {
		select {
		case c.send <- f:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("dropping slow stream client", "client", c.id, "buffer", h.buffer)
		h.remove(c)
	}
}

// len returns the number of connected clients.
func (h *hub) len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// close disconnects every client and rejects new ones.
func (h *hub) close() {
	h.mu.Lock()
	h.closed = true
	clients := h.clients
	h.clients = make(map[string]*streamClient)
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}
