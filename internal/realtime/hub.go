package realtime

import (
	"context"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Hub is the long-running fan-out service between the broker and the
// connected websocket clients. Board channels exist only while they
// have subscribers: the first Register creates one, removing the last
// client garbage-collects it.
type Hub struct {
	broker *Broker
	log    *logrus.Logger

	mu     sync.Mutex
	boards map[string]map[*Client]bool
}

func NewHub(broker *Broker, log *logrus.Logger) *Hub {
	return &Hub{
		broker: broker,
		log:    log,
		boards: make(map[string]map[*Client]bool),
	}
}

// Run consumes the broker stream until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	messages := h.broker.Listen(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			board := strings.TrimPrefix(msg.Channel, channelPrefix)
			h.deliver(board, []byte(msg.Payload))
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.boards[client.board]
	if !ok {
		set = make(map[*Client]bool)
		h.boards[client.board] = set
	}
	set[client] = true
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.boards[client.board]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.boards, client.board)
	}
}

// ClientCount reports the number of subscribers on a board's channel.
func (h *Hub) ClientCount(board string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.boards[board])
}

func (h *Hub) deliver(board string, payload []byte) {
	const op = "realtime.Hub.deliver"

	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.boards[board]
	for client := range set {
		select {
		case client.send <- payload:
		default:
			// send buffer full, assume the client is gone
			close(client.send)
			delete(set, client)
			h.log.WithField("operation", op).
				WithField("board", board).
				Warn("slow realtime client dropped")
		}
	}
	if set != nil && len(set) == 0 {
		delete(h.boards, board)
	}
}
