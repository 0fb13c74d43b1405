package events

import "sync"

const (
	subscriberBuffer = 16
	replayKept       = 32
)

// Hub fans event payloads out to connected SSE clients and keeps a short
// replay window, so a client that reconnects mid-scrape still sees the
// hits it missed. Slow clients drop events rather than block the publisher.
type Hub struct {
	mu      sync.Mutex
	clients map[chan string]struct{}
	recent  []string
}

func NewHub() *Hub {
	return &Hub{clients: make(map[chan string]struct{})}
}

// Subscribe registers a client and returns the replay window, oldest
// first, captured atomically with registration so no event lands in both.
func (h *Hub) Subscribe() (chan string, []string) {
	ch := make(chan string, subscriberBuffer)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	replay := append([]string(nil), h.recent...)
	h.mu.Unlock()
	return ch, replay
}

func (h *Hub) Unsubscribe(ch chan string) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
	close(ch)
}

func (h *Hub) Publish(evt string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.recent = append(h.recent, evt)
	if len(h.recent) > replayKept {
		h.recent = h.recent[len(h.recent)-replayKept:]
	}

	for ch := range h.clients {
		select {
		case ch <- evt:
		default:
		}
	}
}
