package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophnotes/internal/client/models"
)

const subscriberBuffer = 8

// Hub fans auth status changes out to subscribers. A slow subscriber loses
// its oldest undelivered statuses, never the newest one.
type Hub struct {
	mu     sync.Mutex
	subs   map[chan models.AuthStatus]struct{}
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan models.AuthStatus]struct{})}
}

// Subscribe returns a channel receiving every status published after the
// call. The channel is closed when ctx is done or the hub is closed.
func (h *Hub) Subscribe(ctx context.Context) <-chan models.AuthStatus {
	ch := make(chan models.AuthStatus, subscriberBuffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch
	}
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
	}()
	return ch
}

func (h *Hub) Publish(status models.AuthStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		select {
		case ch <- status:
			continue
		default:
		}
		// full: drop the oldest pending status
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- status:
		default:
		}
	}
}

// Close closes every subscriber channel. Later subscriptions get a closed
// channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}

func (h *Hub) subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
