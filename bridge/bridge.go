// Package bridge speaks the helper-extension protocol. Extensions connect
// over a WebSocket and perform privileged cross-origin fetches on behalf of
// the application; the application correlates requests and responses by a
// client-generated request id.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"novelweaver/logutils"
)

// Wire message types, shared with the helper extension.
const (
	TypePing          = "NOVEL_WEAVER_EXTENSION_PING"
	TypePong          = "NOVEL_WEAVER_EXTENSION_PONG"
	TypeFetchRequest  = "NOVEL_WEAVER_FETCH_REQUEST"
	TypeFetchResponse = "NOVEL_WEAVER_FETCH_RESPONSE"
)

const (
	pongTimeout  = 500 * time.Millisecond
	fetchTimeout = 1000 * time.Millisecond
	// ProbeInterval is how often liveness is re-checked while anyone cares,
	// so a just-installed helper is noticed without a restart.
	ProbeInterval = 2 * time.Second

	writeTimeout = 2 * time.Second
)

// ErrUnavailable is returned when no helper answers in time.
var ErrUnavailable = errors.New("Extension unavailable")

type Message struct {
	Type      string  `json:"type"`
	URL       string  `json:"url,omitempty"`
	RequestID string  `json:"requestId,omitempty"`
	Success   bool    `json:"success,omitempty"`
	HTML      *string `json:"html,omitempty"`
	Error     *string `json:"error,omitempty"`
}

type fetchResult struct {
	html string
	err  error
}

type Hub struct {
	mu          sync.Mutex
	conns       map[*websocket.Conn]struct{}
	pending     map[string]chan fetchResult
	pongWaiters map[chan struct{}]struct{}

	active atomic.Bool
}

func NewHub() *Hub {
	return &Hub{
		conns:       make(map[*websocket.Conn]struct{}),
		pending:     make(map[string]chan fetchResult),
		pongWaiters: make(map[chan struct{}]struct{}),
	}
}

// Connected reports how many helpers are attached.
func (h *Hub) Connected() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Active reports the cached result of the last liveness probe.
func (h *Hub) Active() bool {
	return h.active.Load()
}

// Alive broadcasts a PING and waits up to 500ms for any PONG.
func (h *Hub) Alive(ctx context.Context) bool {
	waiter := make(chan struct{}, 1)
	h.mu.Lock()
	h.pongWaiters[waiter] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.pongWaiters, waiter)
		h.mu.Unlock()
	}()

	h.broadcast(Message{Type: TypePing})

	timer := time.NewTimer(pongTimeout)
	defer timer.Stop()

	alive := false
	select {
	case <-waiter:
		alive = true
	case <-timer.C:
	case <-ctx.Done():
	}
	h.active.Store(alive)
	return alive
}

// RunProbe re-checks liveness on a fixed interval until ctx is cancelled.
func (h *Hub) RunProbe(ctx context.Context) {
	ticker := time.NewTicker(ProbeInterval)
	defer ticker.Stop()

	h.Alive(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Alive(ctx)
		}
	}
}

// Fetch asks a helper to fetch the URL. Only the response carrying the
// request id issued here is honored; anything else is discarded as stale.
// The pending waiter is unregistered after handling or after the 1s timeout.
func (h *Hub) Fetch(ctx context.Context, url string) (string, error) {
	requestID := uuid.NewString()
	result := make(chan fetchResult, 1)

	h.mu.Lock()
	h.pending[requestID] = result
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.pending, requestID)
		h.mu.Unlock()
	}()

	h.broadcast(Message{Type: TypeFetchRequest, URL: url, RequestID: requestID})

	timer := time.NewTimer(fetchTimeout)
	defer timer.Stop()

	select {
	case res := <-result:
		return res.html, res.err
	case <-timer.C:
		return "", ErrUnavailable
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (h *Hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

func (h *Hub) broadcast(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(msg); err != nil {
			_ = conn.Close()
			delete(h.conns, conn)
		}
	}
}

func (h *Hub) dispatch(msg Message) {
	switch msg.Type {
	case TypePong:
		h.mu.Lock()
		for waiter := range h.pongWaiters {
			select {
			case waiter <- struct{}{}:
			default:
			}
		}
		h.mu.Unlock()

	case TypeFetchResponse:
		h.mu.Lock()
		waiter, ok := h.pending[msg.RequestID]
		if ok {
			delete(h.pending, msg.RequestID)
		}
		h.mu.Unlock()

		if !ok {
			logutils.Log.WithField("request_id", msg.RequestID).Debug("discarding stale fetch response")
			return
		}

		if msg.Success && msg.HTML != nil {
			waiter <- fetchResult{html: *msg.HTML}
			return
		}
		errMsg := "Unknown extension error"
		if msg.Error != nil && *msg.Error != "" {
			errMsg = *msg.Error
		}
		waiter <- fetchResult{err: fmt.Errorf("extension fetch failed: %s", errMsg)}
	}
}
