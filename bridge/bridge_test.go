package bridge

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func strptr(s string) *string { return &s }

func TestFetchTimesOutWithoutHelper(t *testing.T) {
	hub := NewHub()

	start := time.Now()
	_, err := hub.Fetch(context.Background(), "https://example.test/ch1")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < fetchTimeout {
		t.Errorf("timed out too early: %v", elapsed)
	}
}

func TestFetchHonorsMatchingResponseOnly(t *testing.T) {
	hub := NewHub()

	done := make(chan struct{})
	var html string
	var err error
	go func() {
		defer close(done)
		html, err = hub.Fetch(context.Background(), "https://example.test/ch1")
	}()

	// Wait for the request to register.
	deadline := time.Now().Add(time.Second)
	var requestID string
	for time.Now().Before(deadline) {
		hub.mu.Lock()
		for id := range hub.pending {
			requestID = id
		}
		hub.mu.Unlock()
		if requestID != "" {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if requestID == "" {
		t.Fatal("fetch never registered a pending request")
	}

	// A stale response must be discarded without resolving the fetch.
	hub.dispatch(Message{Type: TypeFetchResponse, RequestID: "stale", Success: true, HTML: strptr("<html>wrong</html>")})
	select {
	case <-done:
		t.Fatal("stale response resolved the fetch")
	case <-time.After(50 * time.Millisecond):
	}

	hub.dispatch(Message{Type: TypeFetchResponse, RequestID: requestID, Success: true, HTML: strptr("<html>right</html>")})
	<-done

	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if html != "<html>right</html>" {
		t.Errorf("unexpected html %q", html)
	}
}

func TestFetchPropagatesHelperError(t *testing.T) {
	hub := NewHub()

	done := make(chan error, 1)
	go func() {
		_, err := hub.Fetch(context.Background(), "https://example.test/ch1")
		done <- err
	}()

	var requestID string
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && requestID == "" {
		hub.mu.Lock()
		for id := range hub.pending {
			requestID = id
		}
		hub.mu.Unlock()
		time.Sleep(time.Millisecond)
	}

	hub.dispatch(Message{Type: TypeFetchResponse, RequestID: requestID, Success: false, Error: strptr("HTTP error! status: 403")})
	err := <-done
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Errorf("expected helper error surfaced, got %v", err)
	}
}

func TestAliveWithoutHelper(t *testing.T) {
	hub := NewHub()

	start := time.Now()
	if hub.Alive(context.Background()) {
		t.Error("expected not alive with no helper connected")
	}
	if elapsed := time.Since(start); elapsed < pongTimeout {
		t.Errorf("probe returned before the pong window closed: %v", elapsed)
	}
	if hub.Active() {
		t.Error("cached active flag should be false")
	}
}

func TestAliveResolvedByPong(t *testing.T) {
	hub := NewHub()

	done := make(chan bool, 1)
	go func() { done <- hub.Alive(context.Background()) }()

	// Wait until the waiter registers, then answer.
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		hub.mu.Lock()
		registered := len(hub.pongWaiters) > 0
		hub.mu.Unlock()
		if registered {
			break
		}
		time.Sleep(time.Millisecond)
	}
	hub.dispatch(Message{Type: TypePong})

	if !<-done {
		t.Error("expected alive after PONG")
	}
	if !hub.Active() {
		t.Error("cached active flag should be true")
	}
}
