package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rovshanmuradov/solana-dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{}

// feedServer serves one websocket session that writes the given messages.
func feedServer(t *testing.T, messages []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, msg := range messages {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}
		}
		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestListenerDeliversDecodedEvents(t *testing.T) {
	srv := feedServer(t, []string{
		`{"kind":"price_update","id":"p1","current_price":0.002}`,
		`{"kind":"closed","id":"p2","close_reason":"stop_loss"}`,
	})
	defer srv.Close()

	var mu sync.Mutex
	var got []domain.Event
	done := make(chan struct{})

	l := NewListener(wsURL(srv), 1, func(ev domain.Event) {
		mu.Lock()
		got = append(got, ev)
		if len(got) == 2 {
			close(done)
		}
		mu.Unlock()
	}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = l.Run(ctx) }()
	defer l.Close()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("events were not delivered")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, domain.EventPriceUpdate, got[0].Kind)
	assert.Equal(t, domain.FlexID("p1"), got[0].ID)
	assert.Equal(t, domain.EventClosed, got[1].Kind)
}

func TestListenerDropsMalformedMessages(t *testing.T) {
	srv := feedServer(t, []string{
		`not json at all`,
		`{"kind":"mystery","id":"p1"}`,
		`{"kind":"price_update","id":"p1","current_price":1}`,
	})
	defer srv.Close()

	done := make(chan domain.Event, 1)
	l := NewListener(wsURL(srv), 1, func(ev domain.Event) {
		select {
		case done <- ev:
		default:
		}
	}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = l.Run(ctx) }()
	defer l.Close()

	select {
	case ev := <-done:
		// Only the valid trailing message makes it through.
		assert.Equal(t, domain.EventPriceUpdate, ev.Kind)
	case <-time.After(3 * time.Second):
		t.Fatal("valid event after garbage was not delivered")
	}
}

func TestListenerStopsOnContextCancel(t *testing.T) {
	srv := feedServer(t, nil)
	defer srv.Close()

	l := NewListener(wsURL(srv), 1, func(domain.Event) {}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()
	l.Close()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("listener did not stop after cancel")
	}
}

func TestListenerGivesUpAfterMaxAttempts(t *testing.T) {
	// Nothing is listening here.
	l := NewListener("ws://127.0.0.1:1", 2, func(domain.Event) {}, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := l.Run(ctx)
	assert.Error(t, err)
}
