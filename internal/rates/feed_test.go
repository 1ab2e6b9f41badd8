package rates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"SJ_storefront_backend/internal/service"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

type catalogStub struct {
	service.CatalogServiceI
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestFeed_SubscribeReleasesWatcher(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.Close()
	}))
	defer srv.Close()

	feed := NewFeed(FeedConfig{Enabled: true, URL: wsURL(srv)}, catalogStub{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	before := runtime.NumGoroutine()
	for i := 0; i < 20; i++ {
		assert.Error(t, feed.subscribe(ctx))
	}

	// Each subscribe call spawns one watcher; all of them must be gone once
	// the read loops have returned, with the context still live.
	after := runtime.NumGoroutine()
	for i := 0; i < 50 && after > before+2; i++ {
		time.Sleep(10 * time.Millisecond)
		after = runtime.NumGoroutine()
	}
	assert.LessOrEqual(t, after, before+2)
}

func TestFeed_SubscribeStopsOnCancel(t *testing.T) {
	upgrader := websocket.Upgrader{}
	hold := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		<-hold
	}))
	defer srv.Close()
	defer close(hold)

	feed := NewFeed(FeedConfig{Enabled: true, URL: wsURL(srv)}, catalogStub{})

	ctx, cancel := context.WithCancel(context.Background())
	returned := make(chan error, 1)
	go func() { returned <- feed.subscribe(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-returned:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("subscribe did not return after cancellation")
	}
}
