// Package timeline pushes newly published tweets to connected viewers over
// websockets. Each viewer gets cards rendered for their own identity.
package timeline

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/99JIWONDEV/X-Clone-TalktoJIWON/internal/identity"
	"github.com/99JIWONDEV/X-Clone-TalktoJIWON/internal/logs"
	"github.com/99JIWONDEV/X-Clone-TalktoJIWON/internal/tweet"
)

const (
	sendBuffer   = 16
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
)

type subscriber struct {
	viewer *identity.Actor
	send   chan tweet.Card
}

type Hub struct {
	auth     identity.Provider
	upgrader websocket.Upgrader

	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

func NewHub(auth identity.Provider, origins []string) *Hub {
	return &Hub{
		auth: auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(origins),
		},
		subs: make(map[*subscriber]struct{}),
	}
}

func originChecker(origins []string) func(*http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}

// Publish fans a tweet out to every subscriber. Subscribers whose buffer is
// full are disconnected rather than blocking the publisher.
func (h *Hub) Publish(post tweet.Post) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		select {
		case sub.send <- tweet.Render(post, sub.viewer):
		default:
			delete(h.subs, sub)
			close(sub.send)
		}
	}
}

// Len reports the number of connected viewers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) subscribe(viewer *identity.Actor) *subscriber {
	sub := &subscriber{viewer: viewer, send: make(chan tweet.Card, sendBuffer)}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *Hub) unsubscribe(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.send)
	}
}

// Stream GET /api/tweets/stream
func (h *Hub) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader already wrote the HTTP error
		logs.LogJSON(logs.Warn, "Websocket upgrade failed", map[string]interface{}{
			"route": c.FullPath(),
			"error": err.Error(),
		})
		return
	}
	defer conn.Close()

	var viewer *identity.Actor
	if actor, ok := h.auth.CurrentActor(c.Request.Context()); ok {
		viewer = &actor
	}
	sub := h.subscribe(viewer)
	defer h.unsubscribe(sub)

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case card, ok := <-sub.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "slow consumer"))
				return
			}
			if err := conn.WriteJSON(card); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
