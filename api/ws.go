package api

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"brushkit/favorites"
	"brushkit/resource"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsMessage struct {
	Type      string            `json:"type"`
	Resource  *resource.Event   `json:"resource,omitempty"`
	Favorites *favorites.Change `json:"favorites,omitempty"`
}

// handleEvents streams resource server and favorites changes to the client
// until it disconnects.
func (h *handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error(err, "websocket upgrade")
		return
	}
	defer conn.Close()

	// Serialise all WebSocket writes; gorilla/websocket forbids concurrent writes.
	var writeMu sync.Mutex
	writeMsg := func(msg wsMessage) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(msg)
	}

	// Observers run on the publisher's goroutine, so they only enqueue.
	out := make(chan wsMessage, 256)
	send := func(msg wsMessage) {
		select {
		case out <- msg:
		default:
			h.log.V(1).Info("dropping event for slow client", "type", msg.Type)
		}
	}
	unsubResource := h.server.Subscribe(func(ev resource.Event) {
		send(wsMessage{Type: "resource", Resource: &ev})
	})
	defer unsubResource()
	unsubFavorites := h.favorites.Subscribe(func(ch favorites.Change) {
		send(wsMessage{Type: "favorites", Favorites: &ch})
	})
	defer unsubFavorites()

	if err := writeMsg(wsMessage{Type: "hello"}); err != nil {
		return
	}

	// Goroutine: pump queued events to the client.
	connDone := make(chan struct{})
	defer close(connDone)
	go func() {
		for {
			select {
			case msg := <-out:
				if err := writeMsg(msg); err != nil {
					conn.Close()
					return
				}
			case <-connDone:
				return
			}
		}
	}()

	// Main loop: the client sends nothing meaningful; reads detect disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
