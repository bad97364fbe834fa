package server

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/nandita/sightline/internal/app"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// ResultsHandler pushes live frame results over a WebSocket. Each
// connection gets its own subscription; a client that falls behind
// misses results rather than stalling the pipeline.
type ResultsHandler struct {
	app *app.App
}

// NewResultsHandler creates a ResultsHandler over the given app.
func NewResultsHandler(a *app.App) *ResultsHandler {
	return &ResultsHandler{app: a}
}

// ServeHTTP upgrades the connection and streams results until the
// client goes away.
func (h *ResultsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	results, cancel := h.app.Subscribe()
	defer cancel()

	// Drain client messages so pings and close frames are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case result := <-results:
			if err := conn.WriteJSON(result); err != nil {
				return
			}
		}
	}
}
