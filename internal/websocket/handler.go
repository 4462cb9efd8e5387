package websocket

import (
	"log/slog"
	"net/http"
	"time"

	ws "github.com/coder/websocket"
)

// HandleWebSocket upgrades the connection and runs it as a Hub client that
// receives every change event.
func HandleWebSocket(hub *Hub, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := Accept(w, r)
		if err != nil {
			logger.Warn("websocket accept", "error", err)
			return
		}

		client := NewClient(hub, conn)
		client.Run(r.Context())
	}
}

// Accept upgrades an HTTP request without checking its origin. The
// connection's read and write deadlines are cleared first so the server's
// request timeouts do not cut the socket short.
func Accept(w http.ResponseWriter, r *http.Request) (*ws.Conn, error) {
	rc := http.NewResponseController(w)
	rc.SetReadDeadline(time.Time{})
	rc.SetWriteDeadline(time.Time{})
	return ws.Accept(w, r, &ws.AcceptOptions{InsecureSkipVerify: true})
}
