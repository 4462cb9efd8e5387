package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dukerupert/shoplist/internal/model"
	"github.com/dukerupert/shoplist/internal/shopping"
	"github.com/dukerupert/shoplist/internal/websocket"
)

// LiveHandler streams list snapshots over a websocket.
type LiveHandler struct {
	svc    *shopping.Service
	logger *slog.Logger
}

func NewLiveHandler(svc *shopping.Service, logger *slog.Logger) *LiveHandler {
	return &LiveHandler{svc: svc, logger: logger.With("component", "live_handler")}
}

// Lists upgrades to a websocket and sends a result frame for every snapshot
// of the lists matching ?status= until the client disconnects.
func (h *LiveHandler) Lists(w http.ResponseWriter, r *http.Request) {
	status := model.ListStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status must be active or completed"})
		return
	}

	conn, err := websocket.Accept(w, r)
	if err != nil {
		h.logger.Warn("websocket accept", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := websocket.Stream(ctx, conn, h.svc.WatchLists(ctx, status)); err != nil && ctx.Err() == nil {
		h.logger.Debug("list stream ended", "error", err)
	}
}
