package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/shoplist/internal/shopping"
)

const defaultSearchLimit = 20

type CatalogHandler struct {
	svc    *shopping.Service
	logger *slog.Logger
}

func NewCatalogHandler(svc *shopping.Service, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{svc: svc, logger: logger.With("component", "catalog_handler")}
}

// Search matches ?q= against product names. An empty query lists the catalog.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultSearchLimit)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if limit < 1 || limit > 100 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be between 1 and 100"})
		return
	}

	writeResult(w, h.logger, http.StatusOK, h.svc.SearchCatalog(r.Context(), r.URL.Query().Get("q"), limit))
}
