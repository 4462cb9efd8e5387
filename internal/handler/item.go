package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/shoplist/internal/model"
	"github.com/dukerupert/shoplist/internal/shopping"
	"github.com/dukerupert/shoplist/internal/sorting"
	"github.com/shopspring/decimal"
)

const defaultSuggestionLimit = 5

type ItemHandler struct {
	svc    *shopping.Service
	logger *slog.Logger
}

func NewItemHandler(svc *shopping.Service, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{svc: svc, logger: logger.With("component", "item_handler")}
}

// Create adds an item to the list in the path. Adding a name the list
// already holds bumps that item's quantity instead.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	listID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req itemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	item := model.ListItem{
		ListID:    listID,
		Name:      req.Name,
		Quantity:  req.quantity(),
		Unit:      req.Unit,
		UnitPrice: req.UnitPrice,
	}
	writeResult(w, h.logger, http.StatusCreated, h.svc.AddItem(r.Context(), item))
}

type addProductRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  *int  `json:"quantity" validate:"omitempty,gte=0"`
}

func (h *ItemHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	listID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req addProductRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	writeResult(w, h.logger, http.StatusCreated, h.svc.AddProduct(r.Context(), listID, req.ProductID, qty))
}

// List returns a list's items. ?filter= is pending or purchased, ?sort= one
// of the sorting strategy names.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	listID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	q := r.URL.Query()
	var strategy sorting.Strategy
	if name := q.Get("sort"); name != "" {
		s, ok := sorting.ByName(name)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown sort " + name})
			return
		}
		strategy = s
	}

	res := h.svc.ListItems(r.Context(), listID, shopping.ItemFilter(q.Get("filter")), strategy)
	writeResult(w, h.logger, http.StatusOK, res)
}

// updateItemRequest replaces every field, so quantity has no default here.
type updateItemRequest struct {
	Name      string          `json:"name" validate:"required,max=200"`
	Quantity  *int            `json:"quantity" validate:"required,gte=0"`
	Unit      string          `json:"unit" validate:"max=20"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req updateItemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res := h.svc.UpdateItem(r.Context(), id, req.Name, *req.Quantity, req.Unit, req.UnitPrice)
	writeResult(w, h.logger, http.StatusOK, res)
}

func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.svc.DeleteItem(r.Context(), id).Err(); err != nil {
		writeFailure(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ItemHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	writeResult(w, h.logger, http.StatusOK, h.svc.TogglePurchased(r.Context(), id))
}

func (h *ItemHandler) ClearPurchased(w http.ResponseWriter, r *http.Request) {
	listID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	n, err := h.svc.ClearPurchased(r.Context(), listID).Get()
	if err != nil {
		writeFailure(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"removed": n})
}

func (h *ItemHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	listID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	limit, err := queryInt(r, "limit", defaultSuggestionLimit)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	writeResult(w, h.logger, http.StatusOK, h.svc.Suggestions(r.Context(), listID, limit))
}

// SortStrategies lists the names accepted by ?sort=.
func (h *ItemHandler) SortStrategies(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(sorting.All()))
	for _, s := range sorting.All() {
		names = append(names, s.Name())
	}
	writeJSON(w, http.StatusOK, names)
}
