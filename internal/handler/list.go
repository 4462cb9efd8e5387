package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/shoplist/internal/clock"
	"github.com/dukerupert/shoplist/internal/listbuilder"
	"github.com/dukerupert/shoplist/internal/model"
	"github.com/dukerupert/shoplist/internal/shopping"
	"github.com/shopspring/decimal"
)

type ListHandler struct {
	svc    *shopping.Service
	clock  clock.Clock
	loc    *time.Location
	logger *slog.Logger
}

func NewListHandler(svc *shopping.Service, clk clock.Clock, loc *time.Location, logger *slog.Logger) *ListHandler {
	if clk == nil {
		clk = clock.Real{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &ListHandler{svc: svc, clock: clk, loc: loc, logger: logger.With("component", "list_handler")}
}

type itemRequest struct {
	Name      string          `json:"name" validate:"required,max=200"`
	Quantity  *int            `json:"quantity" validate:"omitempty,gte=0"`
	Unit      string          `json:"unit" validate:"max=20"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func (r itemRequest) quantity() int {
	if r.Quantity == nil {
		return 1
	}
	return *r.Quantity
}

type createListRequest struct {
	Name        string        `json:"name" validate:"max=200"`
	Description string        `json:"description" validate:"max=1000"`
	Type        string        `json:"type" validate:"omitempty,oneof=regular weekly monthly emergency recurrent"`
	CoverPhoto  string        `json:"cover_photo"`
	Items       []itemRequest `json:"items" validate:"dive"`
}

// Create builds a list, items included. Blank name or description take
// the defaults for the list type.
func (h *ListHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createListRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	t := model.ListType(req.Type)
	if t == "" {
		t = model.ListTypeRegular
	}
	b := listbuilder.New(t).
		Name(strings.TrimSpace(req.Name)).
		Description(req.Description).
		CreatedAt(h.clock.Now()).
		CoverPhoto(req.CoverPhoto)
	for _, it := range req.Items {
		b.AddItem(strings.TrimSpace(it.Name), it.quantity(), it.Unit, it.UnitPrice)
	}

	writeResult(w, h.logger, http.StatusCreated, h.svc.CreateList(r.Context(), b.Build()))
}

// List returns every list, or only those with the given ?status=.
func (h *ListHandler) List(w http.ResponseWriter, r *http.Request) {
	switch status := model.ListStatus(r.URL.Query().Get("status")); status {
	case "":
		writeResult(w, h.logger, http.StatusOK, h.svc.AllLists(r.Context()))
	case model.ListStatusActive:
		writeResult(w, h.logger, http.StatusOK, h.svc.ActiveLists(r.Context()))
	case model.ListStatusCompleted:
		writeResult(w, h.logger, http.StatusOK, h.svc.CompletedLists(r.Context()))
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status must be active or completed"})
	}
}

func (h *ListHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	writeResult(w, h.logger, http.StatusOK, h.svc.GetListDetail(r.Context(), id))
}

type updateListRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=1000"`
}

func (h *ListHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req updateListRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	writeResult(w, h.logger, http.StatusOK, h.svc.UpdateList(r.Context(), id, req.Name, req.Description))
}

func (h *ListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.svc.DeleteList(r.Context(), id).Err(); err != nil {
		writeFailure(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=active completed"`
}

func (h *ListHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req statusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	writeResult(w, h.logger, http.StatusOK, h.svc.UpdateStatus(r.Context(), id, model.ListStatus(req.Status)))
}

type coverRequest struct {
	CoverPhoto string `json:"cover_photo" validate:"omitempty,max=2048"`
}

// SetCover sets or, with an empty value, clears the cover photo reference.
func (h *ListHandler) SetCover(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req coverRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	writeResult(w, h.logger, http.StatusOK, h.svc.SetCoverPhoto(r.Context(), id, req.CoverPhoto))
}

func (h *ListHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	writeResult(w, h.logger, http.StatusCreated, h.svc.DuplicateList(r.Context(), id))
}

// Between lists the lists created in [from, to).
func (h *ListHandler) Between(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := parseDate(q.Get("from"), h.loc)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid from date"})
		return
	}
	to, err := parseDate(q.Get("to"), h.loc)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid to date"})
		return
	}
	writeResult(w, h.logger, http.StatusOK, h.svc.ListsBetween(r.Context(), from, to))
}

type bulkRequest struct {
	Base  string `json:"base" validate:"required,max=200"`
	Start string `json:"start" validate:"required"`
	Count int    `json:"count" validate:"required,min=1,max=52"`
}

func (h *ListHandler) CreateWeekly(w http.ResponseWriter, r *http.Request) {
	req, start, ok := h.parseBulk(w, r)
	if !ok {
		return
	}
	writeResult(w, h.logger, http.StatusCreated, h.svc.CreateWeeklyLists(r.Context(), req.Base, start, req.Count))
}

func (h *ListHandler) CreateMonthly(w http.ResponseWriter, r *http.Request) {
	req, start, ok := h.parseBulk(w, r)
	if !ok {
		return
	}
	writeResult(w, h.logger, http.StatusCreated, h.svc.CreateMonthlyLists(r.Context(), req.Base, start, req.Count))
}

func (h *ListHandler) parseBulk(w http.ResponseWriter, r *http.Request) (bulkRequest, time.Time, bool) {
	var req bulkRequest
	if !decodeAndValidate(w, r, &req) {
		return req, time.Time{}, false
	}
	start, err := parseDate(req.Start, h.loc)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid start date"})
		return req, time.Time{}, false
	}
	return req, start, true
}

func (h *ListHandler) Templates(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.logger, http.StatusOK, h.svc.Templates())
}

type templateRequest struct {
	Template string `json:"template" validate:"required"`
	Name     string `json:"name" validate:"max=200"`
}

func (h *ListHandler) CreateFromTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	writeResult(w, h.logger, http.StatusCreated, h.svc.CreateFromTemplate(r.Context(), req.Template, req.Name))
}

// MonthlyExpense sums completed lists for ?month=&year=, defaulting to the
// current month.
func (h *ListHandler) MonthlyExpense(w http.ResponseWriter, r *http.Request) {
	now := h.clock.Now().In(h.loc)
	month, err := queryInt(r, "month", int(now.Month()))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	year, err := queryInt(r, "year", now.Year())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	total, err := h.svc.MonthlyExpense(r.Context(), time.Month(month), year).Get()
	if err != nil {
		writeFailure(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"month": month, "year": year, "total": total})
}

func (h *ListHandler) LastListValue(w http.ResponseWriter, r *http.Request) {
	total, err := h.svc.LastListValue(r.Context()).Get()
	if err != nil {
		writeFailure(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"total": total})
}
