package reports

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pos-system/internal/common/httpx"
)

type Handler struct {
	service ServiceInterface
}

func NewHandler(service ServiceInterface) *Handler { return &Handler{service: service} }

// Register mounts the reporting routes. They are admin-only; the caller
// wraps the router in the role check.
func (h *Handler) Register(r chi.Router) {
	r.Get("/reports/daily-sales", h.dailySales)
	r.Get("/reports/waiter-totals", h.waiterTotals)
	r.Get("/reports/item-sales", h.itemSales)
}

// window parses ?from=YYYY-MM-DD&to=YYYY-MM-DD, defaulting to the last
// 30 days. The end date is exclusive.
func window(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30)
	to := now
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = t.AddDate(0, 0, 1)
	}
	return from, to, nil
}

func (h *Handler) dailySales(w http.ResponseWriter, r *http.Request) {
	from, to, err := window(r)
	if err != nil {
		httpx.WriteProblem(w, http.StatusBadRequest, "bad_date", "dates must be YYYY-MM-DD")
		return
	}
	rows, err := h.service.DailySales(r.Context(), from, to)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if rows == nil {
		rows = []DailySalesRow{}
	}
	httpx.WriteJSON(w, http.StatusOK, rows)
}

func (h *Handler) waiterTotals(w http.ResponseWriter, r *http.Request) {
	from, to, err := window(r)
	if err != nil {
		httpx.WriteProblem(w, http.StatusBadRequest, "bad_date", "dates must be YYYY-MM-DD")
		return
	}
	rows, err := h.service.WaiterTotals(r.Context(), from, to)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if rows == nil {
		rows = []WaiterTotalsRow{}
	}
	httpx.WriteJSON(w, http.StatusOK, rows)
}

func (h *Handler) itemSales(w http.ResponseWriter, r *http.Request) {
	from, to, err := window(r)
	if err != nil {
		httpx.WriteProblem(w, http.StatusBadRequest, "bad_date", "dates must be YYYY-MM-DD")
		return
	}
	rows, err := h.service.ItemSales(r.Context(), from, to)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if rows == nil {
		rows = []ItemSalesRow{}
	}
	httpx.WriteJSON(w, http.StatusOK, rows)
}
