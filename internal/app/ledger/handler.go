package ledger

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pos-system/internal/app/catalog"
	"pos-system/internal/app/staff"
	"pos-system/internal/common/httpx"
	"pos-system/internal/domain"
)

type Handler struct {
	service ServiceInterface
	catalog catalog.ServiceInterface
}

func NewHandler(service ServiceInterface, cat catalog.ServiceInterface) *Handler {
	return &Handler{service: service, catalog: cat}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/orders/{orderID}", h.getOrder)
	r.Get("/orders/{orderID}/totals", h.getTotals)
	r.Post("/orders/{orderID}/items", h.addItem)
	r.Delete("/orders/{orderID}/items/{itemID}", h.removeItem)
	r.Post("/orders/{orderID}/payment", h.confirmPayment)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	order, err := h.service.GetOrder(r.Context(), orderID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	items, err := h.service.ListItems(r.Context(), orderID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"order":  order,
		"items":  items,
		"totals": SumItems(items),
	})
}

func (h *Handler) getTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.service.Totals(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, totals)
}

type addItemRequest struct {
	Kind      domain.ItemKind `json:"kind"`
	CatalogID string          `json:"catalog_id"`
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteProblem(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}
	if req.CatalogID == "" {
		httpx.WriteError(w, domain.Validationf("catalog_id is required"))
		return
	}

	// price and name come from the catalog, never from the request
	ref, err := h.catalog.Resolve(r.Context(), req.Kind, req.CatalogID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	item, err := h.service.AddOrIncrementItem(r.Context(), chi.URLParam(r, "orderID"), ref)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	err := h.service.RemoveItem(r.Context(), chi.URLParam(r, "orderID"), chi.URLParam(r, "itemID"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type paymentRequest struct {
	Cash float64 `json:"cash"`
	Card float64 `json:"card"`
}

func (h *Handler) confirmPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteProblem(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}
	identity, _ := staff.IdentityFrom(r.Context())
	result, err := h.service.ConfirmPayment(r.Context(), identity.Name,
		chi.URLParam(r, "orderID"), req.Cash, req.Card)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, result)
}
