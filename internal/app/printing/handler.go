package printing

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pos-system/internal/app/ledger"
	"pos-system/internal/app/staff"
	"pos-system/internal/common/httpx"
	"pos-system/internal/domain"
)

type Handler struct {
	repo   RepositoryInterface
	ledger ledger.ServiceInterface
}

func NewHandler(repo RepositoryInterface, ldg ledger.ServiceInterface) *Handler {
	return &Handler{repo: repo, ledger: ldg}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/orders/{orderID}/print/bill", h.bill)
	r.Post("/orders/{orderID}/print/receipt", h.receipt)
	r.Post("/orders/{orderID}/print/kitchen", h.kitchenTicket)
}

func writeDocument(w http.ResponseWriter, doc string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

// bill renders the pre-payment summary and records that it went out: the
// order can no longer be edited without invalidating the printed bill.
func (h *Handler) bill(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	agg, err := h.repo.GetOrderAggregate(r.Context(), orderID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if agg.Order.Status != domain.OrderPending {
		httpx.WriteError(w, domain.Conflictf("order is already served; print a receipt instead"))
		return
	}
	identity, _ := staff.IdentityFrom(r.Context())
	if err := h.ledger.MarkBillPrinted(r.Context(), identity.Name, orderID); err != nil {
		httpx.WriteError(w, err)
		return
	}
	writeDocument(w, RenderBill(agg, time.Now().UTC()))
}

// receipt only exists for a paid order.
func (h *Handler) receipt(w http.ResponseWriter, r *http.Request) {
	agg, err := h.repo.GetOrderAggregate(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if agg.Order.Status != domain.OrderServed {
		httpx.WriteError(w, domain.Conflictf("receipt is only available after payment"))
		return
	}
	writeDocument(w, RenderReceipt(agg, time.Now().UTC()))
}

func (h *Handler) kitchenTicket(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	agg, err := h.repo.GetOrderAggregate(r.Context(), orderID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	identity, _ := staff.IdentityFrom(r.Context())
	if err := h.ledger.MarkKitchenPrinted(r.Context(), identity.Name, orderID); err != nil {
		httpx.WriteError(w, err)
		return
	}
	writeDocument(w, RenderKitchenTicket(agg, time.Now().UTC()))
}
