package kitchen

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pos-system/internal/app/staff"
	"pos-system/internal/common/httpx"
	"pos-system/internal/domain"
)

type Handler struct {
	service ServiceInterface
}

func NewHandler(service ServiceInterface) *Handler { return &Handler{service: service} }

func (h *Handler) Register(r chi.Router) {
	r.Get("/kitchen/pending", h.pending)
	r.Get("/kitchen/ready", h.ready)
	r.Get("/kitchen/served", h.served)
	r.Post("/kitchen/items/{itemID}/start", h.start)
	r.Post("/kitchen/items/{itemID}/ready", h.markReady)
	r.Post("/kitchen/items/{itemID}/serve", h.serve)
	r.Delete("/kitchen/items/{itemID}", h.cancel)
}

func writeView(w http.ResponseWriter, tickets []domain.Ticket, err error) {
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	httpx.WriteJSON(w, http.StatusOK, tickets)
}

func (h *Handler) pending(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.service.Pending(r.Context())
	writeView(w, tickets, err)
}

func (h *Handler) ready(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.service.Ready(r.Context())
	writeView(w, tickets, err)
}

func (h *Handler) served(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.service.Served(r.Context())
	writeView(w, tickets, err)
}

func (h *Handler) start(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.StartCooking)
}

func (h *Handler) markReady(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.MarkReady)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Serve)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, actor, itemID string) (domain.Ticket, error)) {
	identity, _ := staff.IdentityFrom(r.Context())
	ticket, err := fn(r.Context(), identity.Name, chi.URLParam(r, "itemID"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ticket)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.service.CancelPendingItem(r.Context(), chi.URLParam(r, "itemID")); err != nil {
		httpx.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
