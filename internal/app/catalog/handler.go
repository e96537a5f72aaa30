package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pos-system/internal/common/httpx"
	"pos-system/internal/domain"
)

type Handler struct {
	service ServiceInterface
}

func NewHandler(service ServiceInterface) *Handler { return &Handler{service: service} }

// Register mounts the read-only catalog routes available to every role.
func (h *Handler) Register(r chi.Router) {
	r.Get("/menu", h.listMenu)
	r.Get("/drinks", h.listDrinks)
}

// RegisterAdmin mounts the catalog-editing routes.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/menu", h.createMenuItem)
	r.Put("/menu/{itemID}", h.updateMenuItem)
	r.Post("/drinks", h.createDrink)
	r.Put("/drinks/{drinkID}", h.updateDrink)
}

func (h *Handler) listMenu(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListMenuItems(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if items == nil {
		items = []domain.MenuItem{}
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) listDrinks(w http.ResponseWriter, r *http.Request) {
	drinks, err := h.service.ListDrinks(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if drinks == nil {
		drinks = []domain.Drink{}
	}
	httpx.WriteJSON(w, http.StatusOK, drinks)
}

func (h *Handler) createMenuItem(w http.ResponseWriter, r *http.Request) {
	var m domain.MenuItem
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		httpx.WriteProblem(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}
	out, err := h.service.CreateMenuItem(r.Context(), m)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, out)
}

func (h *Handler) updateMenuItem(w http.ResponseWriter, r *http.Request) {
	var m domain.MenuItem
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		httpx.WriteProblem(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}
	m.ID = chi.URLParam(r, "itemID")
	if err := h.service.UpdateMenuItem(r.Context(), m); err != nil {
		httpx.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createDrink(w http.ResponseWriter, r *http.Request) {
	var d domain.Drink
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		httpx.WriteProblem(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}
	out, err := h.service.CreateDrink(r.Context(), d)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, out)
}

func (h *Handler) updateDrink(w http.ResponseWriter, r *http.Request) {
	var d domain.Drink
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		httpx.WriteProblem(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}
	d.ID = chi.URLParam(r, "drinkID")
	if err := h.service.UpdateDrink(r.Context(), d); err != nil {
		httpx.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
