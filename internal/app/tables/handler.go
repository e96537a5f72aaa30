package tables

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pos-system/internal/app/staff"
	"pos-system/internal/common/httpx"
)

type Handler struct {
	service ServiceInterface
}

func NewHandler(service ServiceInterface) *Handler { return &Handler{service: service} }

func (h *Handler) Register(r chi.Router) {
	r.Get("/tables", h.list)
	r.Get("/tables/assignable-employees", h.assignable)
	r.Post("/tables/{tableID}/assign", h.assign)
	r.Post("/tables/{tableID}/reset", h.reset)
	r.Get("/tables/{tableID}/order", h.openOccupied)
}

// RegisterAdmin mounts the admin-only routes.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/tables", h.create)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	identity, _ := staff.IdentityFrom(r.Context())
	filter := Filter(r.URL.Query().Get("filter"))
	out, err := h.service.ListTables(r.Context(), filter, identity)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) assignable(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.AssignableEmployees(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

type assignRequest struct {
	WaiterID string `json:"waiter_id,omitempty"`
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	identity, _ := staff.IdentityFrom(r.Context())
	order, err := h.service.Assign(r.Context(), chi.URLParam(r, "tableID"), identity, req.WaiterID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, order)
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reset(r.Context(), chi.URLParam(r, "tableID")); err != nil {
		httpx.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) openOccupied(w http.ResponseWriter, r *http.Request) {
	identity, _ := staff.IdentityFrom(r.Context())
	agg, err := h.service.OpenOccupied(r.Context(), chi.URLParam(r, "tableID"), identity)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, agg)
}

type createTableRequest struct {
	TableNo string `json:"table_no"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteProblem(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}
	t, err := h.service.CreateTable(r.Context(), req.TableNo)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, t)
}
