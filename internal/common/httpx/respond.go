package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"pos-system/internal/domain"
)

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteProblem writes the shared error shape (simplified RFC7807).
func WriteProblem(w http.ResponseWriter, code int, typ, detail string) {
	WriteJSON(w, code, map[string]any{
		"type":   typ,
		"title":  http.StatusText(code),
		"status": code,
		"detail": detail,
	})
}

// WriteError maps a domain error onto the right status code.
func WriteError(w http.ResponseWriter, err error) {
	var (
		validation   *domain.ValidationError
		conflict     *domain.ConflictError
		accessDenied *domain.AccessDeniedError
		notFound     *domain.NotFoundError
		insufficient *domain.InsufficientPaymentError
	)
	switch {
	case errors.As(err, &validation):
		WriteProblem(w, http.StatusBadRequest, "validation_error", validation.Msg)
	case errors.As(err, &insufficient):
		WriteProblem(w, http.StatusConflict, "insufficient_payment", insufficient.Error())
	case errors.As(err, &conflict):
		WriteProblem(w, http.StatusConflict, "conflict", conflict.Msg)
	case errors.As(err, &accessDenied):
		WriteProblem(w, http.StatusForbidden, "access_denied", accessDenied.Msg)
	case errors.As(err, &notFound):
		WriteProblem(w, http.StatusNotFound, "not_found", notFound.Error())
	case errors.Is(err, domain.ErrVersionConflict):
		WriteProblem(w, http.StatusConflict, "version_conflict", err.Error())
	default:
		WriteProblem(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
