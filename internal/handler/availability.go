package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/domain"
)

func (h *Handler) GetAvailableDates(w http.ResponseWriter, r *http.Request) {
	dates, err := h.availability.AvailableDates(r.Context(), h.policy)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Available dates loaded.", dates)
}

func (h *Handler) GetAvailableSlots(w http.ResponseWriter, r *http.Request) {
	d, err := domain.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		h.errorResponse(w, r, "Invalid date.")
		return
	}

	slots, err := h.availability.SlotsFor(r.Context(), d, h.policy)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Available slots loaded.", slots)
}
