package handler

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/domain"
)

func (h *Handler) GetAllBlackoutDates(w http.ResponseWriter, r *http.Request) {
	bds, err := h.repository.GetAllBlackoutDates(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Blackout dates loaded.", bds)
}

func (h *Handler) CreateBlackoutDate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date   *domain.Date `json:"date" validate:"required"`
		Reason string       `json:"reason" validate:"max=255"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	bd := &domain.BlackoutDate{
		Date:   *req.Date,
		Reason: req.Reason,
	}

	if err := h.repository.CreateBlackoutDate(r.Context(), bd); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "blackout_dates_date_key":
				h.errorResponse(w, r, "This date is already blacked out.")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "Blackout date added.", bd)
}

func (h *Handler) DeleteBlackoutDate(w http.ResponseWriter, r *http.Request) {
	bd := r.Context().Value(BlackoutDateCtx).(*domain.BlackoutDate)

	if err := h.repository.DeleteBlackoutDate(r.Context(), bd.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Blackout date removed.", nil)
}
