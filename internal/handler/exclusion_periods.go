package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/domain"
	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/utils"
)

func (h *Handler) GetAllExclusionPeriods(w http.ResponseWriter, r *http.Request) {
	eps, err := h.repository.GetAllExclusionPeriods(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Exclusion periods loaded.", eps)
}

func (h *Handler) CreateExclusionPeriod(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name            string       `json:"name" validate:"required,max=255"`
		StartDate       *domain.Date `json:"startDate" validate:"required"`
		EndDate         *domain.Date `json:"endDate" validate:"required"`
		RecurringYearly bool         `json:"recurringYearly"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	ep := &domain.ExclusionPeriod{
		Name:            strings.TrimSpace(req.Name),
		StartDate:       *req.StartDate,
		EndDate:         *req.EndDate,
		RecurringYearly: req.RecurringYearly,
	}

	if err := utils.ValidateExclusionPeriod(ep); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateExclusionPeriod(r.Context(), ep); err != nil {
		h.exclusionPeriodError(w, r, err)
		return
	}

	h.successResponse(w, r, "Exclusion period created.", ep)
}

func (h *Handler) GetExclusionPeriod(w http.ResponseWriter, r *http.Request) {
	ep := r.Context().Value(ExclusionPeriodCtx).(*domain.ExclusionPeriod)

	h.successResponse(w, r, "Exclusion period loaded.", ep)
}

func (h *Handler) UpdateExclusionPeriod(w http.ResponseWriter, r *http.Request) {
	ep := r.Context().Value(ExclusionPeriodCtx).(*domain.ExclusionPeriod)

	var req struct {
		Name            *string      `json:"name" validate:"omitempty,max=255"`
		StartDate       *domain.Date `json:"startDate"`
		EndDate         *domain.Date `json:"endDate"`
		RecurringYearly *bool        `json:"recurringYearly"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Name != nil {
		ep.Name = strings.TrimSpace(*req.Name)
	}
	if req.StartDate != nil {
		ep.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		ep.EndDate = *req.EndDate
	}
	if req.RecurringYearly != nil {
		ep.RecurringYearly = *req.RecurringYearly
	}

	if err := utils.ValidateExclusionPeriod(ep); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdateExclusionPeriod(r.Context(), ep); err != nil {
		h.exclusionPeriodError(w, r, err)
		return
	}

	h.successResponse(w, r, "Exclusion period updated.", ep)
}

func (h *Handler) DeleteExclusionPeriod(w http.ResponseWriter, r *http.Request) {
	ep := r.Context().Value(ExclusionPeriodCtx).(*domain.ExclusionPeriod)

	if err := h.repository.DeleteExclusionPeriod(r.Context(), ep.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Exclusion period deleted.", nil)
}

func (h *Handler) exclusionPeriodError(w http.ResponseWriter, r *http.Request, err error) {
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr):
		switch pgErr.ConstraintName {
		case "exclusion_periods_range_check":
			h.errorResponse(w, r, "End date must be on or after start date.")
		default:
			h.internalServerError(w, r, err)
		}
	case errors.Is(err, sql.ErrNoRows):
		h.errorResponse(w, r, "The period was changed by someone else, please reload and try again.")
	default:
		h.internalServerError(w, r, err)
	}
}
