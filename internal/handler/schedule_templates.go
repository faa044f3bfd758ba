package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/domain"
	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/utils"
)

func (h *Handler) GetAllScheduleTemplates(w http.ResponseWriter, r *http.Request) {
	sts, err := h.repository.GetAllScheduleTemplates(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Schedule templates loaded.", sts)
}

func (h *Handler) CreateScheduleTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind         string       `json:"kind" validate:"required,oneof=recurring oneoff"`
		DayOfWeek    *int32       `json:"dayOfWeek" validate:"omitempty,gte=0,lte=6"`
		SpecificDate *domain.Date `json:"specificDate"`
		TimeOfDay    string       `json:"timeOfDay" validate:"required"`
		MaxGroups    int32        `json:"maxGroups" validate:"required,gte=1"`
		IsActive     *bool        `json:"isActive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	st := &domain.ScheduleTemplate{
		Kind:         domain.TemplateKind(req.Kind),
		DayOfWeek:    req.DayOfWeek,
		SpecificDate: req.SpecificDate,
		TimeOfDay:    req.TimeOfDay,
		MaxGroups:    req.MaxGroups,
		IsActive:     req.IsActive == nil || *req.IsActive,
	}

	if err := utils.ValidateScheduleTemplate(st); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateScheduleTemplate(r.Context(), st); err != nil {
		h.scheduleTemplateError(w, r, err)
		return
	}

	h.successResponse(w, r, "Schedule template created.", st)
}

func (h *Handler) GetScheduleTemplate(w http.ResponseWriter, r *http.Request) {
	st := r.Context().Value(ScheduleTemplateCtx).(*domain.ScheduleTemplate)

	h.successResponse(w, r, "Schedule template loaded.", st)
}

func (h *Handler) UpdateScheduleTemplate(w http.ResponseWriter, r *http.Request) {
	st := r.Context().Value(ScheduleTemplateCtx).(*domain.ScheduleTemplate)

	var req struct {
		Kind         *string      `json:"kind" validate:"omitempty,oneof=recurring oneoff"`
		DayOfWeek    *int32       `json:"dayOfWeek" validate:"omitempty,gte=0,lte=6"`
		SpecificDate *domain.Date `json:"specificDate"`
		TimeOfDay    *string      `json:"timeOfDay"`
		MaxGroups    *int32       `json:"maxGroups" validate:"omitempty,gte=1"`
		IsActive     *bool        `json:"isActive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Kind != nil {
		st.Kind = domain.TemplateKind(*req.Kind)
	}
	if req.DayOfWeek != nil {
		st.DayOfWeek = req.DayOfWeek
	}
	if req.SpecificDate != nil {
		st.SpecificDate = req.SpecificDate
	}
	if req.TimeOfDay != nil {
		st.TimeOfDay = *req.TimeOfDay
	}
	if req.MaxGroups != nil {
		st.MaxGroups = *req.MaxGroups
	}
	if req.IsActive != nil {
		st.IsActive = *req.IsActive
	}

	if err := utils.ValidateScheduleTemplate(st); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdateScheduleTemplate(r.Context(), st); err != nil {
		h.scheduleTemplateError(w, r, err)
		return
	}

	h.successResponse(w, r, "Schedule template updated.", st)
}

func (h *Handler) DeleteScheduleTemplate(w http.ResponseWriter, r *http.Request) {
	st := r.Context().Value(ScheduleTemplateCtx).(*domain.ScheduleTemplate)

	if err := h.repository.DeleteScheduleTemplate(r.Context(), st.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Schedule template deleted.", nil)
}

func (h *Handler) scheduleTemplateError(w http.ResponseWriter, r *http.Request, err error) {
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr):
		switch pgErr.ConstraintName {
		case "schedule_templates_kind_check", "schedule_templates_day_of_week_check", "schedule_templates_max_groups_check":
			h.errorResponse(w, r, "The template fields do not match its kind.")
		default:
			h.internalServerError(w, r, err)
		}
	case errors.Is(err, sql.ErrNoRows):
		h.errorResponse(w, r, "The template was changed by someone else, please reload and try again.")
	default:
		h.internalServerError(w, r, err)
	}
}
