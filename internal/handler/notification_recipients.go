package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/domain"
)

func (h *Handler) GetAllNotificationRecipients(w http.ResponseWriter, r *http.Request) {
	nrs, err := h.repository.GetAllNotificationRecipients(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Notification recipients loaded.", nrs)
}

// UpsertNotificationRecipient keys recipients by email, so posting an existing
// address only changes what it is notified about.
func (h *Handler) UpsertNotificationRecipient(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email              string `json:"email" validate:"required,email,max=255"`
		NotifyNewBooking   *bool  `json:"notifyNewBooking"`
		NotifyCancellation *bool  `json:"notifyCancellation"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	nr := &domain.NotificationRecipient{
		Email:              req.Email,
		NotifyNewBooking:   req.NotifyNewBooking == nil || *req.NotifyNewBooking,
		NotifyCancellation: req.NotifyCancellation == nil || *req.NotifyCancellation,
	}

	if err := h.repository.UpsertNotificationRecipient(r.Context(), nr); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Notification recipient saved.", nr)
}

func (h *Handler) DeleteNotificationRecipient(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.errorResponse(w, r, "Invalid recipient ID.")
		return
	}

	if err := h.repository.DeleteNotificationRecipient(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "Notification recipient not found.")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "Notification recipient removed.", nil)
}
