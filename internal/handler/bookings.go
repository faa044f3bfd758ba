package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/availability"
	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/booking"
	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/domain"
)

func (h *Handler) SubmitBooking(w http.ResponseWriter, r *http.Request) {
	var in booking.Input
	if err := h.readJSON(r, &in); err != nil {
		h.errorResponse(w, r, "Invalid request body.")
		return
	}

	b, err := h.bookings.Create(r.Context(), h.policy, in)
	if err != nil {
		h.bookingError(w, r, err)
		return
	}

	h.successResponse(w, r, "Your tour has been booked.", b)
}

func (h *Handler) GetBookings(w http.ResponseWriter, r *http.Request) {
	f, err := parseBookingFilter(r.URL.Query())
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	page, err := h.bookings.List(r.Context(), f)
	if err != nil {
		h.bookingError(w, r, err)
		return
	}

	h.successResponse(w, r, "Bookings loaded.", page)
}

func (h *Handler) ExportBookings(w http.ResponseWriter, r *http.Request) {
	f, err := parseBookingFilter(r.URL.Query())
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	// buffered so that a failed export can still be reported as JSON
	var buf bytes.Buffer
	if err := h.bookings.ExportCSV(r.Context(), &buf, f); err != nil {
		h.bookingError(w, r, err)
		return
	}

	filename := fmt.Sprintf("bookings-%s.csv", domain.DateOf(h.policy.Now(h.now())))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logInternalServerError(r, err)
	}
}

func (h *Handler) GetBookingStatistics(w http.ResponseWriter, r *http.Request) {
	from, err := optionalDate(r.URL.Query(), "dateFrom")
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	to, err := optionalDate(r.URL.Query(), "dateTo")
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	stats, err := h.bookings.Statistics(r.Context(), from, to)
	if err != nil {
		h.bookingError(w, r, err)
		return
	}

	h.successResponse(w, r, "Statistics loaded.", stats)
}

func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id := r.Context().Value(BookingIDCtx).(int64)

	b, err := h.bookings.Get(r.Context(), id)
	if err != nil {
		h.bookingError(w, r, err)
		return
	}

	h.successResponse(w, r, "Booking loaded.", b)
}

func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id := r.Context().Value(BookingIDCtx).(int64)

	var req struct {
		Notify *bool `json:"notify"`
	}
	if err := h.readJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.badRequest(w, r, err)
		return
	}
	notify := req.Notify == nil || *req.Notify

	b, err := h.bookings.Cancel(r.Context(), id, notify)
	if err != nil {
		h.bookingError(w, r, err)
		return
	}

	h.successResponse(w, r, "Booking cancelled.", b)
}

func (h *Handler) UpdateBookingNotes(w http.ResponseWriter, r *http.Request) {
	id := r.Context().Value(BookingIDCtx).(int64)

	var req struct {
		Notes *string `json:"notes" validate:"required"`
	}
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.bookings.UpdateNotes(r.Context(), id, *req.Notes); err != nil {
		h.bookingError(w, r, err)
		return
	}

	h.successResponse(w, r, "Notes updated.", nil)
}

func (h *Handler) ResendConfirmation(w http.ResponseWriter, r *http.Request) {
	id := r.Context().Value(BookingIDCtx).(int64)

	b, err := h.bookings.ResendConfirmation(r.Context(), id)
	if err != nil {
		h.bookingError(w, r, err)
		return
	}

	h.successResponse(w, r, fmt.Sprintf("Confirmation email resent to %s.", b.Email), nil)
}

// bookingError reports an error of the booking service.
func (h *Handler) bookingError(w http.ResponseWriter, r *http.Request, err error) {
	var validation *booking.ValidationError
	if errors.As(err, &validation) {
		h.failureResponse(w, r, validation.Message, map[string]string{
			"code":  string(validation.Code),
			"field": validation.Field,
		})
		return
	}

	var unavailable *availability.SlotUnavailableError
	if errors.As(err, &unavailable) {
		h.failureResponse(w, r, unavailable.Message, map[string]string{
			"code": string(unavailable.Reason),
		})
		return
	}

	switch {
	case errors.Is(err, booking.ErrNotFound), errors.Is(err, booking.ErrAlreadyCancelled):
		h.errorResponse(w, r, err.Error())
	default:
		h.internalServerError(w, r, err)
	}
}

func parseBookingFilter(q url.Values) (domain.BookingFilter, error) {
	f := domain.BookingFilter{
		Search:  q.Get("search"),
		OrderBy: q.Get("orderBy"),
		Order:   q.Get("order"),
	}

	if status := q.Get("status"); status != "" {
		f.Status = domain.BookingStatus(status)
		if !f.Status.Valid() {
			return f, fmt.Errorf("Invalid status %q.", status)
		}
	}

	var err error
	if f.DateFrom, err = optionalDate(q, "dateFrom"); err != nil {
		return f, err
	}
	if f.DateTo, err = optionalDate(q, "dateTo"); err != nil {
		return f, err
	}
	if f.Page, err = optionalInt(q, "page"); err != nil {
		return f, err
	}
	if f.PerPage, err = optionalInt(q, "perPage"); err != nil {
		return f, err
	}

	return booking.NormalizeFilter(f), nil
}

func optionalDate(q url.Values, key string) (*domain.Date, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(v)
	if err != nil {
		return nil, fmt.Errorf("Invalid %s, expected YYYY-MM-DD.", key)
	}
	return &d, nil
}

func optionalInt(q url.Values, key string) (int, error) {
	v := q.Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("Invalid %s.", key)
	}
	return n, nil
}
