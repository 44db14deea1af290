package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"reservas/internal/auth"
	"reservas/internal/bookings/service"
	apperrors "reservas/pkg/errors"
	httputil "reservas/pkg/http"
	"reservas/pkg/logger"
	"reservas/pkg/model"
)

type BookingHandler struct {
	service  service.BookingService
	guard    auth.Guard
	capacity int
	log      *logger.Logger
}

func NewBookingHandler(svc service.BookingService, guard auth.Guard, capacity int, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service:  svc,
		guard:    guard,
		capacity: capacity,
		log:      log,
	}
}

// slotResponse annotates a slot with the derived overbooked flag; capacity is
// a presentation concern and never stored.
type slotResponse struct {
	model.Slot
	Overbooked bool `json:"overbooked"`
}

type attendanceResponse struct {
	OK bool `json:"ok"`
}

// List returns the aggregated slots for the requested window, defaulting to
// the next 30 days.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	windowStart, windowEnd, err := h.window(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "error", writeErr)
		}
		return
	}

	slots, err := h.service.ListBookings(r.Context(), windowStart, windowEnd)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "error", writeErr)
		}
		return
	}

	out := make([]slotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, slotResponse{
			Slot:       s,
			Overbooked: s.Persons > h.capacity,
		})
	}

	if err := httputil.WriteSuccess(w, out); err != nil {
		h.log.Error("failed to write success response", "handler", "List", "error", err)
	}
}

// Debug returns the raw parsed booking lines, before aggregation.
func (h *BookingHandler) Debug(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	windowStart, windowEnd, err := h.window(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Debug", "error", writeErr)
		}
		return
	}

	lines, err := h.service.ListBookingLines(r.Context(), windowStart, windowEnd)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Debug", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, lines); err != nil {
		h.log.Error("failed to write success response", "handler", "Debug", "error", err)
	}
}

// SetAttendance toggles the attendance marker for one order/slot pair. The
// acting user is the session user, never part of the payload.
func (h *BookingHandler) SetAttendance(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.AttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Invalid request body")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "SetAttendance", "error", writeErr)
		}
		return
	}

	if req.Present == nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("'present' is required")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "SetAttendance", "error", writeErr)
		}
		return
	}

	user := auth.User(r.Context())
	if err := h.service.SetAttendance(r.Context(), req.OrderRef, req.SlotKey, user, *req.Present); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "SetAttendance", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, attendanceResponse{OK: true}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "SetAttendance", "error", err)
	}
}

func (h *BookingHandler) window(r *http.Request) (time.Time, time.Time, error) {
	windowStart, windowEnd := h.service.DefaultWindow()

	query := r.URL.Query()
	if s := query.Get("from"); s != "" {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.InvalidInput("invalid 'from' parameter, must be RFC3339")
		}
		windowStart = parsed
	}
	if s := query.Get("to"); s != "" {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.InvalidInput("invalid 'to' parameter, must be RFC3339")
		}
		windowEnd = parsed
	}

	if !windowStart.Before(windowEnd) {
		return time.Time{}, time.Time{}, apperrors.InvalidInput("'from' must be before 'to'")
	}

	return windowStart, windowEnd, nil
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/bookings", h.guard(h.List))
	router.GET("/api/v1/bookings/debug", h.guard(h.Debug))
	router.POST("/api/v1/bookings/attendance", h.guard(h.SetAttendance))
}
