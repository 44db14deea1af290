package service

import (
	"context"
	"errors"
	"time"

	"reservas/internal/bookings/aggregator"
	"reservas/internal/bookings/parser"
	"reservas/internal/bookings/repository"
	"reservas/internal/bookings/validator"
	"reservas/pkg/config"
	apperrors "reservas/pkg/errors"
	"reservas/pkg/model"
)

// OrderSource streams orders from the commerce platform.
type OrderSource interface {
	EachOrder(ctx context.Context, fn func(model.Order) error) error
}

// BookingService is the query façade: the only surface the web layer calls.
type BookingService interface {
	ListBookings(ctx context.Context, windowStart, windowEnd time.Time) ([]model.Slot, error)
	ListBookingLines(ctx context.Context, windowStart, windowEnd time.Time) ([]model.BookingLine, error)
	SetAttendance(ctx context.Context, orderRef, slotKey, user string, present bool) error
	DefaultWindow() (time.Time, time.Time)
}

type bookingService struct {
	source    OrderSource
	repo      repository.AttendanceRepository
	parser    *parser.Parser
	validator *validator.AttendanceValidator
	publisher Publisher
	cfg       *config.Config
}

func NewBookingService(
	source OrderSource,
	repo repository.AttendanceRepository,
	p *parser.Parser,
	v *validator.AttendanceValidator,
	publisher Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		source:    source,
		repo:      repo,
		parser:    p,
		validator: v,
		publisher: publisher,
		cfg:       cfg,
	}
}

// DefaultWindow is today at midnight UTC through the configured horizon.
func (s *bookingService) DefaultWindow() (time.Time, time.Time) {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, s.cfg.WindowDays)
}

// ListBookings fetches every order, parses booking lines, keeps the ones
// whose start falls inside the window, and aggregates them into slots.
//
// The window filters on parsed booking time, never on order creation time:
// workshop seats are routinely bought weeks ahead, so creation-date filtering
// upstream would silently drop valid bookings.
func (s *bookingService) ListBookings(ctx context.Context, windowStart, windowEnd time.Time) ([]model.Slot, error) {
	lines, err := s.collectLines(ctx, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}
	return aggregator.Aggregate(lines), nil
}

// ListBookingLines exposes the raw parsed lines for the debug endpoint.
func (s *bookingService) ListBookingLines(ctx context.Context, windowStart, windowEnd time.Time) ([]model.BookingLine, error) {
	return s.collectLines(ctx, windowStart, windowEnd)
}

func (s *bookingService) collectLines(ctx context.Context, windowStart, windowEnd time.Time) ([]model.BookingLine, error) {
	started := time.Now()
	var lines []model.BookingLine
	var orders, malformed int

	err := s.source.EachOrder(ctx, func(order model.Order) error {
		orders++
		for _, li := range order.LineItems {
			out := s.parser.Parse(li)
			switch out.Status {
			case parser.StatusNotApplicable:
				continue
			case parser.StatusMalformed:
				malformed++
				continue
			}

			if out.Start.Before(windowStart) || out.Start.After(windowEnd) {
				continue
			}

			lines = append(lines, model.BookingLine{
				OrderRef:  order.Ref(),
				OrderName: order.Name,
				Persons:   out.Persons,
				Start:     out.Start,
				End:       out.End,
				Attended:  s.repo.Attended(&order, out.Start),
			})
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings", "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Bookings collected",
		"orders", orders,
		"lines", len(lines),
		"malformed", malformed,
		"window_start", windowStart,
		"window_end", windowEnd,
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return lines, nil
}

// SetAttendance toggles the attendance marker for one order/slot pair.
// Validation failures surface before any upstream call; the attendance event
// is best effort and never fails the toggle.
func (s *bookingService) SetAttendance(ctx context.Context, orderRef, slotKey, user string, present bool) error {
	if err := s.validator.Validate(orderRef, slotKey, user); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			details := make(map[string]any, len(validationErrs))
			for _, ve := range validationErrs {
				details[ve.Field] = ve.Message
			}
			return apperrors.Validation("invalid attendance request", details)
		}
		return apperrors.Internal("attendance validation failed", err)
	}

	var err error
	if present {
		err = s.repo.SetAttended(ctx, orderRef, slotKey, user)
	} else {
		err = s.repo.ClearAttended(ctx, orderRef, slotKey)
	}
	if err != nil {
		s.cfg.Log.Error("Failed to update attendance",
			"order_ref", orderRef,
			"slot_key", slotKey,
			"present", present,
			"error", err,
		)
		return err
	}

	event := AttendanceEvent{
		OrderRef: orderRef,
		SlotKey:  slotKey,
		User:     user,
		Present:  present,
		At:       time.Now().UTC(),
	}
	if err := s.publisher.AttendanceChanged(ctx, event); err != nil {
		s.cfg.Log.Warn("Failed to publish attendance event",
			"order_ref", orderRef,
			"slot_key", slotKey,
			"error", err,
		)
	}

	return nil
}
