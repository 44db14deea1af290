package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"reservas/internal/bookings/parser"
	"reservas/internal/bookings/repository"
	"reservas/internal/bookings/validator"
	"reservas/pkg/config"
	apperrors "reservas/pkg/errors"
	"reservas/pkg/logger"
	"reservas/pkg/model"
)

const testSKU = "588000000204"

type mockOrderSource struct {
	orders []model.Order
	err    error
}

func (m *mockOrderSource) EachOrder(ctx context.Context, fn func(model.Order) error) error {
	if m.err != nil {
		return m.err
	}
	for _, o := range m.orders {
		if err := fn(o); err != nil {
			return err
		}
	}
	return nil
}

type mockAttendanceRepo struct {
	attendedKeys map[string]bool

	setCalls   []string
	clearCalls []string
	setErr     error
}

func (m *mockAttendanceRepo) Markers(order *model.Order) []model.Marker { return nil }

func (m *mockAttendanceRepo) Attended(order *model.Order, slotStart time.Time) bool {
	return m.attendedKeys[order.Ref()+"@"+slotStart.UTC().Format(time.RFC3339)]
}

func (m *mockAttendanceRepo) SetAttended(ctx context.Context, orderRef, slotKey, user string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.setCalls = append(m.setCalls, orderRef+"/"+slotKey+"/"+user)
	return nil
}

func (m *mockAttendanceRepo) ClearAttended(ctx context.Context, orderRef, slotKey string) error {
	m.clearCalls = append(m.clearCalls, orderRef+"/"+slotKey)
	return nil
}

var _ repository.AttendanceRepository = (*mockAttendanceRepo)(nil)

type mockPublisher struct {
	events []AttendanceEvent
	err    error
}

func (m *mockPublisher) AttendanceChanged(ctx context.Context, event AttendanceEvent) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		WorkshopSKU:  testSKU,
		SlotCapacity: 15,
		WindowDays:   30,
		Log: logger.New(logger.Config{
			Level:     "error",
			Format:    logger.JSON,
			AddSource: false,
			Service:   "test",
		}),
	}
}

func newTestService(source OrderSource, repo repository.AttendanceRepository, pub Publisher) BookingService {
	cfg := testConfig()
	return NewBookingService(
		source,
		repo,
		parser.New(cfg.WorkshopSKU, cfg.Log),
		validator.NewAttendanceValidator(cfg.Log),
		pub,
		cfg,
	)
}

func workshopItem(qty int, fecha, hora string) model.LineItem {
	return model.LineItem{
		SKU:      testSKU,
		Quantity: qty,
		Properties: []model.Property{
			{Name: "Fecha", Value: fecha},
			{Name: "Hora", Value: hora},
		},
	}
}

var (
	windowStart = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
)

func TestListBookings_MergesOrdersIntoSlots(t *testing.T) {
	source := &mockOrderSource{orders: []model.Order{
		{ID: 1001, Name: "#1001", LineItems: []model.LineItem{workshopItem(3, "2026-09-20", "10:00 AM - 12:00 PM")}},
		{ID: 1002, Name: "#1002", LineItems: []model.LineItem{workshopItem(2, "2026-09-20", "10:00 AM - 12:00 PM")}},
	}}
	svc := newTestService(source, &mockAttendanceRepo{}, &mockPublisher{})

	slots, err := svc.ListBookings(context.Background(), windowStart, windowEnd)
	if err != nil {
		t.Fatalf("ListBookings: %v", err)
	}

	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	if slots[0].Persons != 5 {
		t.Errorf("persons = %d, want 5", slots[0].Persons)
	}
	if len(slots[0].Orders) != 2 {
		t.Errorf("expected 2 order summaries, got %d", len(slots[0].Orders))
	}
}

func TestListBookings_ExcludesNonWorkshopItems(t *testing.T) {
	source := &mockOrderSource{orders: []model.Order{
		{ID: 1001, Name: "#1001", LineItems: []model.LineItem{
			workshopItem(2, "2026-09-20", "10:00 AM - 12:00 PM"),
			{SKU: "mug-001", Quantity: 4},
		}},
		{ID: 1002, Name: "#1002", LineItems: []model.LineItem{
			{SKU: "tshirt-001", Quantity: 1},
		}},
	}}
	svc := newTestService(source, &mockAttendanceRepo{}, &mockPublisher{})

	slots, err := svc.ListBookings(context.Background(), windowStart, windowEnd)
	if err != nil {
		t.Fatalf("ListBookings: %v", err)
	}

	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	if slots[0].Persons != 2 {
		t.Errorf("persons = %d, want 2 (merchandise must not count)", slots[0].Persons)
	}
	if len(slots[0].Orders) != 1 {
		t.Errorf("expected 1 summary, got %d", len(slots[0].Orders))
	}
}

func TestListBookings_WindowFiltersOnBookingStart(t *testing.T) {
	source := &mockOrderSource{orders: []model.Order{
		{ID: 1001, Name: "#1001", LineItems: []model.LineItem{workshopItem(1, "2026-09-20", "10:00 AM - 12:00 PM")}},
		{ID: 1002, Name: "#1002", LineItems: []model.LineItem{workshopItem(1, "2026-12-24", "10:00 AM - 12:00 PM")}},
		{ID: 1003, Name: "#1003", LineItems: []model.LineItem{workshopItem(1, "2026-08-01", "10:00 AM - 12:00 PM")}},
	}}
	svc := newTestService(source, &mockAttendanceRepo{}, &mockPublisher{})

	slots, err := svc.ListBookings(context.Background(), windowStart, windowEnd)
	if err != nil {
		t.Fatalf("ListBookings: %v", err)
	}

	if len(slots) != 1 {
		t.Fatalf("expected 1 slot inside the window, got %d", len(slots))
	}
	want := time.Date(2026, 9, 20, 10, 0, 0, 0, time.UTC)
	if !slots[0].Start.Equal(want) {
		t.Errorf("slot start = %v, want %v", slots[0].Start, want)
	}
}

func TestListBookings_MalformedLinesAreDropped(t *testing.T) {
	source := &mockOrderSource{orders: []model.Order{
		{ID: 1001, Name: "#1001", LineItems: []model.LineItem{workshopItem(2, "2026-09-20", "10:00 AM - 12:00 PM")}},
		{ID: 1002, Name: "#1002", LineItems: []model.LineItem{workshopItem(1, "someday", "later")}},
	}}
	svc := newTestService(source, &mockAttendanceRepo{}, &mockPublisher{})

	slots, err := svc.ListBookings(context.Background(), windowStart, windowEnd)
	if err != nil {
		t.Fatalf("ListBookings: %v", err)
	}
	if len(slots) != 1 || slots[0].Persons != 2 {
		t.Fatalf("malformed line leaked into results: %+v", slots)
	}
}

func TestListBookings_AttendedFlagFromRepository(t *testing.T) {
	source := &mockOrderSource{orders: []model.Order{
		{ID: 1001, Name: "#1001", LineItems: []model.LineItem{workshopItem(2, "2026-09-20", "10:00 AM - 12:00 PM")}},
		{ID: 1002, Name: "#1002", LineItems: []model.LineItem{workshopItem(1, "2026-09-21", "10:00 AM - 12:00 PM")}},
	}}
	repo := &mockAttendanceRepo{attendedKeys: map[string]bool{
		"1001@2026-09-20T10:00:00Z": true,
	}}
	svc := newTestService(source, repo, &mockPublisher{})

	slots, err := svc.ListBookings(context.Background(), windowStart, windowEnd)
	if err != nil {
		t.Fatalf("ListBookings: %v", err)
	}

	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if !slots[0].Attended {
		t.Error("marked slot should report attended")
	}
	if slots[1].Attended {
		t.Error("unmarked slot should not report attended")
	}
}

func TestListBookings_SourceFailurePropagates(t *testing.T) {
	sourceErr := apperrors.FetchFailedStatus(502, "bad gateway")
	svc := newTestService(&mockOrderSource{err: sourceErr}, &mockAttendanceRepo{}, &mockPublisher{})

	_, err := svc.ListBookings(context.Background(), windowStart, windowEnd)
	if !errors.Is(err, sourceErr) {
		t.Fatalf("err = %v, want the source error", err)
	}
}

func TestSetAttendance_SetAndClearDispatch(t *testing.T) {
	repo := &mockAttendanceRepo{}
	pub := &mockPublisher{}
	svc := newTestService(&mockOrderSource{}, repo, pub)

	ctx := context.Background()
	if err := svc.SetAttendance(ctx, "1001", "2026-09-20T10:00:00Z", "alice", true); err != nil {
		t.Fatalf("SetAttendance(present): %v", err)
	}
	if err := svc.SetAttendance(ctx, "1001", "2026-09-20T10:00:00Z", "alice", false); err != nil {
		t.Fatalf("SetAttendance(absent): %v", err)
	}

	if len(repo.setCalls) != 1 || repo.setCalls[0] != "1001/2026-09-20T10:00:00Z/alice" {
		t.Errorf("set calls = %v", repo.setCalls)
	}
	if len(repo.clearCalls) != 1 || repo.clearCalls[0] != "1001/2026-09-20T10:00:00Z" {
		t.Errorf("clear calls = %v", repo.clearCalls)
	}

	if len(pub.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(pub.events))
	}
	if !pub.events[0].Present || pub.events[1].Present {
		t.Errorf("event presence flags = %v, %v", pub.events[0].Present, pub.events[1].Present)
	}
}

func TestSetAttendance_ValidatesBeforeUpstream(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := newTestService(&mockOrderSource{}, repo, &mockPublisher{})

	tests := []struct {
		name     string
		orderRef string
		slotKey  string
		user     string
	}{
		{name: "missing order ref", orderRef: "", slotKey: "2026-09-20T10:00:00Z", user: "alice"},
		{name: "non-numeric order ref", orderRef: "order-one", slotKey: "2026-09-20T10:00:00Z", user: "alice"},
		{name: "missing slot key", orderRef: "1001", slotKey: "", user: "alice"},
		{name: "slot key not a timestamp", orderRef: "1001", slotKey: "tomorrow at ten", user: "alice"},
		{name: "missing user", orderRef: "1001", slotKey: "2026-09-20T10:00:00Z", user: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.SetAttendance(context.Background(), tt.orderRef, tt.slotKey, tt.user, true)
			if err == nil {
				t.Fatal("expected validation error")
			}
			appErr := apperrors.AsAppError(err)
			if appErr.Code != apperrors.CodeValidation {
				t.Errorf("code = %s, want %s", appErr.Code, apperrors.CodeValidation)
			}
		})
	}

	if len(repo.setCalls) != 0 || len(repo.clearCalls) != 0 {
		t.Errorf("upstream was called despite validation failures: %v %v", repo.setCalls, repo.clearCalls)
	}
}

func TestSetAttendance_AcceptsGidRef(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := newTestService(&mockOrderSource{}, repo, &mockPublisher{})

	err := svc.SetAttendance(context.Background(), "gid://shopify/Order/1001", "2026-09-20T10:00:00Z", "alice", true)
	if err != nil {
		t.Fatalf("SetAttendance: %v", err)
	}
	if len(repo.setCalls) != 1 {
		t.Errorf("set calls = %v", repo.setCalls)
	}
}

func TestSetAttendance_RepositoryFailurePropagates(t *testing.T) {
	repoErr := apperrors.WriteFailed(422, "order is archived")
	repo := &mockAttendanceRepo{setErr: repoErr}
	pub := &mockPublisher{}
	svc := newTestService(&mockOrderSource{}, repo, pub)

	err := svc.SetAttendance(context.Background(), "1001", "2026-09-20T10:00:00Z", "alice", true)
	if !errors.Is(err, repoErr) {
		t.Fatalf("err = %v, want the repository error", err)
	}
	if len(pub.events) != 0 {
		t.Errorf("event published despite failed write: %v", pub.events)
	}
}

func TestSetAttendance_PublishFailureDoesNotFailToggle(t *testing.T) {
	repo := &mockAttendanceRepo{}
	pub := &mockPublisher{err: errors.New("brokers unreachable")}
	svc := newTestService(&mockOrderSource{}, repo, pub)

	if err := svc.SetAttendance(context.Background(), "1001", "2026-09-20T10:00:00Z", "alice", true); err != nil {
		t.Fatalf("SetAttendance: %v", err)
	}
	if len(repo.setCalls) != 1 {
		t.Errorf("set calls = %v", repo.setCalls)
	}
}

func TestDefaultWindow(t *testing.T) {
	svc := newTestService(&mockOrderSource{}, &mockAttendanceRepo{}, &mockPublisher{})

	start, end := svc.DefaultWindow()

	if start.Hour() != 0 || start.Minute() != 0 || start.Second() != 0 {
		t.Errorf("window start %v is not midnight", start)
	}
	if start.Location() != time.UTC {
		t.Errorf("window start location = %v, want UTC", start.Location())
	}
	if got := end.Sub(start); got != 30*24*time.Hour {
		t.Errorf("window length = %v, want 720h", got)
	}
}
