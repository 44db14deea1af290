package aggregator

import (
	"math/rand"
	"testing"
	"time"

	"reservas/pkg/model"
)

var slot10 = time.Date(2026, 9, 20, 10, 0, 0, 0, time.UTC)
var slot16 = time.Date(2026, 9, 20, 16, 0, 0, 0, time.UTC)

func line(ref, name string, persons int, start time.Time, attended bool) model.BookingLine {
	return model.BookingLine{
		OrderRef:  ref,
		OrderName: name,
		Persons:   persons,
		Start:     start,
		End:       start.Add(2 * time.Hour),
		Attended:  attended,
	}
}

func TestAggregate_MergesSameStart(t *testing.T) {
	lines := []model.BookingLine{
		line("1001", "#1001", 3, slot10, false),
		line("1002", "#1002", 2, slot10, false),
	}

	slots := Aggregate(lines)

	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	s := slots[0]
	if !s.Start.Equal(slot10) {
		t.Errorf("start = %v, want %v", s.Start, slot10)
	}
	if s.Persons != 5 {
		t.Errorf("persons = %d, want 5", s.Persons)
	}
	if len(s.Orders) != 2 {
		t.Fatalf("expected 2 order summaries, got %d", len(s.Orders))
	}
	if s.Orders[0].Persons != 3 || s.Orders[1].Persons != 2 {
		t.Errorf("summary persons = %d, %d, want 3, 2", s.Orders[0].Persons, s.Orders[1].Persons)
	}
}

func TestAggregate_DistinctStartsStaySeparate(t *testing.T) {
	lines := []model.BookingLine{
		line("1001", "#1001", 3, slot10, false),
		line("1002", "#1002", 2, slot16, false),
	}

	slots := Aggregate(lines)

	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if !slots[0].Start.Equal(slot10) || !slots[1].Start.Equal(slot16) {
		t.Errorf("slots not sorted by start: %v, %v", slots[0].Start, slots[1].Start)
	}
}

func TestAggregate_SameOrderSumsPersons(t *testing.T) {
	// Two line items of one order in the same slot collapse into one summary.
	lines := []model.BookingLine{
		line("1001", "#1001", 2, slot10, false),
		line("1001", "#1001", 1, slot10, false),
	}

	slots := Aggregate(lines)

	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	if len(slots[0].Orders) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(slots[0].Orders))
	}
	if slots[0].Orders[0].Persons != 3 {
		t.Errorf("summary persons = %d, want 3", slots[0].Orders[0].Persons)
	}
	if slots[0].Persons != 3 {
		t.Errorf("slot persons = %d, want 3", slots[0].Persons)
	}
}

func TestAggregate_NameFallbackMerge(t *testing.T) {
	// Lines from different encodings can carry different refs for the same
	// order; the display name still merges them.
	lines := []model.BookingLine{
		line("1001", "#1001", 2, slot10, false),
		line("gid-legacy", "#1001", 1, slot10, false),
	}

	slots := Aggregate(lines)

	if len(slots[0].Orders) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(slots[0].Orders))
	}
	if slots[0].Orders[0].Persons != 3 {
		t.Errorf("summary persons = %d, want 3", slots[0].Orders[0].Persons)
	}
}

func TestAggregate_AttendedIsOrAcrossLines(t *testing.T) {
	lines := []model.BookingLine{
		line("1001", "#1001", 3, slot10, false),
		line("1002", "#1002", 2, slot10, true),
		line("1003", "#1003", 1, slot16, false),
	}

	slots := Aggregate(lines)

	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if !slots[0].Attended {
		t.Error("slot with one attended line should be attended")
	}
	if slots[1].Attended {
		t.Error("slot with no attended lines should not be attended")
	}
}

func TestAggregate_InputOrderIndependent(t *testing.T) {
	base := []model.BookingLine{
		line("1001", "#1001", 3, slot10, false),
		line("1002", "#1002", 2, slot10, true),
		line("1003", "#1003", 4, slot16, false),
		line("1001", "#1001", 1, slot16, false),
	}

	want := Aggregate(base)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffled := make([]model.BookingLine, len(base))
		copy(shuffled, base)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got := Aggregate(shuffled)
		if len(got) != len(want) {
			t.Fatalf("shuffle %d: got %d slots, want %d", i, len(got), len(want))
		}
		for j := range want {
			if !got[j].Start.Equal(want[j].Start) {
				t.Errorf("shuffle %d: slot %d start = %v, want %v", i, j, got[j].Start, want[j].Start)
			}
			if got[j].Persons != want[j].Persons {
				t.Errorf("shuffle %d: slot %d persons = %d, want %d", i, j, got[j].Persons, want[j].Persons)
			}
			if got[j].Attended != want[j].Attended {
				t.Errorf("shuffle %d: slot %d attended = %v, want %v", i, j, got[j].Attended, want[j].Attended)
			}
			if len(got[j].Orders) != len(want[j].Orders) {
				t.Errorf("shuffle %d: slot %d has %d summaries, want %d", i, j, len(got[j].Orders), len(want[j].Orders))
			}
		}
	}
}

func TestAggregate_Empty(t *testing.T) {
	slots := Aggregate(nil)
	if len(slots) != 0 {
		t.Fatalf("expected no slots, got %d", len(slots))
	}
}
