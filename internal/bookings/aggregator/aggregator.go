package aggregator

import (
	"sort"

	"reservas/pkg/model"
)

// Aggregate groups booking lines into slots keyed by the exact start instant.
// Two bookings merge only when their starts are identical; the workshop runs
// on a fixed schedule grid, so interval overlap is intentionally ignored.
//
// Within a slot, lines from the same order (matched by ref, falling back to
// display name for lines that arrived through different encodings) collapse
// into one summary with summed persons. The slot's attended flag is an OR
// across its lines: one marked line marks the whole slot.
//
// The slot set, totals and membership do not depend on input order; only the
// first-seen ordering of summaries inside a slot does.
func Aggregate(lines []model.BookingLine) []model.Slot {
	buckets := make(map[int64]*model.Slot)

	for _, line := range lines {
		key := line.Start.UnixNano()

		slot, ok := buckets[key]
		if !ok {
			slot = &model.Slot{
				Start: line.Start,
				End:   line.End,
			}
			buckets[key] = slot
		}

		slot.Persons += line.Persons
		slot.Attended = slot.Attended || line.Attended
		mergeSummary(slot, line)
	}

	slots := make([]model.Slot, 0, len(buckets))
	for _, slot := range buckets {
		slots = append(slots, *slot)
	}
	sort.Slice(slots, func(i, j int) bool {
		return slots[i].Start.Before(slots[j].Start)
	})

	return slots
}

func mergeSummary(slot *model.Slot, line model.BookingLine) {
	for i := range slot.Orders {
		if slot.Orders[i].OrderRef == line.OrderRef ||
			(line.OrderName != "" && slot.Orders[i].Name == line.OrderName) {
			slot.Orders[i].Persons += line.Persons
			return
		}
	}

	slot.Orders = append(slot.Orders, model.OrderSummary{
		OrderRef: line.OrderRef,
		Name:     line.OrderName,
		Persons:  line.Persons,
	})
}
