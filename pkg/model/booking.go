package model

import (
	"time"
)

// BookingLine is one parsed reservation derived from a single order line
// item. It is rebuilt from upstream state on every read and never persisted.
type BookingLine struct {
	OrderRef  string    `json:"order_ref"`
	OrderName string    `json:"order_name"`
	Persons   int       `json:"persons"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Attended  bool      `json:"attended"`
}

// Slot is a workshop time bucket aggregating every booking line that shares
// the exact same start instant. Two bookings merge only on byte-identical
// starts; the workshop runs on a fixed schedule grid, so interval overlap is
// deliberately not considered.
type Slot struct {
	Start    time.Time      `json:"start"`
	End      time.Time      `json:"end"`
	Persons  int            `json:"persons"`
	Orders   []OrderSummary `json:"orders"`
	Attended bool           `json:"attended"`
}

// OrderSummary is the per-order rollup shown inside a slot.
type OrderSummary struct {
	OrderRef string `json:"order_ref"`
	Name     string `json:"name"`
	Persons  int    `json:"persons"`
}

// Marker is the upstream-persisted fact that a specific order/slot pair was
// attended, including which staff user recorded it and when.
type Marker struct {
	SlotKey string    `json:"slot_key"`
	User    string    `json:"user"`
	At      time.Time `json:"at"`
}

// AttendanceRequest is the body of the attendance toggle endpoint. The acting
// user comes from the session, not the payload.
type AttendanceRequest struct {
	OrderRef string `json:"order_ref" validate:"required"`
	SlotKey  string `json:"slot_key" validate:"required"`
	Present  *bool  `json:"present" validate:"required"`
}
