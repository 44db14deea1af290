package service

import (
	"context"
	"time"

	"reservas/pkg/kafka"
)

// AttendanceEvent is emitted on every successful attendance change so other
// systems (reporting, notifications) can follow along without polling the
// commerce platform.
type AttendanceEvent struct {
	OrderRef string    `json:"order_ref"`
	SlotKey  string    `json:"slot_key"`
	User     string    `json:"user"`
	Present  bool      `json:"present"`
	At       time.Time `json:"at"`
}

type Publisher interface {
	AttendanceChanged(ctx context.Context, event AttendanceEvent) error
}

type KafkaPublisher struct {
	producer *kafka.Producer
}

func NewKafkaPublisher(producer *kafka.Producer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

func (p *KafkaPublisher) AttendanceChanged(ctx context.Context, event AttendanceEvent) error {
	msg, err := kafka.NewMessage().
		WithKey(event.OrderRef).
		WithEventType("attendance.changed").
		WithSource("reservas").
		WithJSON(event).
		Build()
	if err != nil {
		return err
	}

	return p.producer.Publish(ctx, msg)
}

// NoopPublisher stands in when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) AttendanceChanged(context.Context, AttendanceEvent) error {
	return nil
}
