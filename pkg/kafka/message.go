package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Message is one event destined for the attendance topic.
type Message struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

const (
	HeaderEventID   = "event-id"
	HeaderEventType = "event-type"
	HeaderSource    = "source"
)

type MessageBuilder struct {
	msg Message
	err error
}

func NewMessage() *MessageBuilder {
	return &MessageBuilder{
		msg: Message{
			Headers: map[string]string{
				HeaderEventID: uuid.NewString(),
			},
			Timestamp: time.Now(),
		},
	}
}

func (b *MessageBuilder) WithKey(key string) *MessageBuilder {
	b.msg.Key = key
	return b
}

func (b *MessageBuilder) WithEventType(eventType string) *MessageBuilder {
	b.msg.Headers[HeaderEventType] = eventType
	return b
}

func (b *MessageBuilder) WithSource(source string) *MessageBuilder {
	b.msg.Headers[HeaderSource] = source
	return b
}

// WithJSON marshals the payload; the error surfaces from Build.
func (b *MessageBuilder) WithJSON(payload any) *MessageBuilder {
	data, err := json.Marshal(payload)
	if err != nil {
		b.err = err
		return b
	}
	b.msg.Value = data
	return b
}

func (b *MessageBuilder) Build() (Message, error) {
	if b.err != nil {
		return Message{}, b.err
	}
	if b.msg.Key == "" {
		return Message{}, ErrEmptyKey
	}
	if len(b.msg.Value) == 0 {
		return Message{}, ErrEmptyValue
	}
	return b.msg, nil
}
