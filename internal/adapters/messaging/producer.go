package messaging

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// Event names published to the notification topic. Consumers (SMS, email,
// push) react to these outside this service.
const (
	EventOTPRequested      = "otp.requested"
	EventApplicationStatus = "application.status_changed"
	EventPaymentRecorded   = "payment.recorded"
	EventLoanDisbursed     = "loan.disbursed"
	EventLoanOverdue       = "loan.overdue"
	EventEMIDueReminder    = "emi.due_reminder"
)

// Event is the envelope written to Kafka. Payload carries event-specific
// fields and must be JSON-serializable.
type Event struct {
	Name       string                 `json:"name"`
	OccurredAt time.Time              `json:"occurred_at"`
	Payload    map[string]interface{} `json:"payload"`
}

// Producer publishes notification events. A nil Producer is valid and
// publishes nothing, so callers never need to guard against a disabled
// Kafka setup.
type Producer struct {
	writer *kafka.Writer
}

// NewProducer creates a Kafka producer for the given broker and topic.
// Returns nil when broker is empty (Kafka disabled).
func NewProducer(broker, topic string) *Producer {
	if broker == "" {
		return nil
	}

	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(broker),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			Async:        false,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// Publish writes one event keyed by the given key (usually a user or loan
// ID so related events stay ordered within a partition). Publish failures
// are logged and swallowed: notification delivery must never fail the
// business operation that triggered it.
func (p *Producer) Publish(name, key string, payload map[string]interface{}) {
	if p == nil || p.writer == nil {
		return
	}

	value, err := json.Marshal(Event{
		Name:       name,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	})
	if err != nil {
		log.Printf("kafka: marshal event %s failed: %v", name, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	}); err != nil {
		log.Printf("kafka: publish %s failed: %v", name, err)
	}
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
