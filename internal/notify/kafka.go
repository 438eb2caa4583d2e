package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/hackgods/appointment-booking/internal/appointment"
)

const (
	DefaultKafkaTopic    = "appointment.booked"
	eventTypeAppointment = "APPOINTMENT_BOOKED"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes the booking for a downstream notification service.
type Kafka struct {
	writer messageWriter
	topic  string
}

func NewKafka(brokers, topic string) (*Kafka, error) {
	list := SplitBrokers(brokers)
	if len(list) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}
	if topic == "" {
		topic = DefaultKafkaTopic
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(list...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
	return &Kafka{writer: w, topic: topic}, nil
}

type kafkaEvent struct {
	ServiceID  string                         `json:"service_id"`
	TemplateID string                         `json:"template_id"`
	Params     appointment.NotificationParams `json:"template_params"`
}

func (k *Kafka) Notify(ctx context.Context, n appointment.Notification) error {
	payload, err := json.Marshal(kafkaEvent{
		ServiceID:  n.ServiceID,
		TemplateID: n.TemplateID,
		Params:     n.Params,
	})
	if err != nil {
		return fmt.Errorf("encode kafka event: %w", err)
	}

	msg := kafka.Message{
		Topic: k.topic,
		Key:   []byte(n.Params.AppointmentID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(n.Params.AppointmentID)},
			{Key: "event_type", Value: []byte(eventTypeAppointment)},
		},
	}
	msg.Headers = injectTraceHeaders(ctx, msg.Headers)

	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", k.topic, err)
	}
	return nil
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}

func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func injectTraceHeaders(ctx context.Context, headers []kafka.Header) []kafka.Header {
	carrier := &headerCarrier{headers: headers}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return carrier.headers
}

type headerCarrier struct {
	headers []kafka.Header
}

func (c *headerCarrier) Get(key string) string {
	for _, h := range c.headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c *headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c.headers))
	for _, h := range c.headers {
		keys = append(keys, h.Key)
	}
	return keys
}

func (c *headerCarrier) Set(key, value string) {
	for i := range c.headers {
		if c.headers[i].Key == key {
			c.headers[i].Value = []byte(value)
			return
		}
	}
	c.headers = append(c.headers, kafka.Header{Key: key, Value: []byte(value)})
}

var _ propagation.TextMapCarrier = (*headerCarrier)(nil)
