// Package messaging publica los eventos del punto de venta en Kafka con trazas propagadas en los headers.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	otelkafka "github.com/Trendyol/otel-kafka-konsumer"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/pos-api/internal/application/events"
)

var _ events.Publisher = (*KafkaPublisher)(nil)

// Producer lo que el publisher necesita de un writer de Kafka (otelkafka.Writer lo cumple).
type Producer interface {
	WriteMessage(ctx context.Context, msg kafka.Message) error
	Close() error
}

// KafkaConfig conexión al broker.
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	ClientID     string
	BatchTimeout time.Duration
	WriteTimeout time.Duration // tope de cada Publish, reintentos incluidos
}

// DefaultWriteTimeout tope de Publish cuando no se configura otro.
const DefaultWriteTimeout = 2 * time.Second

// KafkaPublisher implementa events.Publisher: un mensaje por evento, con key = Event.Key.
type KafkaPublisher struct {
	producer Producer
	topic    string
	timeout  time.Duration
}

// NewKafkaPublisher arma el writer de kafka-go envuelto con otelkafka para propagar la traza.
func NewKafkaPublisher(cfg KafkaConfig, tp trace.TracerProvider) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		return nil, fmt.Errorf("kafka: brokers y topic son obligatorios")
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 50 * time.Millisecond
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	base := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           cfg.BatchTimeout,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		MaxAttempts:            3,
		WriteTimeout:           cfg.WriteTimeout,
	}
	writer, err := otelkafka.NewWriter(base,
		otelkafka.WithTracerProvider(tp),
		otelkafka.WithPropagator(propagation.TraceContext{}),
		otelkafka.WithAttributes(
			[]attribute.KeyValue{
				semconv.MessagingDestinationNameKey.String(cfg.Topic),
				attribute.String("messaging.kafka.client_id", cfg.ClientID),
			},
		),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka: crear writer: %w", err)
	}
	return NewKafkaPublisherWithProducer(writer, cfg.Topic).WithWriteTimeout(cfg.WriteTimeout), nil
}

// NewKafkaPublisherWithProducer usa un producer ya construido.
func NewKafkaPublisherWithProducer(p Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: p, topic: topic, timeout: DefaultWriteTimeout}
}

// WithWriteTimeout cambia el tope de cada Publish. d <= 0 deja el valor por defecto.
func (p *KafkaPublisher) WithWriteTimeout(d time.Duration) *KafkaPublisher {
	if d > 0 {
		p.timeout = d
	}
	return p
}

// Publish serializa el evento a JSON y lo escribe con el tipo en el header "event-type".
func (p *KafkaPublisher) Publish(ctx context.Context, evt events.Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("kafka: serializar %s: %w", evt.Type, err)
	}
	msg := kafka.Message{
		Key:   []byte(evt.Key),
		Value: payload,
		Time:  evt.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(evt.Type)},
		},
	}
	// Se publica después del commit: la cancelación de la request no debe cortar el envío,
	// pero tampoco se espera más que timeout aunque el broker no responda.
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()
	if err := p.producer.WriteMessage(wctx, msg); err != nil {
		return fmt.Errorf("kafka: publicar %s en %s: %w", evt.Type, p.topic, err)
	}
	return nil
}

// Close cierra el writer.
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
