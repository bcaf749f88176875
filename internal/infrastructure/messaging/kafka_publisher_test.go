package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/application/events"
	"github.com/jhoicas/pos-api/internal/infrastructure/messaging"
)

type fakeProducer struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeProducer) WriteMessage(_ context.Context, msg kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakeProducer) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	prod := &fakeProducer{}
	pub := messaging.NewKafkaPublisherWithProducer(prod, "pos-events")

	evt := events.NewSaleCreated(time.Now(), events.SaleCreated{SaleID: "s-1", TransactionID: "TXN-1", Items: 2})
	require.NoError(t, pub.Publish(context.Background(), evt))

	require.Len(t, prod.msgs, 1)
	msg := prod.msgs[0]
	assert.Equal(t, "s-1", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, events.TypeSaleCreated, string(msg.Headers[0].Value))

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, events.TypeSaleCreated, body["type"])

	require.NoError(t, pub.Close())
	assert.True(t, prod.closed)
}

func TestKafkaPublisher_ErrorDelBroker(t *testing.T) {
	pub := messaging.NewKafkaPublisherWithProducer(&fakeProducer{err: errors.New("broker caído")}, "pos-events")
	err := pub.Publish(context.Background(), events.Event{Type: events.TypeStockChanged, Key: "p-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pos-events")
}

func TestNewKafkaPublisher_ConfigIncompleta(t *testing.T) {
	_, err := messaging.NewKafkaPublisher(messaging.KafkaConfig{Topic: "x"}, nil)
	assert.Error(t, err)
}

type blockingProducer struct{}

func (blockingProducer) WriteMessage(ctx context.Context, _ kafka.Message) error {
	<-ctx.Done()
	return ctx.Err()
}

func (blockingProducer) Close() error { return nil }

func TestKafkaPublisher_BrokerSinRespuestaNoBloquea(t *testing.T) {
	pub := messaging.NewKafkaPublisherWithProducer(blockingProducer{}, "pos-events").
		WithWriteTimeout(50 * time.Millisecond)

	start := time.Now()
	err := pub.Publish(context.Background(), events.Event{Type: events.TypeSaleCreated, Key: "s-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestKafkaPublisher_RequestCanceladaNoCortaElEnvio(t *testing.T) {
	fp := &fakeProducer{}
	pub := messaging.NewKafkaPublisherWithProducer(ctxCheckingProducer{fp}, "pos-events")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, pub.Publish(ctx, events.Event{Type: events.TypeSaleCreated, Key: "s-1"}))
	assert.Len(t, fp.msgs, 1)
}

// ctxCheckingProducer falla si recibe un contexto ya cancelado.
type ctxCheckingProducer struct{ *fakeProducer }

func (p ctxCheckingProducer) WriteMessage(ctx context.Context, msg kafka.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.fakeProducer.WriteMessage(ctx, msg)
}
