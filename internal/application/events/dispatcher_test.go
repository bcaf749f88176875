package events_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/pos-api/internal/application/events"
	"github.com/jhoicas/pos-api/pkg/logger"
)

type recorder struct {
	got []events.Event
	err error
}

func (r *recorder) Publish(_ context.Context, evt events.Event) error {
	r.got = append(r.got, evt)
	return r.err
}

func TestDispatcher_PublicaEnTodos(t *testing.T) {
	a, b := &recorder{}, &recorder{err: errors.New("broker caído")}
	d := events.NewDispatcher(logger.New(logger.Config{Env: "test", Level: "error"}), a, nil, b)

	now := time.Now()
	d.Dispatch(context.Background(),
		events.NewStockChanged(now, events.StockChanged{ProductID: "p-1", Stock: 3}),
		events.NewSaleCreated(now, events.SaleCreated{SaleID: "s-1"}),
	)

	// un publisher con error no impide que los demás reciban los eventos
	assert.Len(t, a.got, 2)
	assert.Len(t, b.got, 2)
	assert.Equal(t, events.TypeStockChanged, a.got[0].Type)
	assert.Equal(t, "p-1", a.got[0].Key)
	assert.Equal(t, events.TypeSaleCreated, a.got[1].Type)
}

func TestDispatcher_NilNoHaceNada(t *testing.T) {
	var d *events.Dispatcher
	assert.NotPanics(t, func() {
		d.Dispatch(context.Background(), events.Event{Type: "x"})
	})
}
