package ws_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/application/events"
	"github.com/jhoicas/pos-api/internal/infrastructure/ws"
)

type fakeConn struct {
	mu     sync.Mutex
	msgs   [][]byte
	fail   bool
	closed bool
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("conexión rota")
	}
	c.msgs = append(c.msgs, data)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.msgs)
}

func TestHub_DifundeEventos(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := ws.NewHub(nil)
	go hub.Run(ctx)

	good, bad := &fakeConn{}, &fakeConn{fail: true}
	hub.Register(ctx, good)
	hub.Register(ctx, bad)
	require.Eventually(t, func() bool { return hub.Clients() == 2 }, time.Second, 5*time.Millisecond)

	evt := events.NewStockChanged(time.Now(), events.StockChanged{ProductID: "p-1", Stock: 4, LowStock: true})
	require.NoError(t, hub.Publish(ctx, evt))

	require.Eventually(t, func() bool { return good.count() == 1 }, time.Second, 5*time.Millisecond)
	// la conexión que falla se descarta
	assert.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	var got map[string]any
	good.mu.Lock()
	require.NoError(t, json.Unmarshal(good.msgs[0], &got))
	good.mu.Unlock()
	assert.Equal(t, events.TypeStockChanged, got["type"])
	assert.Equal(t, "p-1", got["key"])
}

func TestHub_CierraConexionesAlTerminar(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := ws.NewHub(nil)
	done := make(chan struct{})
	go func() { hub.Run(ctx); close(done) }()

	c := &fakeConn{}
	hub.Register(ctx, c)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	assert.True(t, c.closed)
	assert.Equal(t, 0, hub.Clients())
}
