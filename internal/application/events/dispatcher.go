package events

import (
	"context"

	"github.com/jhoicas/pos-api/pkg/logger"
)

// Dispatcher reparte cada evento a todos los publishers registrados.
// Se usa después del commit: un fallo de publicación se registra en el log y no revierte nada.
type Dispatcher struct {
	publishers []Publisher
	log        *logger.Logger
}

// NewDispatcher construye el dispatcher. Los publishers nil se ignoran.
func NewDispatcher(log *logger.Logger, publishers ...Publisher) *Dispatcher {
	d := &Dispatcher{log: log}
	for _, p := range publishers {
		if p != nil {
			d.publishers = append(d.publishers, p)
		}
	}
	return d
}

// Dispatch publica los eventos en orden. Un Dispatcher nil no hace nada.
func (d *Dispatcher) Dispatch(ctx context.Context, evts ...Event) {
	if d == nil {
		return
	}
	for _, evt := range evts {
		for _, p := range d.publishers {
			if err := p.Publish(ctx, evt); err != nil {
				d.log.Ctx(ctx).Warn().Err(err).Str("event", evt.Type).Str("key", evt.Key).Msg("no se pudo publicar el evento")
			}
		}
	}
}
