package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const dispatchBuffer = 256

// Dispatcher fans events out to a set of sinks from a background goroutine,
// so the reservation coordinator never waits on delivery. A full buffer
// drops the event (and logs it) rather than applying backpressure.
type Dispatcher struct {
	sinks []Notifier
	log   *zap.Logger

	ch   chan Event
	done chan struct{}
	once sync.Once
}

func NewDispatcher(log *zap.Logger, sinks ...Notifier) *Dispatcher {
	d := &Dispatcher{
		sinks: sinks,
		log:   log,
		ch:    make(chan Event, dispatchBuffer),
		done:  make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for ev := range d.ch {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		for _, sink := range d.sinks {
			if err := sink.Notify(ctx, ev); err != nil {
				d.log.Warn("notification delivery failed",
					zap.String("type", string(ev.Type)),
					zap.String("reservation_id", ev.ReservationID),
					zap.Error(err))
			}
		}
		cancel()
	}
}

// Notify enqueues the event. It never blocks and never returns an error.
func (d *Dispatcher) Notify(_ context.Context, ev Event) error {
	select {
	case d.ch <- ev:
	default:
		d.log.Warn("notification buffer full, dropping event",
			zap.String("type", string(ev.Type)),
			zap.String("reservation_id", ev.ReservationID))
	}
	return nil
}

// Close stops the dispatcher after draining queued events.
func (d *Dispatcher) Close() {
	d.once.Do(func() { close(d.ch) })
	<-d.done
}
