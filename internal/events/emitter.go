package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/track-asia/service-navigation/internal/domain/navigation"
)

const (
	// DefaultBufferSize is the number of events queued before new ones are dropped.
	DefaultBufferSize = 256

	deliveryTimeout = 5 * time.Second
)

// Sink is a delivery target behind the Emitter.
type Sink interface {
	Deliver(ctx context.Context, event navigation.Event) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, event navigation.Event) error

// Deliver calls f.
func (f SinkFunc) Deliver(ctx context.Context, event navigation.Event) error {
	return f(ctx, event)
}

type namedSink struct {
	name string
	sink Sink
}

// Emitter queues events and delivers them, in emit order, to every registered sink
// from a single goroutine. Emit never blocks.
type Emitter struct {
	queue  chan navigation.Event
	logger *zap.Logger

	mu     sync.RWMutex
	sinks  []namedSink
	closed bool

	done      chan struct{}
	closeOnce sync.Once
}

// NewEmitter creates an Emitter and starts its delivery loop.
func NewEmitter(bufferSize int, logger *zap.Logger) *Emitter {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	e := &Emitter{
		queue:  make(chan navigation.Event, bufferSize),
		logger: logger,
		done:   make(chan struct{}),
	}
	go e.run()
	return e
}

// Register adds a sink. Events already queued are delivered to it as well.
func (e *Emitter) Register(name string, sink Sink) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sinks = append(e.sinks, namedSink{name: name, sink: sink})
}

// Emit enqueues the event. A full queue or a closed emitter drops it with a warning.
func (e *Emitter) Emit(event navigation.Event) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		e.logger.Warn("event emitted after close, dropping",
			zap.String("type", string(event.Type)),
			zap.Uint64("sequence", event.Sequence),
		)
		return
	}

	select {
	case e.queue <- event:
	default:
		e.logger.Warn("event queue full, dropping event",
			zap.String("type", string(event.Type)),
			zap.String("session_id", event.SessionID.String()),
			zap.Uint64("sequence", event.Sequence),
		)
	}
}

// Close stops accepting events, delivers what is queued and waits for the loop to exit.
func (e *Emitter) Close() {
	e.closeOnce.Do(func() {
		e.mu.Lock()
		e.closed = true
		close(e.queue)
		e.mu.Unlock()
	})
	<-e.done
}

func (e *Emitter) run() {
	defer close(e.done)
	for event := range e.queue {
		e.mu.RLock()
		sinks := e.sinks
		e.mu.RUnlock()

		for _, s := range sinks {
			if err := e.deliver(s, event); err != nil {
				e.logger.Warn("event delivery failed",
					zap.String("sink", s.name),
					zap.String("type", string(event.Type)),
					zap.Uint64("sequence", event.Sequence),
					zap.Error(err),
				)
			}
		}
	}
}

func (e *Emitter) deliver(s namedSink, event navigation.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink panicked: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()
	return s.sink.Deliver(ctx, event)
}
