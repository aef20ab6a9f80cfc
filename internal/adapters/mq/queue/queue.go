// Package queue carries pipeline progress events from a run to its consumer.
//
// A run emits from a single goroutine, so events keep their emission order.
// At most one terminal event (dreamTeam or error) is delivered and nothing
// is delivered after it.
package queue

import (
	"sync"

	"github.com/okian/dreamteam/internal/domain/model"
	"github.com/okian/dreamteam/internal/domain/types"
	"github.com/okian/dreamteam/pkg/metrics"
)

// Default sink configuration constants.
const (
	defaultBufferSize = 64
)

// Event represents the payload type flowing through the sink.
type Event = model.Event

// Sink receives the progress events of one run.
type Sink interface {
	// Emit delivers one event. It returns ErrSinkClosed when the event was
	// dropped because the sink no longer accepts events.
	Emit(kind types.EventKind, payload any) error
}

// ChannelSink hands events to a consumer through a buffered channel. Emit
// blocks while the buffer is full until the consumer reads or calls Close.
type ChannelSink struct {
	events     chan Event
	bufferSize int

	mu       sync.Mutex
	finished bool

	done      chan struct{}
	closeOnce sync.Once
}

// NewChannelSink creates a sink with configuration options.
func NewChannelSink(opts ...Option) *ChannelSink {
	s := &ChannelSink{
		bufferSize: defaultBufferSize,
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.events = make(chan Event, s.bufferSize)
	return s
}

// Emit delivers an event. A terminal event closes the events channel.
func (s *ChannelSink) Emit(kind types.EventKind, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		metrics.RecordStreamEventDropped(string(kind))
		return ErrSinkClosed
	}

	select {
	case <-s.done:
		metrics.RecordStreamEventDropped(string(kind))
		return ErrSinkClosed
	default:
	}

	select {
	case s.events <- Event{Kind: kind, Payload: payload}:
		metrics.RecordStreamEvent(string(kind))
	case <-s.done:
		metrics.RecordStreamEventDropped(string(kind))
		return ErrSinkClosed
	}

	if kind.Terminal() {
		s.finishLocked()
	}
	return nil
}

// Events returns the channel the consumer reads. It is closed after the
// terminal event or Finish.
func (s *ChannelSink) Events() <-chan Event {
	return s.events
}

// Finish is called by the producer when the run is over. It closes the
// events channel if no terminal event did.
func (s *ChannelSink) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishLocked()
}

func (s *ChannelSink) finishLocked() {
	if s.finished {
		return
	}
	s.finished = true
	close(s.events)
}

// Close is called by the consumer when it stops reading. Pending and later
// emits are dropped. It is safe to call more than once.
func (s *ChannelSink) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}

// Done is closed once the consumer has called Close.
func (s *ChannelSink) Done() <-chan struct{} {
	return s.done
}

// IsClosed returns true if the sink accepts no more events.
func (s *ChannelSink) IsClosed() bool {
	select {
	case <-s.done:
		return true
	default:
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// Recorder is a Sink that keeps events in memory.
type Recorder struct {
	mu       sync.Mutex
	events   []Event
	finished bool
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Emit records an event. Events after a terminal one are dropped.
func (r *Recorder) Emit(kind types.EventKind, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished {
		return ErrSinkClosed
	}
	r.events = append(r.events, Event{Kind: kind, Payload: payload})
	if kind.Terminal() {
		r.finished = true
	}
	return nil
}

// Events returns a copy of the recorded events in emission order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Kinds returns the kinds of the recorded events in emission order.
func (r *Recorder) Kinds() []types.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.EventKind, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}
