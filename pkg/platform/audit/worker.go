package audit

import (
	"context"
	"errors"
)

// ErrBufferFull reports a dropped event; the publisher logs it and moves on.
var ErrBufferFull = errors.New("audit buffer full")

// ChannelSink buffers events into a channel for a Worker to drain. Append
// drops the event when the buffer is full rather than block the emitter.
type ChannelSink struct {
	ch chan<- Event
}

func NewChannelSink(ch chan<- Event) *ChannelSink {
	return &ChannelSink{ch: ch}
}

func (s *ChannelSink) Append(_ context.Context, event Event) error {
	select {
	case s.ch <- event:
		return nil
	default:
		return ErrBufferFull
	}
}

// Worker drains buffered events into a sink. It decouples emit latency from
// sink latency when the publisher is wired with a channel instead of direct
// sink calls.
type Worker struct {
	sink  Sink
	inbox <-chan Event
}

func NewWorker(sink Sink, inbox <-chan Event) *Worker {
	return &Worker{sink: sink, inbox: inbox}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.sink.Append(ctx, event); err != nil {
				return err
			}
		}
	}
}
