package audit

import (
	"context"
	"log/slog"
	"time"

	id "origen/pkg/domain"
)

// Publisher captures structured audit events. The primary store write is
// authoritative; extra sinks (the Kafka pipeline) are best-effort and their
// failures are logged, never propagated.
type Publisher struct {
	store  Store
	sinks  []Sink
	logger *slog.Logger
}

func NewPublisher(store Store, logger *slog.Logger, sinks ...Sink) *Publisher {
	return &Publisher{store: store, sinks: sinks, logger: logger}
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	for _, sink := range p.sinks {
		if err := sink.Append(ctx, event); err != nil {
			p.logger.WarnContext(ctx, "audit sink append failed",
				"action", event.Action,
				"session_id", event.SessionID,
				"error", err,
			)
		}
	}
	return nil
}

func (p *Publisher) List(ctx context.Context, applicantID id.ApplicantID) ([]Event, error) {
	return p.store.ListByApplicant(ctx, applicantID)
}
