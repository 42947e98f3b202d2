package audit

import (
	"context"
	"sync"

	id "origen/pkg/domain"
)

// Sink receives emitted events. Implementations must be safe for concurrent
// use; a sink failure must never fail the business operation that emitted.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Store is a queryable sink, used as the publisher's primary destination.
type Store interface {
	Sink
	ListByApplicant(ctx context.Context, applicantID id.ApplicantID) ([]Event, error)
}

// MemoryStore keeps events in memory for tests and single-instance
// deployments.
type MemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *MemoryStore) ListByApplicant(_ context.Context, applicantID id.ApplicantID) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, event := range s.events {
		if event.ApplicantID == applicantID {
			out = append(out, event)
		}
	}
	return out, nil
}
