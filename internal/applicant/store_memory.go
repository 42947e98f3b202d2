package applicant

import (
	"context"
	"sync"
	"time"

	id "origen/pkg/domain"
	"origen/pkg/platform/sentinel"
)

// InMemoryStore keeps applicant records in a map for tests and
// single-instance deployments.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[id.ApplicantID]*Record
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[id.ApplicantID]*Record),
	}
}

func (s *InMemoryStore) Save(_ context.Context, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = cloneRecord(record)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, applicantID id.ApplicantID) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[applicantID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneRecord(record), nil
}

// cloneRecord copies the record and its pointer fields so callers never share
// mutable state with the store.
func cloneRecord(record *Record) *Record {
	clone := *record
	if record.Identity != nil {
		identity := *record.Identity
		clone.Identity = &identity
	}
	if record.VerifiedAt != nil {
		verifiedAt := *record.VerifiedAt
		clone.VerifiedAt = &verifiedAt
	}
	return &clone
}

// MarkVerified records the first successful verification for the applicant.
// Later calls are no-ops: the originally locked identity stays untouched.
func (s *InMemoryStore) MarkVerified(_ context.Context, applicantID id.ApplicantID, tenantID id.TenantID, identity Identity, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[applicantID]
	if !ok {
		record = &Record{ID: applicantID, TenantID: tenantID, CreatedAt: now}
		s.records[applicantID] = record
	}
	if record.Verified {
		return nil
	}

	record.Verified = true
	record.Identity = &identity
	record.VerifiedAt = &now
	record.UpdatedAt = now
	return nil
}
