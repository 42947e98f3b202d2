// Package store persists KYC validation sessions. The memory variant backs
// tests and single-instance deployments; the Redis variant is the production
// store, with a TTL bounding how long an abandoned wizard keeps its session.
package store

import (
	"context"
	"sync"

	"origen/internal/kyc"
	id "origen/pkg/domain"
	"origen/pkg/platform/sentinel"
)

// InMemoryStore keeps sessions in a map. Sessions are stored and returned as
// serialized snapshots so callers get the same value semantics as the Redis
// store: mutating a returned session has no effect until Save.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[id.SessionID][]byte
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[id.SessionID][]byte),
	}
}

func (s *InMemoryStore) Save(_ context.Context, session *kyc.Session) error {
	data, err := session.MarshalBinary()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = data
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, sessionID id.SessionID) (*kyc.Session, error) {
	s.mu.RLock()
	data, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}

	var session kyc.Session
	if err := session.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *InMemoryStore) Delete(_ context.Context, sessionID id.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
