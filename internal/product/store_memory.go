package product

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	id "origen/pkg/domain"
	"origen/pkg/platform/sentinel"
)

// InMemoryStore keeps product configuration in memory. It intentionally
// favors clarity over performance; tenant onboarding writes are rare.
type InMemoryStore struct {
	mu       sync.RWMutex
	products map[id.ProductID]Product
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{products: make(map[id.ProductID]Product)}
}

func (s *InMemoryStore) Save(_ context.Context, p Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, productID id.ProductID) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.products[productID]; ok {
		return p, nil
	}
	return Product{}, sentinel.ErrNotFound
}

// SeedDefaultProduct creates a personal-loan product demanding a selfie, used
// for local development and tests.
func SeedDefaultProduct(store *InMemoryStore) Product {
	requirements, _ := NewRequirementSet([]DocumentRequirement{
		RequirementIDFront,
		RequirementIDBack,
		RequirementSelfie,
		RequirementProofOfAddress,
	})
	p := Product{
		ID:           id.ProductID(uuid.New()),
		TenantID:     id.TenantID(uuid.New()),
		Name:         "personal-loan",
		Requirements: requirements,
		CreatedAt:    time.Now(),
	}
	_ = store.Save(context.Background(), p)
	return p
}
