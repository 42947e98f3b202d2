package product

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "origen/pkg/domain"
	dErrors "origen/pkg/domain-errors"
	"origen/pkg/platform/sentinel"
)

func TestNewRequirementSet(t *testing.T) {
	t.Run("normalizes a list of known requirements", func(t *testing.T) {
		set, err := NewRequirementSet([]DocumentRequirement{RequirementIDFront, RequirementSelfie})
		require.NoError(t, err)
		assert.True(t, set.Contains(RequirementIDFront))
		assert.True(t, set.RequiresSelfie())
		assert.False(t, set.Contains(RequirementProofOfIncome))
	})

	t.Run("rejects unknown requirement names", func(t *testing.T) {
		_, err := NewRequirementSet([]DocumentRequirement{RequirementIDFront, "selfy"})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		set, err := NewRequirementSet([]DocumentRequirement{RequirementIDFront, RequirementIDFront})
		require.NoError(t, err)
		assert.Len(t, set, 1)
	})
}

func TestNewRequirementSetFromMap(t *testing.T) {
	t.Run("keeps only enabled flags", func(t *testing.T) {
		set, err := NewRequirementSetFromMap(map[string]bool{
			"id_front": true,
			"selfie":   false,
			"id_back":  true,
		})
		require.NoError(t, err)
		assert.True(t, set.Contains(RequirementIDFront))
		assert.True(t, set.Contains(RequirementIDBack))
		assert.False(t, set.RequiresSelfie())
	})

	t.Run("disabled unknown keys are still ignored, enabled ones rejected", func(t *testing.T) {
		_, err := NewRequirementSetFromMap(map[string]bool{"id_front": true, "fingerprint": true})
		require.Error(t, err)

		set, err := NewRequirementSetFromMap(map[string]bool{"id_front": true, "fingerprint": false})
		require.NoError(t, err)
		assert.Len(t, set, 1)
	})
}

func TestProductValidate(t *testing.T) {
	requirements, err := NewRequirementSet([]DocumentRequirement{RequirementIDFront})
	require.NoError(t, err)

	t.Run("valid product", func(t *testing.T) {
		p := Product{Name: "personal-loan", Requirements: requirements}
		assert.NoError(t, p.Validate())
	})

	t.Run("name is required", func(t *testing.T) {
		p := Product{Requirements: requirements}
		err := p.Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("front identity document is the baseline", func(t *testing.T) {
		selfieOnly, err := NewRequirementSet([]DocumentRequirement{RequirementSelfie})
		require.NoError(t, err)

		p := Product{Name: "personal-loan", Requirements: selfieOnly}
		assert.Error(t, p.Validate())
	})
}

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("save rejects invalid products", func(t *testing.T) {
		store := NewInMemoryStore()
		err := store.Save(ctx, Product{Name: ""})
		assert.Error(t, err)
	})

	t.Run("find round-trip", func(t *testing.T) {
		store := NewInMemoryStore()
		requirements, err := NewRequirementSet([]DocumentRequirement{RequirementIDFront})
		require.NoError(t, err)

		p := Product{ID: id.NewProductID(), Name: "express-loan", Requirements: requirements, CreatedAt: time.Now()}
		require.NoError(t, store.Save(ctx, p))

		found, err := store.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "express-loan", found.Name)
	})

	t.Run("missing product", func(t *testing.T) {
		store := NewInMemoryStore()
		_, err := store.FindByID(ctx, id.NewProductID())
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("seeded default demands a selfie", func(t *testing.T) {
		store := NewInMemoryStore()
		p := SeedDefaultProduct(store)

		found, err := store.FindByID(context.Background(), p.ID)
		require.NoError(t, err)
		assert.True(t, found.Requirements.RequiresSelfie())
	})
}
