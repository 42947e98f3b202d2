// Package product holds the per-tenant loan product configuration consumed by
// the KYC flow. Tenant configuration arrives in several historical shapes
// (plain lists, keyed maps); everything is normalized into a RequirementSet at
// this boundary so the orchestrator only ever asks boolean questions.
package product

import (
	"time"

	id "origen/pkg/domain"
	dErrors "origen/pkg/domain-errors"
)

// DocumentRequirement names one capture the product demands from applicants.
type DocumentRequirement string

const (
	RequirementIDFront        DocumentRequirement = "id_front"
	RequirementIDBack         DocumentRequirement = "id_back"
	RequirementSelfie         DocumentRequirement = "selfie"
	RequirementProofOfAddress DocumentRequirement = "proof_of_address"
	RequirementProofOfIncome  DocumentRequirement = "proof_of_income"
)

var knownRequirements = map[DocumentRequirement]struct{}{
	RequirementIDFront:        {},
	RequirementIDBack:         {},
	RequirementSelfie:         {},
	RequirementProofOfAddress: {},
	RequirementProofOfIncome:  {},
}

// RequirementSet is the normalized form of a product's document requirements.
type RequirementSet map[DocumentRequirement]struct{}

// NewRequirementSet normalizes a list shape into a set, rejecting unknown
// requirement names so a tenant typo fails loudly at configuration time.
func NewRequirementSet(requirements []DocumentRequirement) (RequirementSet, error) {
	set := make(RequirementSet, len(requirements))
	for _, req := range requirements {
		if _, ok := knownRequirements[req]; !ok {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown document requirement: "+string(req))
		}
		set[req] = struct{}{}
	}
	return set, nil
}

// NewRequirementSetFromMap normalizes the legacy keyed-map shape
// ({"selfie": true, ...}) used by older tenant configurations.
func NewRequirementSetFromMap(flags map[string]bool) (RequirementSet, error) {
	reqs := make([]DocumentRequirement, 0, len(flags))
	for name, enabled := range flags {
		if !enabled {
			continue
		}
		reqs = append(reqs, DocumentRequirement(name))
	}
	return NewRequirementSet(reqs)
}

// Contains reports whether the set demands the given capture.
func (s RequirementSet) Contains(req DocumentRequirement) bool {
	_, ok := s[req]
	return ok
}

// RequiresSelfie is the only question the KYC orchestrator asks of a product.
func (s RequirementSet) RequiresSelfie() bool {
	return s.Contains(RequirementSelfie)
}

// Product is a loan product offered by one tenant.
//
// Invariants:
//   - Name is non-empty
//   - Requirements always contains id_front (an identity document is the
//     baseline of every KYC flow)
type Product struct {
	ID           id.ProductID
	TenantID     id.TenantID
	Name         string
	Requirements RequirementSet
	CreatedAt    time.Time
}

// Validate enforces product invariants before the product is stored.
func (p *Product) Validate() error {
	if p.Name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "product name is required")
	}
	if !p.Requirements.Contains(RequirementIDFront) {
		return dErrors.New(dErrors.CodeInvariantViolation, "product must require a front identity document")
	}
	return nil
}
