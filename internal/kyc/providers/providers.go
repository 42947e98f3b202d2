// Package providers isolates every external verification service behind a
// small interface returning a normalized result. Adapters are single-attempt:
// no retries or aggregation logic lives here, and transport failures are
// converted into typed results rather than propagated raw to the orchestrator.
package providers

import "context"

// Image is a captured image payload (base64-decoded bytes plus a filename
// hint for multipart uploads).
type Image struct {
	Name string
	Data []byte
}

// IsEmpty reports whether no capture was supplied.
func (i Image) IsEmpty() bool { return len(i.Data) == 0 }

// IdentityFields are the values extracted from an identity document by OCR.
// Field names follow the Mexican INE credential this flow was built for.
type IdentityFields struct {
	FirstName       string
	PaternalSurname string
	MaternalSurname string
	CURP            string
	DateOfBirth     string // YYYY-MM-DD
	Sex             string
	Address         Address
	// PhotoCrop is the document portrait, reused as the reference image for
	// face matching so the applicant is not asked to re-upload anything.
	PhotoCrop []byte
}

// Address is the structured domestic address printed on the document.
type Address struct {
	Street         string
	ExteriorNumber string
	InteriorNumber string
	Neighborhood   string
	PostalCode     string
	Municipality   string
	State          string
}

// DocumentResult is the normalized outcome of document OCR plus the embedded
// nominal-list verdict the OCR provider returns in the same response.
type DocumentResult struct {
	OK               bool
	Fields           IdentityFields
	NominalListValid bool
	Message          string
}

// RegistryResult is the outcome of a civil-registry ID validation.
type RegistryResult struct {
	OK      bool
	Message string
}

// FaceMatchResult carries the raw similarity score; the orchestrator decides
// pass/fail against its configured threshold.
type FaceMatchResult struct {
	OK      bool
	Score   float64 // 0-100
	Match   bool
	Message string
}

// LivenessResult reports whether the applicant was physically present.
type LivenessResult struct {
	Passed bool
	Score  float64
}

// SanctionsMatch is one candidate hit on a restricted-party list.
type SanctionsMatch struct {
	Name       string
	List       string
	Similarity float64 // 0-100
}

// SanctionsResult is the outcome of a restricted-party screening.
// Unavailable marks a provider outage; the orchestrator treats that as a
// pass-through (fail-open) and flags the application for manual review.
type SanctionsResult struct {
	Found       bool
	Matches     []SanctionsMatch
	Unavailable bool
}

// DocumentClient validates an identity document and extracts its fields.
type DocumentClient interface {
	Validate(ctx context.Context, front, back Image) (DocumentResult, error)
}

// CivilRegistryClient validates an extracted national ID against the civil
// registry (CURP validation in the Mexican deployment).
type CivilRegistryClient interface {
	ValidateID(ctx context.Context, nationalID, dateOfBirth string) (RegistryResult, error)
}

// FaceMatchClient compares a live selfie against the document portrait.
type FaceMatchClient interface {
	Match(ctx context.Context, selfie, documentPhoto Image) (FaceMatchResult, error)
}

// LivenessClient checks that the presented face is physically present. It
// accepts one frame or an ordered sequence for motion-based checks.
type LivenessClient interface {
	Check(ctx context.Context, frames []Image) (LivenessResult, error)
}

// SanctionsClient screens a full name against a restricted-party list using
// fuzzy matching above the given similarity threshold.
type SanctionsClient interface {
	Screen(ctx context.Context, fullName, nationalID string, threshold float64) (SanctionsResult, error)
}
