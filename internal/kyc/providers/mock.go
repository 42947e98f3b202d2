package providers

import (
	"context"
	"time"
)

// Mock clients return deterministic data with a configurable latency to mimic
// real-world calls. They back local development (no provider accounts) and
// the deterministic orchestrator tests.

type MockDocumentClient struct {
	Latency time.Duration
	Result  DocumentResult
	Err     error
}

func (c MockDocumentClient) Validate(_ context.Context, front, _ Image) (DocumentResult, error) {
	time.Sleep(c.Latency)
	if front.IsEmpty() {
		return DocumentResult{}, NewProviderError(ErrorMissingInput, "mock-document",
			"front document image is required", nil)
	}
	if c.Err != nil {
		return DocumentResult{}, c.Err
	}
	return c.Result, nil
}

// SampleIdentityFields is a complete OCR extraction used across tests and the
// development seed.
func SampleIdentityFields() IdentityFields {
	return IdentityFields{
		FirstName:       "María",
		PaternalSurname: "González",
		MaternalSurname: "López",
		CURP:            "GOLM800101MDFNPR03",
		DateOfBirth:     "1980-01-01",
		Sex:             "M",
		PhotoCrop:       []byte("portrait-bytes"),
		Address: Address{
			Street:         "Av. Insurgentes Sur",
			ExteriorNumber: "1457",
			InteriorNumber: "4B",
			Neighborhood:   "Mixcoac",
			PostalCode:     "03920",
			Municipality:   "Benito Juárez",
			State:          "Ciudad de México",
		},
	}
}

type MockCivilRegistryClient struct {
	Latency time.Duration
	Result  RegistryResult
	Err     error
}

func (c MockCivilRegistryClient) ValidateID(_ context.Context, nationalID, _ string) (RegistryResult, error) {
	time.Sleep(c.Latency)
	if nationalID == "" {
		return RegistryResult{}, NewProviderError(ErrorMissingInput, "mock-civil-registry",
			"national id is required", nil)
	}
	if c.Err != nil {
		return RegistryResult{}, c.Err
	}
	return c.Result, nil
}

type MockFaceMatchClient struct {
	Latency time.Duration
	Result  FaceMatchResult
	Err     error
}

func (c MockFaceMatchClient) Match(_ context.Context, selfie, documentPhoto Image) (FaceMatchResult, error) {
	time.Sleep(c.Latency)
	if selfie.IsEmpty() {
		return FaceMatchResult{}, NewProviderError(ErrorMissingInput, "mock-face-match",
			"selfie image is required", nil)
	}
	if documentPhoto.IsEmpty() {
		return FaceMatchResult{}, NewProviderError(ErrorMissingInput, "mock-face-match",
			"document photo is required", nil)
	}
	if c.Err != nil {
		return FaceMatchResult{}, c.Err
	}
	return c.Result, nil
}

type MockLivenessClient struct {
	Latency time.Duration
	Result  LivenessResult
}

func (c MockLivenessClient) Check(_ context.Context, frames []Image) (LivenessResult, error) {
	time.Sleep(c.Latency)
	if len(frames) == 0 {
		return LivenessResult{Passed: false}, nil
	}
	return c.Result, nil
}

type MockSanctionsClient struct {
	Latency time.Duration
	Result  SanctionsResult
	Err     error
}

func (c MockSanctionsClient) Screen(_ context.Context, fullName, _ string, _ float64) (SanctionsResult, error) {
	time.Sleep(c.Latency)
	if fullName == "" {
		return SanctionsResult{}, NewProviderError(ErrorMissingInput, "mock-sanctions",
			"full name is required", nil)
	}
	if c.Err != nil {
		return SanctionsResult{}, c.Err
	}
	return c.Result, nil
}
