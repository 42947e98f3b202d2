// Package kyc implements the identity-verification core of the onboarding
// wizard: provider orchestration, per-check progress tracking, and the
// projection of OCR-extracted identity data consumed by later onboarding
// steps.
package kyc

import (
	"encoding/json"
	"time"

	id "origen/pkg/domain"

	"origen/internal/kyc/providers"
)

// Check identifies one verification step in a validation session.
type Check string

const (
	CheckDocumentOCR            Check = "document_ocr"
	CheckDocumentListLookup     Check = "document_list_lookup"
	CheckCivilRegistryIDMatch   Check = "civil_registry_id_match"
	CheckLiveness               Check = "liveness"
	CheckFaceMatch              Check = "face_match"
	CheckDomesticSanctions      Check = "domestic_sanctions"
	CheckInternationalSanctions Check = "international_sanctions"
)

// Status is the lifecycle state of one check within a session.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
	StatusWarning    Status = "warning"
)

// IsTerminal reports whether the status is one of the three final states.
func (s Status) IsTerminal() bool {
	return s == StatusSuccess || s == StatusError || s == StatusWarning
}

// CheckSequence returns the ordered check set registered for a session.
// Liveness only participates when the product demands a selfie; the set is
// fixed at session creation and never changes afterward.
func CheckSequence(requiresSelfie bool) []Check {
	if requiresSelfie {
		return []Check{
			CheckDocumentOCR,
			CheckDocumentListLookup,
			CheckCivilRegistryIDMatch,
			CheckLiveness,
			CheckFaceMatch,
			CheckDomesticSanctions,
			CheckInternationalSanctions,
		}
	}
	return []Check{
		CheckDocumentOCR,
		CheckDocumentListLookup,
		CheckCivilRegistryIDMatch,
		CheckFaceMatch,
		CheckDomesticSanctions,
		CheckInternationalSanctions,
	}
}

// LockedIdentity is the read-only projection of the OCR-extracted fields.
// It exists if and only if document OCR succeeded, and downstream onboarding
// steps (address, personal data) render these values as non-editable.
type LockedIdentity struct {
	FirstName       string        `json:"first_name"`
	PaternalSurname string        `json:"paternal_surname"`
	MaternalSurname string        `json:"maternal_surname"`
	CURP            string        `json:"curp"`
	DateOfBirth     string        `json:"date_of_birth"`
	Sex             string        `json:"sex"`
	Address         LockedAddress `json:"address"`
}

// LockedAddress is the structured domestic address extracted from the
// document, consumed read-only by the address step.
type LockedAddress struct {
	Street         string `json:"street"`
	ExteriorNumber string `json:"exterior_number"`
	InteriorNumber string `json:"interior_number"`
	Neighborhood   string `json:"neighborhood"`
	PostalCode     string `json:"postal_code"`
	Municipality   string `json:"municipality"`
	State          string `json:"state"`
}

// FullName joins the name parts the way screening providers expect.
func (l LockedIdentity) FullName() string {
	name := l.FirstName
	if l.PaternalSurname != "" {
		name += " " + l.PaternalSurname
	}
	if l.MaternalSurname != "" {
		name += " " + l.MaternalSurname
	}
	return name
}

// Session is one applicant's KYC validation attempt. It is owned exclusively
// by a single onboarding session; restarting KYC discards it entirely.
type Session struct {
	ID             id.SessionID   `json:"id"`
	ApplicantID    id.ApplicantID `json:"applicant_id"`
	ProductID      id.ProductID   `json:"product_id"`
	RequiresSelfie bool           `json:"requires_selfie"`
	Verified       bool           `json:"verified"`
	// ManualReview marks the application for a human reviewer: sanctions
	// warnings and fail-open provider outages set it without blocking the
	// applicant.
	ManualReview bool            `json:"manual_review"`
	Progress     *Tracker        `json:"progress"`
	Locked       *LockedIdentity `json:"locked_identity,omitempty"`
	// documentPhoto is the portrait crop from OCR, retained for the face-match
	// step. Kept out of JSON responses; stores persist it via MarshalBinary.
	documentPhoto []byte
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewSession creates a session with the full check set registered as pending.
func NewSession(applicantID id.ApplicantID, productID id.ProductID, requiresSelfie bool, now time.Time) *Session {
	return &Session{
		ID:             id.NewSessionID(),
		ApplicantID:    applicantID,
		ProductID:      productID,
		RequiresSelfie: requiresSelfie,
		Progress:       NewTracker(requiresSelfie),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// DocumentPhoto returns the retained document portrait for face matching.
func (s *Session) DocumentPhoto() providers.Image {
	if len(s.documentPhoto) == 0 {
		return providers.Image{}
	}
	return providers.Image{Name: "document-portrait.jpg", Data: s.documentPhoto}
}

func (s *Session) setDocumentPhoto(photo []byte) {
	s.documentPhoto = photo
}

// sessionRecord is the storage envelope for a session. The portrait crop is
// included so face match still works after the session round-trips through
// an external store between wizard steps.
type sessionRecord struct {
	Session
	DocumentPhoto []byte `json:"document_photo,omitempty"`
}

// MarshalBinary implements encoding.BinaryMarshaler for session stores.
func (s *Session) MarshalBinary() ([]byte, error) {
	return json.Marshal(sessionRecord{Session: *s, DocumentPhoto: s.documentPhoto})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler for session stores.
func (s *Session) UnmarshalBinary(data []byte) error {
	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	*s = rec.Session
	s.documentPhoto = rec.DocumentPhoto
	return nil
}
