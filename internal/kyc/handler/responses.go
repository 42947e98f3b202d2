package handler

import (
	"time"

	"origen/internal/kyc"
)

// SessionResponse is the HTTP representation of a validation session. The
// wizard renders the steps in order; locked identity appears once document
// OCR has succeeded and is read-only for the client.
type SessionResponse struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"product_id"`
	RequiresSelfie bool            `json:"requires_selfie"`
	Verified       bool            `json:"verified"`
	ManualReview   bool            `json:"manual_review"`
	Complete       bool            `json:"complete"`
	Steps          []StepResponse  `json:"steps"`
	LockedIdentity *LockedResponse `json:"locked_identity,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// StepResponse is one check's progress entry.
type StepResponse struct {
	Check   string `json:"check"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// LockedResponse exposes the locked identity fields the later onboarding
// steps render as non-editable.
type LockedResponse struct {
	FirstName       string                `json:"first_name"`
	PaternalSurname string                `json:"paternal_surname"`
	MaternalSurname string                `json:"maternal_surname"`
	CURP            string                `json:"curp"`
	DateOfBirth     string                `json:"date_of_birth"`
	Sex             string                `json:"sex"`
	Address         LockedAddressResponse `json:"address"`
}

// LockedAddressResponse is the structured address portion.
type LockedAddressResponse struct {
	Street         string `json:"street"`
	ExteriorNumber string `json:"exterior_number"`
	InteriorNumber string `json:"interior_number"`
	Neighborhood   string `json:"neighborhood"`
	PostalCode     string `json:"postal_code"`
	Municipality   string `json:"municipality"`
	State          string `json:"state"`
}

// FromSession converts a domain session to its HTTP representation.
func FromSession(session *kyc.Session) *SessionResponse {
	steps := session.Progress.Steps()
	out := &SessionResponse{
		ID:             session.ID.String(),
		ProductID:      session.ProductID.String(),
		RequiresSelfie: session.RequiresSelfie,
		Verified:       session.Verified,
		ManualReview:   session.ManualReview,
		Complete:       session.Progress.IsComplete(),
		Steps:          make([]StepResponse, 0, len(steps)),
		CreatedAt:      session.CreatedAt,
		UpdatedAt:      session.UpdatedAt,
	}
	for _, step := range steps {
		out.Steps = append(out.Steps, StepResponse{
			Check:   string(step.Check),
			Status:  string(step.Status),
			Message: step.Message,
		})
	}
	if session.Locked != nil {
		out.LockedIdentity = &LockedResponse{
			FirstName:       session.Locked.FirstName,
			PaternalSurname: session.Locked.PaternalSurname,
			MaternalSurname: session.Locked.MaternalSurname,
			CURP:            session.Locked.CURP,
			DateOfBirth:     session.Locked.DateOfBirth,
			Sex:             session.Locked.Sex,
			Address: LockedAddressResponse{
				Street:         session.Locked.Address.Street,
				ExteriorNumber: session.Locked.Address.ExteriorNumber,
				InteriorNumber: session.Locked.Address.InteriorNumber,
				Neighborhood:   session.Locked.Address.Neighborhood,
				PostalCode:     session.Locked.Address.PostalCode,
				Municipality:   session.Locked.Address.Municipality,
				State:          session.Locked.Address.State,
			},
		}
	}
	return out
}
