// Package domain holds typed identifiers shared across features.
//
// IDs are distinct named UUID types so the compiler rejects accidental
// cross-assignment (a SessionID can never be passed where an ApplicantID is
// expected). Parse helpers enforce the invariant that IDs are valid,
// non-empty, non-nil UUIDs at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "origen/pkg/domain-errors"
)

// SessionID identifies a single KYC validation session.
type SessionID uuid.UUID

// ApplicantID identifies a loan applicant.
type ApplicantID uuid.UUID

// TenantID identifies a white-label tenant organization.
type TenantID uuid.UUID

// ProductID identifies a loan product offered by a tenant.
type ProductID uuid.UUID

func parseUUID(kind, raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id is required")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind+" id")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id must not be nil")
	}
	return parsed, nil
}

// ParseSessionID validates and converts a raw string into a SessionID.
func ParseSessionID(raw string) (SessionID, error) {
	parsed, err := parseUUID("session", raw)
	return SessionID(parsed), err
}

// ParseApplicantID validates and converts a raw string into an ApplicantID.
func ParseApplicantID(raw string) (ApplicantID, error) {
	parsed, err := parseUUID("applicant", raw)
	return ApplicantID(parsed), err
}

// ParseTenantID validates and converts a raw string into a TenantID.
func ParseTenantID(raw string) (TenantID, error) {
	parsed, err := parseUUID("tenant", raw)
	return TenantID(parsed), err
}

// ParseProductID validates and converts a raw string into a ProductID.
func ParseProductID(raw string) (ProductID, error) {
	parsed, err := parseUUID("product", raw)
	return ProductID(parsed), err
}

// NewSessionID mints a fresh session identifier.
func NewSessionID() SessionID { return SessionID(uuid.New()) }

// NewApplicantID mints a fresh applicant identifier.
func NewApplicantID() ApplicantID { return ApplicantID(uuid.New()) }

// NewTenantID mints a fresh tenant identifier.
func NewTenantID() TenantID { return TenantID(uuid.New()) }

// NewProductID mints a fresh product identifier.
func NewProductID() ProductID { return ProductID(uuid.New()) }

func (id SessionID) String() string   { return uuid.UUID(id).String() }
func (id ApplicantID) String() string { return uuid.UUID(id).String() }
func (id TenantID) String() string    { return uuid.UUID(id).String() }
func (id ProductID) String() string   { return uuid.UUID(id).String() }

func (id SessionID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id ApplicantID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id TenantID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id ProductID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }

// The text marshalers keep IDs as canonical UUID strings in JSON instead of
// the raw byte-array form the underlying [16]byte would produce.

func (id SessionID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id ApplicantID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id TenantID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }
func (id ProductID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }

func (id *SessionID) UnmarshalText(text []byte) error {
	parsed, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = SessionID(parsed)
	return nil
}

func (id *ApplicantID) UnmarshalText(text []byte) error {
	parsed, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = ApplicantID(parsed)
	return nil
}

func (id *TenantID) UnmarshalText(text []byte) error {
	parsed, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = TenantID(parsed)
	return nil
}

func (id *ProductID) UnmarshalText(text []byte) error {
	parsed, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = ProductID(parsed)
	return nil
}
