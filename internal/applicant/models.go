// Package applicant holds the verified-applicant record produced by a
// successful KYC run. The record is write-once: the first verification wins
// and later verification attempts never overwrite the locked identity.
package applicant

import (
	"time"

	id "origen/pkg/domain"
)

// Identity is the verified identity snapshot copied from the KYC projection
// at the moment the applicant first becomes verified.
type Identity struct {
	FirstName       string `json:"first_name"`
	PaternalSurname string `json:"paternal_surname"`
	MaternalSurname string `json:"maternal_surname"`
	CURP            string `json:"curp"`
	DateOfBirth     string `json:"date_of_birth"`
	Sex             string `json:"sex"`
}

// Record is one applicant within a tenant.
type Record struct {
	ID         id.ApplicantID `json:"id"`
	TenantID   id.TenantID    `json:"tenant_id"`
	Verified   bool           `json:"verified"`
	Identity   *Identity      `json:"identity,omitempty"`
	VerifiedAt *time.Time     `json:"verified_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}
