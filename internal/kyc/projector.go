package kyc

import "origen/internal/kyc/providers"

// ProjectIdentity converts a successful OCR extraction into the immutable
// read model consumed by later onboarding steps. The projection is a pure
// function: the same extraction always yields an identical snapshot, and a
// successful OCR retry simply re-projects over the previous one (which can
// only happen before any blocking check has passed).
func ProjectIdentity(fields providers.IdentityFields) LockedIdentity {
	return LockedIdentity{
		FirstName:       fields.FirstName,
		PaternalSurname: fields.PaternalSurname,
		MaternalSurname: fields.MaternalSurname,
		CURP:            fields.CURP,
		DateOfBirth:     fields.DateOfBirth,
		Sex:             fields.Sex,
		Address: LockedAddress{
			Street:         fields.Address.Street,
			ExteriorNumber: fields.Address.ExteriorNumber,
			InteriorNumber: fields.Address.InteriorNumber,
			Neighborhood:   fields.Address.Neighborhood,
			PostalCode:     fields.Address.PostalCode,
			Municipality:   fields.Address.Municipality,
			State:          fields.Address.State,
		},
	}
}
