package applicant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "origen/pkg/domain"
	"origen/pkg/platform/sentinel"
)

// PostgresStore persists applicant records in PostgreSQL. The first-verified
// wins rule is enforced in SQL (`WHERE NOT verified`) so concurrent
// verification attempts cannot overwrite an already locked identity.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, record *Record) error {
	if record == nil {
		return fmt.Errorf("applicant record is required")
	}
	query := `
		INSERT INTO applicants (id, tenant_id, verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(record.ID),
		uuid.UUID(record.TenantID),
		record.Verified,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save applicant: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, applicantID id.ApplicantID) (*Record, error) {
	query := `
		SELECT id, tenant_id, verified,
		       first_name, paternal_surname, maternal_surname, curp, date_of_birth, sex,
		       verified_at, created_at, updated_at
		FROM applicants
		WHERE id = $1
	`
	record, err := scanRecord(s.db.QueryRowContext(ctx, query, uuid.UUID(applicantID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find applicant: %w", err)
	}
	return record, nil
}

// MarkVerified records the first successful verification. The upsert creates
// the row when missing; the update clause only fires while verified is still
// false, so a second verification leaves the original identity in place.
func (s *PostgresStore) MarkVerified(ctx context.Context, applicantID id.ApplicantID, tenantID id.TenantID, identity Identity, now time.Time) error {
	query := `
		INSERT INTO applicants (id, tenant_id, verified,
			first_name, paternal_surname, maternal_surname, curp, date_of_birth, sex,
			verified_at, created_at, updated_at)
		VALUES ($1, $2, TRUE, $3, $4, $5, $6, $7, $8, $9, $9, $9)
		ON CONFLICT (id) DO UPDATE SET
			verified = TRUE,
			first_name = EXCLUDED.first_name,
			paternal_surname = EXCLUDED.paternal_surname,
			maternal_surname = EXCLUDED.maternal_surname,
			curp = EXCLUDED.curp,
			date_of_birth = EXCLUDED.date_of_birth,
			sex = EXCLUDED.sex,
			verified_at = EXCLUDED.verified_at,
			updated_at = EXCLUDED.updated_at
		WHERE NOT applicants.verified
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(applicantID),
		uuid.UUID(tenantID),
		identity.FirstName,
		identity.PaternalSurname,
		identity.MaternalSurname,
		identity.CURP,
		identity.DateOfBirth,
		identity.Sex,
		now,
	)
	if err != nil {
		return fmt.Errorf("mark applicant verified: %w", err)
	}
	return nil
}

func scanRecord(row *sql.Row) (*Record, error) {
	var (
		record     Record
		recordID   uuid.UUID
		tenantID   uuid.UUID
		firstName  sql.NullString
		paternal   sql.NullString
		maternal   sql.NullString
		curp       sql.NullString
		dob        sql.NullString
		sex        sql.NullString
		verifiedAt sql.NullTime
	)
	err := row.Scan(
		&recordID, &tenantID, &record.Verified,
		&firstName, &paternal, &maternal, &curp, &dob, &sex,
		&verifiedAt, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.ID = id.ApplicantID(recordID)
	record.TenantID = id.TenantID(tenantID)
	if record.Verified {
		record.Identity = &Identity{
			FirstName:       firstName.String,
			PaternalSurname: paternal.String,
			MaternalSurname: maternal.String,
			CURP:            curp.String,
			DateOfBirth:     dob.String,
			Sex:             sex.String,
		}
	}
	if verifiedAt.Valid {
		record.VerifiedAt = &verifiedAt.Time
	}
	return &record, nil
}
