// Package audit captures the verification lifecycle as structured,
// append-only events. Events carry no raw identity data: the applicant ID is
// the only identifier, and screening outcomes are recorded as decisions, not
// list contents.
package audit

import (
	"time"

	id "origen/pkg/domain"
)

// Action identifies what happened to a validation session.
type Action string

const (
	ActionSessionStarted      Action = "kyc_session_started"
	ActionValidationRun       Action = "kyc_validation_run"
	ActionValidationRetried   Action = "kyc_validation_retried"
	ActionApplicantVerified   Action = "kyc_applicant_verified"
	ActionManualReviewFlagged Action = "kyc_manual_review_flagged"
	ActionSessionReset        Action = "kyc_session_reset"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp   time.Time      `json:"timestamp"`
	Action      Action         `json:"action"`
	SessionID   id.SessionID   `json:"session_id"`
	ApplicantID id.ApplicantID `json:"applicant_id"`
	TenantID    id.TenantID    `json:"tenant_id,omitempty"`
	RequestID   string         `json:"request_id,omitempty"`
	Decision    string         `json:"decision,omitempty"`
	Reason      string         `json:"reason,omitempty"`
}
