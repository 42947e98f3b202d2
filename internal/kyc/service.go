package kyc

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks SessionStore,ProductCatalog,ApplicantRecords,Auditor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"origen/internal/applicant"
	"origen/internal/product"
	id "origen/pkg/domain"
	dErrors "origen/pkg/domain-errors"
	"origen/pkg/platform/audit"
	"origen/pkg/platform/sentinel"
	"origen/pkg/requestcontext"
)

// SessionStore persists validation sessions. Implementations return
// sentinel.ErrNotFound for unknown or expired sessions.
type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	FindByID(ctx context.Context, sessionID id.SessionID) (*Session, error)
	Delete(ctx context.Context, sessionID id.SessionID) error
}

// ProductCatalog resolves the product whose document requirements shape the
// check sequence.
type ProductCatalog interface {
	FindByID(ctx context.Context, productID id.ProductID) (product.Product, error)
}

// ApplicantRecords receives the verified-identity write when a session first
// reaches verified.
type ApplicantRecords interface {
	MarkVerified(ctx context.Context, applicantID id.ApplicantID, tenantID id.TenantID, identity applicant.Identity, now time.Time) error
}

// Auditor records lifecycle events.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns the KYC session lifecycle: creation against a product's
// requirements, validation and retry runs, and reset. All operations are
// scoped to the authenticated applicant; a session is never visible outside
// the applicant that owns it.
type Service struct {
	sessions     SessionStore
	products     ProductCatalog
	applicants   ApplicantRecords
	orchestrator *Orchestrator
	auditor      Auditor
	logger       *slog.Logger
}

func NewService(
	sessions SessionStore,
	products ProductCatalog,
	applicants ApplicantRecords,
	orchestrator *Orchestrator,
	auditor Auditor,
	logger *slog.Logger,
) *Service {
	return &Service{
		sessions:     sessions,
		products:     products,
		applicants:   applicants,
		orchestrator: orchestrator,
		auditor:      auditor,
		logger:       logger,
	}
}

// StartSession creates a fresh validation session for the authenticated
// applicant. The product's document requirements decide whether a selfie
// (and with it liveness and a real face match) participates; that decision
// is frozen into the session and never revisited.
func (s *Service) StartSession(ctx context.Context, productID id.ProductID) (*Session, error) {
	applicantID := requestcontext.ApplicantID(ctx)
	if applicantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing applicant identity")
	}

	prod, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "product not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load product")
	}

	session := NewSession(applicantID, productID, prod.Requirements.RequiresSelfie(), requestcontext.Now(ctx))
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "save session")
	}

	s.emit(ctx, session, audit.ActionSessionStarted, "", "")
	s.logger.InfoContext(ctx, "kyc session started",
		"session_id", session.ID,
		"applicant_id", session.ApplicantID,
		"product_id", session.ProductID,
		"requires_selfie", session.RequiresSelfie,
	)
	return session, nil
}

// Validate runs the verification pipeline over the session with the supplied
// captures. Checks that already passed are never re-executed, so calling
// Validate on a finished session is a harmless no-op returning its state.
func (s *Service) Validate(ctx context.Context, sessionID id.SessionID, input Input) (*Session, error) {
	return s.run(ctx, sessionID, input, audit.ActionValidationRun)
}

// Retry re-runs the pipeline after a failure. Only checks currently in error
// are re-invoked; once they pass, the remaining never-run checks execute as
// the normal forward sequence. Retrying a session with nothing in error is a
// conflict.
func (s *Service) Retry(ctx context.Context, sessionID id.SessionID, input Input) (*Session, error) {
	session, err := s.loadOwned(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if _, _, failed := session.Progress.FirstError(); !failed {
		return nil, dErrors.New(dErrors.CodeConflict, "no failed checks to retry")
	}
	return s.run(ctx, sessionID, input, audit.ActionValidationRetried)
}

func (s *Service) run(ctx context.Context, sessionID id.SessionID, input Input, action audit.Action) (*Session, error) {
	session, err := s.loadOwned(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	wasVerified := session.Verified
	wasFlagged := session.ManualReview

	s.orchestrator.Run(ctx, session, input)

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "save session")
	}

	decision := "not_verified"
	if session.Verified {
		decision = "verified"
	}
	reason := ""
	if check, _, failed := session.Progress.FirstError(); failed {
		reason = string(check)
	}
	s.emit(ctx, session, action, decision, reason)

	if session.ManualReview && !wasFlagged {
		s.emit(ctx, session, audit.ActionManualReviewFlagged, decision, "")
	}
	if session.Verified && !wasVerified {
		s.recordVerified(ctx, session)
	}
	return session, nil
}

// recordVerified copies the locked identity into the applicant record. The
// store enforces first-verified-wins, so emitting for an applicant verified
// through an earlier session leaves the original identity untouched.
func (s *Service) recordVerified(ctx context.Context, session *Session) {
	if session.Locked == nil {
		return
	}
	identity := applicant.Identity{
		FirstName:       session.Locked.FirstName,
		PaternalSurname: session.Locked.PaternalSurname,
		MaternalSurname: session.Locked.MaternalSurname,
		CURP:            session.Locked.CURP,
		DateOfBirth:     session.Locked.DateOfBirth,
		Sex:             session.Locked.Sex,
	}
	err := s.applicants.MarkVerified(ctx, session.ApplicantID, requestcontext.TenantID(ctx), identity, requestcontext.Now(ctx))
	if err != nil {
		// The session itself is already saved as verified; the applicant
		// record write will be reconciled on the next read path.
		s.logger.ErrorContext(ctx, "mark applicant verified failed",
			"session_id", session.ID,
			"applicant_id", session.ApplicantID,
			"error", err,
		)
		return
	}
	s.emit(ctx, session, audit.ActionApplicantVerified, "verified", "")
}

// Reset discards the session entirely. Restarting KYC always begins from a
// blank check set; nothing from the discarded attempt carries over.
func (s *Service) Reset(ctx context.Context, sessionID id.SessionID) error {
	session, err := s.loadOwned(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, session.ID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete session")
	}
	s.emit(ctx, session, audit.ActionSessionReset, "", "")
	return nil
}

// Get returns the session for status polling.
func (s *Service) Get(ctx context.Context, sessionID id.SessionID) (*Session, error) {
	return s.loadOwned(ctx, sessionID)
}

// loadOwned fetches the session and enforces applicant ownership. A session
// owned by someone else reads as not found so its existence never leaks.
func (s *Service) loadOwned(ctx context.Context, sessionID id.SessionID) (*Session, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "session not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load session")
	}
	if session.ApplicantID != requestcontext.ApplicantID(ctx) {
		return nil, dErrors.New(dErrors.CodeNotFound, "session not found")
	}
	return session, nil
}

func (s *Service) emit(ctx context.Context, session *Session, action audit.Action, decision, reason string) {
	err := s.auditor.Emit(ctx, audit.Event{
		Action:      action,
		SessionID:   session.ID,
		ApplicantID: session.ApplicantID,
		TenantID:    requestcontext.TenantID(ctx),
		RequestID:   requestcontext.RequestID(ctx),
		Decision:    decision,
		Reason:      reason,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", action, "error", err)
	}
}
