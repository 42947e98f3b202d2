package kyc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"origen/internal/kyc/metrics"
	"origen/internal/kyc/providers"
)

// Verification thresholds. Face match below 80 is a mismatch; screening
// similarity thresholds differ per list because the domestic list contains
// far more homonyms.
const (
	FaceMatchThreshold               = 80.0
	DomesticSimilarityThreshold      = 90.0
	InternationalSimilarityThreshold = 80.0
)

// Applicant-facing messages. Every check always has one renderable message;
// raw provider errors never reach the UI.
const (
	msgDocumentUnreadable   = "the identity document could not be read; retake the document photo"
	msgFrontImageMissing    = "the front of the identity document was not captured; retake the document photo"
	msgSelfieMissing        = "no selfie was captured; retake the selfie"
	msgCouldNotExtractID    = "could not extract ID from document"
	msgRegistryMismatch     = "the identity could not be confirmed with the civil registry"
	msgFaceMismatch         = "face does not match ID photo"
	msgLivenessNotConfirmed = "liveness could not be confirmed; the application will be reviewed manually"
	msgNominalListInvalid   = "the document is not current on the nominal list; the application will be reviewed manually"
	msgScreeningMatch       = "a possible restricted-list match was found; the application will be reviewed manually"
	msgScreeningUnavailable = "the screening service is unavailable; the application will be reviewed manually"
	msgProviderUnreachable  = "the verification service did not respond; try again"
)

// Clients bundles the provider adapters the orchestrator sequences.
type Clients struct {
	Document      providers.DocumentClient
	CivilRegistry providers.CivilRegistryClient
	FaceMatch     providers.FaceMatchClient
	Liveness      providers.LivenessClient
	Domestic      providers.SanctionsClient
	International providers.SanctionsClient
}

// Input carries the applicant captures for one pipeline run. Retries reuse
// previously captured images unless the missing capture caused the failure.
type Input struct {
	FrontDocument  providers.Image
	BackDocument   providers.Image
	Selfie         providers.Image
	LivenessFrames []providers.Image
}

// Orchestrator runs the fixed check sequence with blocking/non-blocking
// policy, updating the session's progress tracker as each check resolves.
//
// Execution is sequential per session: later checks consume state established
// by document OCR, and the wizard renders progress step by step. The one
// exception is the two sanctions screenings, which run concurrently with each
// other; their tracker writes are serialized by the tracker's mutex.
type Orchestrator struct {
	clients Clients
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

func NewOrchestrator(clients Clients, logger *slog.Logger, m *metrics.Metrics) *Orchestrator {
	return &Orchestrator{
		clients: clients,
		logger:  logger,
		metrics: m,
		tracer:  otel.Tracer("origen/internal/kyc"),
	}
}

// Run executes the validation pipeline for the session. Checks already in a
// passed state (success or warning) are left untouched, so the same method
// serves both the first run and retries: a retry re-executes only checks in
// error, and once an early blocking failure is fixed the remaining pending
// checks run as the normal forward sequence.
//
// A blocking check failing halts the pipeline immediately; non-blocking
// failures degrade to warnings and the sequence continues so the applicant
// always sees a complete picture.
func (o *Orchestrator) Run(ctx context.Context, s *Session, input Input) {
	start := time.Now()
	ctx, span := o.tracer.Start(ctx, "kyc.pipeline",
		trace.WithAttributes(attribute.String("session_id", s.ID.String())))
	defer span.End()

	o.runPipeline(ctx, s, input)

	s.Verified = o.computeVerified(s)
	s.UpdatedAt = time.Now()

	outcome := "not_verified"
	if s.Verified {
		outcome = "verified"
	}
	o.metrics.IncrementSessionOutcome(outcome)
	if s.ManualReview {
		o.metrics.IncrementSessionOutcome("manual_review")
	}
	o.metrics.ObservePipeline(time.Since(start))

	o.logger.InfoContext(ctx, "validation pipeline finished",
		"session_id", s.ID,
		"applicant_id", s.ApplicantID,
		"verified", s.Verified,
		"manual_review", s.ManualReview,
		"complete", s.Progress.IsComplete(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// runnable reports whether a check should execute in this pass. Success and
// warning are passed states and are never re-run.
func runnable(status Status) bool {
	return status == StatusPending || status == StatusError || status == StatusInProgress
}

func (o *Orchestrator) runPipeline(ctx context.Context, s *Session, input Input) {
	for _, check := range s.Progress.Checks() {
		if !runnable(s.Progress.Status(check)) {
			continue
		}

		switch check {
		case CheckDocumentOCR:
			if !o.runDocumentOCR(ctx, s, input) {
				return
			}
		case CheckDocumentListLookup:
			// Evaluated inside runDocumentOCR from the same provider
			// response; it can only still be runnable here if OCR failed,
			// in which case the pipeline already halted.
			continue
		case CheckCivilRegistryIDMatch:
			if !o.runCivilRegistry(ctx, s) {
				return
			}
		case CheckLiveness:
			o.runLiveness(ctx, s, input)
		case CheckFaceMatch:
			if !o.runFaceMatch(ctx, s, input) {
				return
			}
		case CheckDomesticSanctions, CheckInternationalSanctions:
			o.runSanctions(ctx, s)
			return
		}
	}
}

// computeVerified applies the verification formula: document OCR and civil
// registry must succeed, and face match must succeed when required (the
// skipped face check is auto-marked success, so the formula reads uniformly).
// Sanctions outcomes never factor in; they only flag manual review.
func (o *Orchestrator) computeVerified(s *Session) bool {
	return s.Progress.Status(CheckDocumentOCR) == StatusSuccess &&
		s.Progress.Status(CheckCivilRegistryIDMatch) == StatusSuccess &&
		s.Progress.Status(CheckFaceMatch) == StatusSuccess
}

// runDocumentOCR executes the blocking OCR check and, on success, evaluates
// the nominal-list verdict embedded in the same response and projects the
// locked identity. Returns false when the pipeline must halt.
func (o *Orchestrator) runDocumentOCR(ctx context.Context, s *Session, input Input) bool {
	result, err := observeCall(ctx, o, s, CheckDocumentOCR, func(ctx context.Context) (providers.DocumentResult, error) {
		return o.clients.Document.Validate(ctx, input.FrontDocument, input.BackDocument)
	})
	if err != nil {
		s.Progress.SetStatus(CheckDocumentOCR, StatusError, o.providerErrorMessage(err, msgFrontImageMissing))
		return false
	}
	if !result.OK {
		message := result.Message
		if message == "" {
			message = msgDocumentUnreadable
		}
		s.Progress.SetStatus(CheckDocumentOCR, StatusError, message)
		return false
	}

	locked := ProjectIdentity(result.Fields)
	s.Locked = &locked
	s.setDocumentPhoto(result.Fields.PhotoCrop)
	s.Progress.SetStatus(CheckDocumentOCR, StatusSuccess, "")

	// Nominal-list verdict rides on the OCR response; no extra round trip.
	if result.NominalListValid {
		s.Progress.SetStatus(CheckDocumentListLookup, StatusSuccess, "")
	} else {
		s.Progress.SetStatus(CheckDocumentListLookup, StatusWarning, msgNominalListInvalid)
		s.ManualReview = true
	}
	return true
}

// runCivilRegistry executes the blocking registry match. An applicant whose
// ID could not be extracted can never be approved, so a missing CURP is a
// blocking failure without a provider call.
func (o *Orchestrator) runCivilRegistry(ctx context.Context, s *Session) bool {
	if s.Locked == nil || s.Locked.CURP == "" {
		s.Progress.SetStatus(CheckCivilRegistryIDMatch, StatusError, msgCouldNotExtractID)
		return false
	}

	curp, dob := s.Locked.CURP, s.Locked.DateOfBirth
	result, err := observeCall(ctx, o, s, CheckCivilRegistryIDMatch, func(ctx context.Context) (providers.RegistryResult, error) {
		return o.clients.CivilRegistry.ValidateID(ctx, curp, dob)
	})
	if err != nil {
		s.Progress.SetStatus(CheckCivilRegistryIDMatch, StatusError, o.providerErrorMessage(err, msgCouldNotExtractID))
		return false
	}
	if !result.OK {
		message := result.Message
		if message == "" {
			message = msgRegistryMismatch
		}
		s.Progress.SetStatus(CheckCivilRegistryIDMatch, StatusError, message)
		return false
	}

	s.Progress.SetStatus(CheckCivilRegistryIDMatch, StatusSuccess, "")
	return true
}

// runLiveness executes the non-blocking presence check. Liveness never fails
// hard: an absent capture or unconvinced provider degrades to a warning and
// manual review, not an error.
func (o *Orchestrator) runLiveness(ctx context.Context, s *Session, input Input) {
	result, _ := observeCall(ctx, o, s, CheckLiveness, func(ctx context.Context) (providers.LivenessResult, error) {
		return o.clients.Liveness.Check(ctx, input.LivenessFrames)
	})
	if result.Passed {
		s.Progress.SetStatus(CheckLiveness, StatusSuccess, "")
		return
	}
	s.Progress.SetStatus(CheckLiveness, StatusWarning, msgLivenessNotConfirmed)
	s.ManualReview = true
}

// runFaceMatch executes the face comparison, blocking only when the product
// demands a selfie. When not required the check is auto-marked success
// without any adapter invocation. Returns false when the pipeline must halt.
func (o *Orchestrator) runFaceMatch(ctx context.Context, s *Session, input Input) bool {
	if !s.RequiresSelfie {
		s.Progress.SetStatus(CheckFaceMatch, StatusSuccess, "")
		return true
	}

	docPhoto := s.DocumentPhoto()
	result, err := observeCall(ctx, o, s, CheckFaceMatch, func(ctx context.Context) (providers.FaceMatchResult, error) {
		return o.clients.FaceMatch.Match(ctx, input.Selfie, docPhoto)
	})
	if err != nil {
		s.Progress.SetStatus(CheckFaceMatch, StatusError, o.providerErrorMessage(err, msgSelfieMissing))
		return false
	}
	if result.Score < FaceMatchThreshold {
		s.Progress.SetStatus(CheckFaceMatch, StatusError, msgFaceMismatch)
		return false
	}

	s.Progress.SetStatus(CheckFaceMatch, StatusSuccess, "")
	return true
}

// runSanctions executes both screenings concurrently; neither depends on the
// other. Tracker writes stay race-free behind the tracker mutex. Both checks
// fail open on provider unavailability: a screening outage must not block a
// legitimate applicant, it only flags manual review. This is a deliberate
// business decision.
func (o *Orchestrator) runSanctions(ctx context.Context, s *Session) {
	fullName, nationalID := "", ""
	if s.Locked != nil {
		fullName = s.Locked.FullName()
		nationalID = s.Locked.CURP
	}

	var manualReview [2]bool
	g, gctx := errgroup.WithContext(ctx)

	if runnable(s.Progress.Status(CheckDomesticSanctions)) {
		g.Go(func() error {
			manualReview[0] = o.runOneScreening(gctx, s, CheckDomesticSanctions,
				o.clients.Domestic, fullName, nationalID, DomesticSimilarityThreshold)
			return nil
		})
	}
	if runnable(s.Progress.Status(CheckInternationalSanctions)) {
		g.Go(func() error {
			manualReview[1] = o.runOneScreening(gctx, s, CheckInternationalSanctions,
				o.clients.International, fullName, nationalID, InternationalSimilarityThreshold)
			return nil
		})
	}
	_ = g.Wait()

	if manualReview[0] || manualReview[1] {
		s.ManualReview = true
	}
}

// runOneScreening resolves a single sanctions check and reports whether it
// requires manual review.
func (o *Orchestrator) runOneScreening(ctx context.Context, s *Session, check Check, client providers.SanctionsClient, fullName, nationalID string, threshold float64) bool {
	result, err := observeCall(ctx, o, s, check, func(ctx context.Context) (providers.SanctionsResult, error) {
		return client.Screen(ctx, fullName, nationalID, threshold)
	})
	switch {
	case err != nil:
		// Non-blocking policy: even unexpected screening failures degrade to
		// a warning, never an error.
		s.Progress.SetStatus(check, StatusWarning, msgScreeningUnavailable)
		return true
	case result.Unavailable:
		// Fail open: the outage is recorded as a pass so the applicant is
		// not blocked, with the message routing the case to review.
		s.Progress.SetStatus(check, StatusSuccess, msgScreeningUnavailable)
		return true
	case result.Found:
		s.Progress.SetStatus(check, StatusWarning, msgScreeningMatch)
		return true
	default:
		s.Progress.SetStatus(check, StatusSuccess, "")
		return false
	}
}

// observeCall wraps one adapter call with in_progress marking, tracing, metrics,
// and debug logging.
func observeCall[T any](ctx context.Context, o *Orchestrator, s *Session, check Check, call func(context.Context) (T, error)) (T, error) {
	s.Progress.SetStatus(check, StatusInProgress, "")

	ctx, span := o.tracer.Start(ctx, "kyc.check."+string(check))
	defer span.End()

	start := time.Now()
	result, err := call(ctx)
	elapsed := time.Since(start)

	status := "ok"
	if err != nil {
		status = string(providers.GetCategory(err))
	}
	o.metrics.ObserveCheck(string(check), status, elapsed)

	o.logger.DebugContext(ctx, "verification check resolved",
		"session_id", s.ID,
		"check", check,
		"duration_ms", elapsed.Milliseconds(),
		"error", err,
	)
	return result, err
}

// providerErrorMessage converts a normalized provider error into the message
// shown next to the failed step. Missing-input failures name the capture to
// redo; everything else collapses to a retriable service message.
func (o *Orchestrator) providerErrorMessage(err error, missingInputMessage string) string {
	var pe *providers.ProviderError
	if errors.As(err, &pe) {
		switch pe.Category {
		case providers.ErrorMissingInput:
			return missingInputMessage
		case providers.ErrorTimeout, providers.ErrorProviderOutage:
			return msgProviderUnreachable
		}
	}
	return msgProviderUnreachable
}
