package kyc

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"origen/internal/kyc/providers"
	id "origen/pkg/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func passingClients() Clients {
	return Clients{
		Document: providers.MockDocumentClient{Result: providers.DocumentResult{
			OK:               true,
			NominalListValid: true,
			Fields:           providers.SampleIdentityFields(),
		}},
		CivilRegistry: providers.MockCivilRegistryClient{Result: providers.RegistryResult{OK: true}},
		FaceMatch:     providers.MockFaceMatchClient{Result: providers.FaceMatchResult{OK: true, Match: true, Score: 94}},
		Liveness:      providers.MockLivenessClient{Result: providers.LivenessResult{Passed: true, Score: 91}},
		Domestic:      providers.MockSanctionsClient{},
		International: providers.MockSanctionsClient{},
	}
}

func fullInput() Input {
	return Input{
		FrontDocument:  providers.Image{Name: "front.jpg", Data: []byte("front")},
		BackDocument:   providers.Image{Name: "back.jpg", Data: []byte("back")},
		Selfie:         providers.Image{Name: "selfie.jpg", Data: []byte("selfie")},
		LivenessFrames: []providers.Image{{Name: "frame0.jpg", Data: []byte("f0")}},
	}
}

func newTestSession(requiresSelfie bool) *Session {
	return NewSession(id.NewApplicantID(), id.NewProductID(), requiresSelfie, time.Now())
}

// countingDocumentClient tracks invocations so retry tests can prove that
// passed checks never hit the provider again.
type countingDocumentClient struct {
	inner providers.DocumentClient
	calls int
}

func (c *countingDocumentClient) Validate(ctx context.Context, front, back providers.Image) (providers.DocumentResult, error) {
	c.calls++
	return c.inner.Validate(ctx, front, back)
}

// failThenSucceedRegistry fails with a provider outage on the first call and
// succeeds afterwards.
type failThenSucceedRegistry struct {
	calls int
}

func (c *failThenSucceedRegistry) ValidateID(context.Context, string, string) (providers.RegistryResult, error) {
	c.calls++
	if c.calls == 1 {
		return providers.RegistryResult{}, providers.NewProviderError(
			providers.ErrorProviderOutage, "registry", "upstream 503", nil)
	}
	return providers.RegistryResult{OK: true}, nil
}

func TestOrchestrator_Run_AllChecksPass(t *testing.T) {
	o := NewOrchestrator(passingClients(), discardLogger(), nil)
	session := newTestSession(true)

	o.Run(context.Background(), session, fullInput())

	for _, check := range session.Progress.Checks() {
		assert.Equal(t, StatusSuccess, session.Progress.Status(check), "check %s", check)
	}
	assert.True(t, session.Verified)
	assert.False(t, session.ManualReview)
	assert.True(t, session.Progress.IsComplete())
	assert.True(t, session.Progress.AllPassed())

	require.NotNil(t, session.Locked)
	assert.Equal(t, "GOLM800101MDFNPR03", session.Locked.CURP)
	assert.Equal(t, "María", session.Locked.FirstName)
	assert.False(t, session.DocumentPhoto().IsEmpty())
}

func TestOrchestrator_Run_NoSelfieProductSkipsFaceMatch(t *testing.T) {
	clients := passingClients()
	// Would fail the run if the orchestrator ever invoked them.
	clients.FaceMatch = providers.MockFaceMatchClient{Err: providers.NewProviderError(
		providers.ErrorInternal, "face", "must not be called", nil)}
	clients.Liveness = providers.MockLivenessClient{}

	o := NewOrchestrator(clients, discardLogger(), nil)
	session := newTestSession(false)

	o.Run(context.Background(), session, Input{
		FrontDocument: providers.Image{Name: "front.jpg", Data: []byte("front")},
	})

	assert.Len(t, session.Progress.Checks(), 6)
	assert.NotContains(t, session.Progress.Checks(), CheckLiveness)
	assert.Equal(t, StatusSuccess, session.Progress.Status(CheckFaceMatch))
	assert.Empty(t, session.Progress.Message(CheckFaceMatch))
	assert.True(t, session.Verified)
	assert.True(t, session.Progress.IsComplete())
}

func TestOrchestrator_Run_DocumentFailureHaltsPipeline(t *testing.T) {
	clients := passingClients()
	clients.Document = providers.MockDocumentClient{Result: providers.DocumentResult{
		OK:      false,
		Message: "document has too much glare",
	}}

	o := NewOrchestrator(clients, discardLogger(), nil)
	session := newTestSession(true)

	o.Run(context.Background(), session, fullInput())

	assert.Equal(t, StatusError, session.Progress.Status(CheckDocumentOCR))
	assert.Equal(t, "document has too much glare", session.Progress.Message(CheckDocumentOCR))
	for _, check := range []Check{
		CheckDocumentListLookup,
		CheckCivilRegistryIDMatch,
		CheckLiveness,
		CheckFaceMatch,
		CheckDomesticSanctions,
		CheckInternationalSanctions,
	} {
		assert.Equal(t, StatusPending, session.Progress.Status(check), "check %s", check)
	}
	assert.False(t, session.Verified)
	assert.False(t, session.Progress.IsComplete())
	assert.Nil(t, session.Locked)
}

func TestOrchestrator_Run_MissingFrontCaptureNamesTheRetake(t *testing.T) {
	o := NewOrchestrator(passingClients(), discardLogger(), nil)
	session := newTestSession(true)

	o.Run(context.Background(), session, Input{})

	assert.Equal(t, StatusError, session.Progress.Status(CheckDocumentOCR))
	assert.Equal(t, msgFrontImageMissing, session.Progress.Message(CheckDocumentOCR))
	assert.Equal(t, StatusPending, session.Progress.Status(CheckCivilRegistryIDMatch))
}

func TestOrchestrator_Run_NominalListWarningDoesNotBlock(t *testing.T) {
	clients := passingClients()
	clients.Document = providers.MockDocumentClient{Result: providers.DocumentResult{
		OK:               true,
		NominalListValid: false,
		Fields:           providers.SampleIdentityFields(),
	}}

	o := NewOrchestrator(clients, discardLogger(), nil)
	session := newTestSession(true)

	o.Run(context.Background(), session, fullInput())

	assert.Equal(t, StatusWarning, session.Progress.Status(CheckDocumentListLookup))
	assert.Equal(t, msgNominalListInvalid, session.Progress.Message(CheckDocumentListLookup))
	assert.True(t, session.ManualReview)
	assert.True(t, session.Verified, "warnings never block verification")
	assert.True(t, session.Progress.IsComplete())
}

func TestOrchestrator_Run_RegistryMismatchBlocks(t *testing.T) {
	clients := passingClients()
	clients.CivilRegistry = providers.MockCivilRegistryClient{Result: providers.RegistryResult{OK: false}}

	o := NewOrchestrator(clients, discardLogger(), nil)
	session := newTestSession(true)

	o.Run(context.Background(), session, fullInput())

	assert.Equal(t, StatusSuccess, session.Progress.Status(CheckDocumentOCR))
	assert.Equal(t, StatusError, session.Progress.Status(CheckCivilRegistryIDMatch))
	assert.Equal(t, msgRegistryMismatch, session.Progress.Message(CheckCivilRegistryIDMatch))
	assert.Equal(t, StatusPending, session.Progress.Status(CheckFaceMatch))
	assert.Equal(t, StatusPending, session.Progress.Status(CheckDomesticSanctions))
	assert.False(t, session.Verified)
}

func TestOrchestrator_Run_MissingCURPFailsRegistryWithoutProviderCall(t *testing.T) {
	fields := providers.SampleIdentityFields()
	fields.CURP = ""

	clients := passingClients()
	clients.Document = providers.MockDocumentClient{Result: providers.DocumentResult{
		OK: true, NominalListValid: true, Fields: fields,
	}}
	registry := &failThenSucceedRegistry{}
	clients.CivilRegistry = registry

	o := NewOrchestrator(clients, discardLogger(), nil)
	session := newTestSession(true)

	o.Run(context.Background(), session, fullInput())

	assert.Equal(t, StatusError, session.Progress.Status(CheckCivilRegistryIDMatch))
	assert.Equal(t, msgCouldNotExtractID, session.Progress.Message(CheckCivilRegistryIDMatch))
	assert.Zero(t, registry.calls, "registry must not be called without a CURP")
}

func TestOrchestrator_Run_FaceMismatchBlocks(t *testing.T) {
	clients := passingClients()
	clients.FaceMatch = providers.MockFaceMatchClient{Result: providers.FaceMatchResult{
		OK: true, Match: false, Score: 61,
	}}

	o := NewOrchestrator(clients, discardLogger(), nil)
	session := newTestSession(true)

	o.Run(context.Background(), session, fullInput())

	assert.Equal(t, StatusError, session.Progress.Status(CheckFaceMatch))
	assert.Equal(t, msgFaceMismatch, session.Progress.Message(CheckFaceMatch))
	assert.Equal(t, StatusPending, session.Progress.Status(CheckDomesticSanctions))
	assert.Equal(t, StatusPending, session.Progress.Status(CheckInternationalSanctions))
	assert.False(t, session.Verified)
}

func TestOrchestrator_Run_LivenessDegradesToWarning(t *testing.T) {
	o := NewOrchestrator(passingClients(), discardLogger(), nil)
	session := newTestSession(true)

	input := fullInput()
	input.LivenessFrames = nil
	o.Run(context.Background(), session, input)

	assert.Equal(t, StatusWarning, session.Progress.Status(CheckLiveness))
	assert.Equal(t, msgLivenessNotConfirmed, session.Progress.Message(CheckLiveness))
	assert.True(t, session.ManualReview)
	assert.True(t, session.Verified, "liveness is advisory, not blocking")
}

func TestOrchestrator_Run_SanctionsMatchWarnsWithoutBlocking(t *testing.T) {
	clients := passingClients()
	clients.Domestic = providers.MockSanctionsClient{Result: providers.SanctionsResult{
		Found: true,
		Matches: []providers.SanctionsMatch{
			{Name: "María González López", Similarity: 93, List: "domestic"},
		},
	}}

	o := NewOrchestrator(clients, discardLogger(), nil)
	session := newTestSession(true)

	o.Run(context.Background(), session, fullInput())

	assert.Equal(t, StatusWarning, session.Progress.Status(CheckDomesticSanctions))
	assert.Equal(t, msgScreeningMatch, session.Progress.Message(CheckDomesticSanctions))
	assert.Equal(t, StatusSuccess, session.Progress.Status(CheckInternationalSanctions))
	assert.True(t, session.ManualReview)
	assert.True(t, session.Verified, "screening outcomes never factor into verified")
	assert.True(t, session.Progress.IsComplete())
}

func TestOrchestrator_Run_ScreeningOutageFailsOpen(t *testing.T) {
	clients := passingClients()
	clients.Domestic = providers.MockSanctionsClient{Result: providers.SanctionsResult{Unavailable: true}}
	clients.International = providers.MockSanctionsClient{Err: providers.NewProviderError(
		providers.ErrorTimeout, "international", "deadline exceeded", nil)}

	o := NewOrchestrator(clients, discardLogger(), nil)
	session := newTestSession(true)

	o.Run(context.Background(), session, fullInput())

	assert.Equal(t, StatusSuccess, session.Progress.Status(CheckDomesticSanctions))
	assert.Equal(t, msgScreeningUnavailable, session.Progress.Message(CheckDomesticSanctions))
	assert.Equal(t, StatusWarning, session.Progress.Status(CheckInternationalSanctions))
	assert.True(t, session.ManualReview)
	assert.True(t, session.Verified, "screening outages must not block a legitimate applicant")
	assert.True(t, session.Progress.IsComplete())
}

func TestOrchestrator_Run_RetryOnlyRerunsFailedChecks(t *testing.T) {
	document := &countingDocumentClient{inner: passingClients().Document}
	registry := &failThenSucceedRegistry{}

	clients := passingClients()
	clients.Document = document
	clients.CivilRegistry = registry

	o := NewOrchestrator(clients, discardLogger(), nil)
	session := newTestSession(true)

	o.Run(context.Background(), session, fullInput())

	require.Equal(t, StatusSuccess, session.Progress.Status(CheckDocumentOCR))
	require.Equal(t, StatusError, session.Progress.Status(CheckCivilRegistryIDMatch))
	require.Equal(t, StatusPending, session.Progress.Status(CheckFaceMatch))
	require.Equal(t, 1, document.calls)
	assert.False(t, session.Verified)

	// Retry: only the failed registry check re-invokes its provider; the
	// passed OCR is untouched and the never-run tail executes forward.
	o.Run(context.Background(), session, fullInput())

	assert.Equal(t, 1, document.calls, "passed checks must not re-invoke providers")
	assert.Equal(t, 2, registry.calls)
	assert.Equal(t, StatusSuccess, session.Progress.Status(CheckCivilRegistryIDMatch))
	assert.Empty(t, session.Progress.Message(CheckCivilRegistryIDMatch),
		"a succeeded check must not keep its earlier failure text")
	assert.Equal(t, StatusSuccess, session.Progress.Status(CheckFaceMatch))
	assert.Equal(t, StatusSuccess, session.Progress.Status(CheckDomesticSanctions))
	assert.True(t, session.Verified)
	assert.True(t, session.Progress.IsComplete())
}

func TestOrchestrator_Run_FinishedSessionIsNoOp(t *testing.T) {
	document := &countingDocumentClient{inner: passingClients().Document}
	clients := passingClients()
	clients.Document = document

	o := NewOrchestrator(clients, discardLogger(), nil)
	session := newTestSession(true)

	o.Run(context.Background(), session, fullInput())
	require.True(t, session.Verified)

	o.Run(context.Background(), session, fullInput())

	assert.Equal(t, 1, document.calls)
	assert.True(t, session.Verified)
	assert.True(t, session.Progress.AllPassed())
}
