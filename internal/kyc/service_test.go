package kyc_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"origen/internal/kyc"
	"origen/internal/kyc/mocks"
	"origen/internal/kyc/providers"
	"origen/internal/product"
	id "origen/pkg/domain"
	dErrors "origen/pkg/domain-errors"
	"origen/pkg/platform/sentinel"
	"origen/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	ctrl           *gomock.Controller
	mockSessions   *mocks.MockSessionStore
	mockProducts   *mocks.MockProductCatalog
	mockApplicants *mocks.MockApplicantRecords
	mockAuditor    *mocks.MockAuditor
	service        *kyc.Service

	applicantID id.ApplicantID
	tenantID    id.TenantID
	now         time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockSessions = mocks.NewMockSessionStore(s.ctrl)
	s.mockProducts = mocks.NewMockProductCatalog(s.ctrl)
	s.mockApplicants = mocks.NewMockApplicantRecords(s.ctrl)
	s.mockAuditor = mocks.NewMockAuditor(s.ctrl)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clients := kyc.Clients{
		Document: providers.MockDocumentClient{Result: providers.DocumentResult{
			OK:               true,
			NominalListValid: true,
			Fields:           providers.SampleIdentityFields(),
		}},
		CivilRegistry: providers.MockCivilRegistryClient{Result: providers.RegistryResult{OK: true}},
		FaceMatch:     providers.MockFaceMatchClient{Result: providers.FaceMatchResult{OK: true, Match: true, Score: 95}},
		Liveness:      providers.MockLivenessClient{Result: providers.LivenessResult{Passed: true}},
		Domestic:      providers.MockSanctionsClient{},
		International: providers.MockSanctionsClient{},
	}
	orchestrator := kyc.NewOrchestrator(clients, logger, nil)

	s.service = kyc.NewService(s.mockSessions, s.mockProducts, s.mockApplicants, orchestrator, s.mockAuditor, logger)

	s.applicantID = id.NewApplicantID()
	s.tenantID = id.NewTenantID()
	s.now = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) authedCtx() context.Context {
	ctx := requestcontext.WithApplicantID(context.Background(), s.applicantID)
	ctx = requestcontext.WithTenantID(ctx, s.tenantID)
	ctx = requestcontext.WithTime(ctx, s.now)
	return ctx
}

func (s *ServiceSuite) selfieProduct() product.Product {
	reqs, err := product.NewRequirementSet([]product.DocumentRequirement{
		product.RequirementIDFront,
		product.RequirementSelfie,
	})
	s.Require().NoError(err)
	return product.Product{
		ID:           id.NewProductID(),
		TenantID:     s.tenantID,
		Name:         "personal-loan",
		Requirements: reqs,
	}
}

func fullTestInput() kyc.Input {
	return kyc.Input{
		FrontDocument:  providers.Image{Name: "front.jpg", Data: []byte("front")},
		Selfie:         providers.Image{Name: "selfie.jpg", Data: []byte("selfie")},
		LivenessFrames: []providers.Image{{Name: "f0.jpg", Data: []byte("f0")}},
	}
}

func (s *ServiceSuite) TestStartSession() {
	s.Run("creates a pending session from product requirements", func() {
		prod := s.selfieProduct()
		s.mockProducts.EXPECT().FindByID(gomock.Any(), prod.ID).Return(prod, nil)
		s.mockSessions.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
		s.mockAuditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		session, err := s.service.StartSession(s.authedCtx(), prod.ID)
		s.Require().NoError(err)
		s.Equal(s.applicantID, session.ApplicantID)
		s.True(session.RequiresSelfie)
		s.False(session.Verified)
		s.Len(session.Progress.Checks(), 7)
		s.Equal(s.now, session.CreatedAt)
	})

	s.Run("missing applicant identity returns unauthorized", func() {
		_, err := s.service.StartSession(context.Background(), id.NewProductID())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("unknown product returns not found", func() {
		productID := id.NewProductID()
		s.mockProducts.EXPECT().FindByID(gomock.Any(), productID).
			Return(product.Product{}, sentinel.ErrNotFound)

		_, err := s.service.StartSession(s.authedCtx(), productID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestValidate() {
	s.Run("verified run writes the applicant record once", func() {
		session := kyc.NewSession(s.applicantID, id.NewProductID(), true, s.now)
		s.mockSessions.EXPECT().FindByID(gomock.Any(), session.ID).Return(session, nil)
		s.mockSessions.EXPECT().Save(gomock.Any(), session).Return(nil)
		s.mockAuditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
		s.mockApplicants.EXPECT().
			MarkVerified(gomock.Any(), s.applicantID, s.tenantID, gomock.Any(), s.now).
			Return(nil)

		result, err := s.service.Validate(s.authedCtx(), session.ID, fullTestInput())
		s.Require().NoError(err)
		s.True(result.Verified)
		s.True(result.Progress.IsComplete())
	})

	s.Run("foreign session reads as not found", func() {
		session := kyc.NewSession(id.NewApplicantID(), id.NewProductID(), true, s.now)
		s.mockSessions.EXPECT().FindByID(gomock.Any(), session.ID).Return(session, nil)

		_, err := s.service.Validate(s.authedCtx(), session.ID, fullTestInput())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestRetry() {
	s.Run("nothing in error returns conflict", func() {
		session := kyc.NewSession(s.applicantID, id.NewProductID(), true, s.now)
		s.mockSessions.EXPECT().FindByID(gomock.Any(), session.ID).Return(session, nil)

		_, err := s.service.Retry(s.authedCtx(), session.ID, fullTestInput())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("failed check is re-run and the tail executes", func() {
		session := kyc.NewSession(s.applicantID, id.NewProductID(), true, s.now)
		session.Progress.SetStatus(kyc.CheckDocumentOCR, kyc.StatusError, "unreadable document")

		s.mockSessions.EXPECT().FindByID(gomock.Any(), session.ID).Return(session, nil).Times(2)
		s.mockSessions.EXPECT().Save(gomock.Any(), session).Return(nil)
		s.mockAuditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
		s.mockApplicants.EXPECT().
			MarkVerified(gomock.Any(), s.applicantID, s.tenantID, gomock.Any(), s.now).
			Return(nil)

		result, err := s.service.Retry(s.authedCtx(), session.ID, fullTestInput())
		s.Require().NoError(err)
		s.True(result.Verified)
		s.Equal(kyc.StatusSuccess, result.Progress.Status(kyc.CheckDocumentOCR))
	})
}

func (s *ServiceSuite) TestReset() {
	session := kyc.NewSession(s.applicantID, id.NewProductID(), true, s.now)
	s.mockSessions.EXPECT().FindByID(gomock.Any(), session.ID).Return(session, nil)
	s.mockSessions.EXPECT().Delete(gomock.Any(), session.ID).Return(nil)
	s.mockAuditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

	err := s.service.Reset(s.authedCtx(), session.ID)
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestGet() {
	sessionID := id.NewSessionID()
	s.mockSessions.EXPECT().FindByID(gomock.Any(), sessionID).
		Return(nil, sentinel.ErrNotFound)

	_, err := s.service.Get(s.authedCtx(), sessionID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
