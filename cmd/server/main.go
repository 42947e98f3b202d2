package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"origen/internal/applicant"
	"origen/internal/jwttoken"
	"origen/internal/kyc"
	kychandler "origen/internal/kyc/handler"
	kycmetrics "origen/internal/kyc/metrics"
	"origen/internal/kyc/providers"
	kycstore "origen/internal/kyc/store"
	"origen/internal/platform/config"
	"origen/internal/platform/httpserver"
	"origen/internal/platform/logger"
	platformredis "origen/internal/platform/redis"
	"origen/internal/product"
	httptransport "origen/internal/transport/http"
	"origen/pkg/platform/audit"
	"origen/pkg/platform/circuit"
	authmw "origen/pkg/platform/middleware/auth"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal packages; everything here is assembly.
func main() {
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Session store: Redis when configured, memory otherwise.
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	var sessions kyc.SessionStore
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		sessions = kycstore.NewRedis(redisClient.Client, cfg.SessionTTL)
		log.Info("session store: redis", "ttl", cfg.SessionTTL)
	} else {
		sessions = kycstore.NewInMemory()
		log.Info("session store: memory")
	}

	// Applicant records: Postgres when configured, memory otherwise.
	var applicants kyc.ApplicantRecords
	if cfg.Postgres.DSN != "" {
		db, err := sql.Open("postgres", cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		applicants = applicant.NewPostgres(db)
		log.Info("applicant store: postgres")
	} else {
		applicants = applicant.NewInMemory()
		log.Info("applicant store: memory")
	}

	// Audit: memory store is authoritative; Kafka is an async best-effort
	// sink drained by a background worker.
	auditStore := audit.NewMemoryStore()
	var sinks []audit.Sink
	var auditWorker *audit.Worker
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		defer kafkaSink.Close()

		inbox := make(chan audit.Event, 256)
		sinks = append(sinks, audit.NewChannelSink(inbox))
		auditWorker = audit.NewWorker(kafkaSink, inbox)
		log.Info("audit sink: kafka", "topic", cfg.Kafka.Topic)
	}
	auditor := audit.NewPublisher(auditStore, log, sinks...)

	products := product.NewInMemoryStore()
	seeded := product.SeedDefaultProduct(products)
	log.Info("seeded default product", "product_id", seeded.ID, "requires_selfie", seeded.Requirements.RequiresSelfie())

	m := kycmetrics.New()
	orchestrator := kyc.NewOrchestrator(buildClients(cfg.Providers, log), log, m)
	service := kyc.NewService(sessions, products, applicants, orchestrator, auditor, log)

	tokens := jwttoken.NewService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)
	router := httptransport.NewRouter(kychandler.New(service, log), tokenValidator{tokens}, log)
	srv := httpserver.New(cfg.Addr, router)

	errCh := make(chan error, 2)
	if auditWorker != nil {
		go func() {
			if err := auditWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- err
			}
		}()
	}
	go func() {
		log.Info("starting origen kyc server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildClients wires the real HTTP adapters where a base URL is configured
// and falls back to deterministic mocks for local development. Both
// screening clients ride behind circuit breakers so a flapping provider
// degrades to fail-open instead of hammering a dead endpoint.
func buildClients(cfg config.ProviderConfig, log *slog.Logger) kyc.Clients {
	clients := kyc.Clients{
		Document: providers.MockDocumentClient{Result: providers.DocumentResult{
			OK:               true,
			NominalListValid: true,
			Fields:           providers.SampleIdentityFields(),
		}},
		CivilRegistry: providers.MockCivilRegistryClient{Result: providers.RegistryResult{OK: true}},
		FaceMatch:     providers.MockFaceMatchClient{Result: providers.FaceMatchResult{OK: true, Match: true, Score: 95}},
		Liveness:      providers.MockLivenessClient{Result: providers.LivenessResult{Passed: true, Score: 92}},
		Domestic:      providers.MockSanctionsClient{},
		International: providers.MockSanctionsClient{},
	}

	if cfg.DocumentBaseURL != "" {
		clients.Document = providers.NewHTTPDocumentClient(cfg.DocumentBaseURL, cfg.APIKey, cfg.CallTimeout)
	}
	if cfg.CivilRegistryBaseURL != "" {
		clients.CivilRegistry = providers.NewHTTPCivilRegistryClient(cfg.CivilRegistryBaseURL, cfg.APIKey, cfg.CallTimeout)
	}
	if cfg.FaceMatchBaseURL != "" {
		clients.FaceMatch = providers.NewHTTPFaceMatchClient(cfg.FaceMatchBaseURL, cfg.APIKey, cfg.CallTimeout)
	}
	if cfg.LivenessBaseURL != "" {
		clients.Liveness = providers.NewHTTPLivenessClient(cfg.LivenessBaseURL, cfg.APIKey, cfg.CallTimeout)
	}
	if cfg.DomesticListBaseURL != "" {
		clients.Domestic = providers.NewBreakeredSanctionsClient(
			providers.NewDomesticSanctionsClient(cfg.DomesticListBaseURL, cfg.APIKey, cfg.CallTimeout),
			circuit.New("domestic-screening"), log)
	}
	if cfg.InternationalBaseURL != "" {
		clients.International = providers.NewBreakeredSanctionsClient(
			providers.NewInternationalSanctionsClient(cfg.InternationalBaseURL, cfg.APIKey, cfg.CallTimeout),
			circuit.New("international-screening"), log)
	}
	return clients
}

// tokenValidator adapts the JWT service to the auth middleware contract.
type tokenValidator struct {
	tokens *jwttoken.Service
}

func (v tokenValidator) ValidateToken(tokenString string) (*authmw.TokenClaims, error) {
	claims, err := v.tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &authmw.TokenClaims{ApplicantID: claims.ApplicantID, TenantID: claims.TenantID}, nil
}
