// Package handler exposes the KYC session lifecycle over HTTP. Captures are
// uploaded as multipart form files; session state is returned as JSON.
package handler

import (
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"origen/internal/kyc"
	"origen/internal/kyc/providers"
	id "origen/pkg/domain"
	dErrors "origen/pkg/domain-errors"
	"origen/pkg/platform/httputil"
	"origen/pkg/requestcontext"
)

// maxUploadBytes bounds one validation upload: up to two document sides, a
// selfie, and a handful of liveness frames.
const maxUploadBytes = 32 << 20

// Service defines the session operations the handler exposes.
type Service interface {
	StartSession(ctx context.Context, productID id.ProductID) (*kyc.Session, error)
	Validate(ctx context.Context, sessionID id.SessionID, input kyc.Input) (*kyc.Session, error)
	Retry(ctx context.Context, sessionID id.SessionID, input kyc.Input) (*kyc.Session, error)
	Reset(ctx context.Context, sessionID id.SessionID) error
	Get(ctx context.Context, sessionID id.SessionID) (*kyc.Session, error)
}

// Handler wires KYC endpoints to the KYC service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a KYC handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts KYC endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/kyc/sessions", h.HandleStartSession)
	r.Get("/kyc/sessions/{sessionID}", h.HandleGetSession)
	r.Post("/kyc/sessions/{sessionID}/validate", h.HandleValidate)
	r.Post("/kyc/sessions/{sessionID}/retry", h.HandleRetry)
	r.Delete("/kyc/sessions/{sessionID}", h.HandleReset)
}

// HandleStartSession handles POST /kyc/sessions requests.
func (h *Handler) HandleStartSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[StartSessionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	session, err := h.service.StartSession(ctx, req.ParsedProductID())
	if err != nil {
		h.logger.ErrorContext(ctx, "start kyc session failed",
			"request_id", requestID,
			"product_id", req.ProductID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, FromSession(session))
}

// HandleGetSession handles GET /kyc/sessions/{sessionID} requests.
func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID, err := parseSessionID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	session, err := h.service.Get(ctx, sessionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromSession(session))
}

// HandleValidate handles POST /kyc/sessions/{sessionID}/validate requests.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	h.runPipeline(w, r, h.service.Validate, "kyc validation failed")
}

// HandleRetry handles POST /kyc/sessions/{sessionID}/retry requests.
func (h *Handler) HandleRetry(w http.ResponseWriter, r *http.Request) {
	h.runPipeline(w, r, h.service.Retry, "kyc retry failed")
}

func (h *Handler) runPipeline(w http.ResponseWriter, r *http.Request, op func(context.Context, id.SessionID, kyc.Input) (*kyc.Session, error), logMessage string) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	sessionID, err := parseSessionID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	input, err := parseInput(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	session, err := op(ctx, sessionID, input)
	if err != nil {
		h.logger.ErrorContext(ctx, logMessage,
			"request_id", requestID,
			"session_id", sessionID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "kyc pipeline request served",
		"request_id", requestID,
		"session_id", sessionID,
		"verified", session.Verified,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromSession(session))
}

// HandleReset handles DELETE /kyc/sessions/{sessionID} requests.
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID, err := parseSessionID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Reset(ctx, sessionID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseSessionID(r *http.Request) (id.SessionID, error) {
	sessionID, err := id.ParseSessionID(chi.URLParam(r, "sessionID"))
	if err != nil {
		return id.SessionID{}, dErrors.New(dErrors.CodeInvalidInput, "session id must be a valid UUID")
	}
	return sessionID, nil
}

// parseInput reads the multipart captures. Every file is optional at the
// transport level; the pipeline decides which missing capture fails which
// check.
func parseInput(r *http.Request) (kyc.Input, error) {
	var input kyc.Input

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return input, dErrors.New(dErrors.CodeBadRequest, "multipart form body is required")
	}

	var err error
	if input.FrontDocument, err = formImage(r, "front_document"); err != nil {
		return input, err
	}
	if input.BackDocument, err = formImage(r, "back_document"); err != nil {
		return input, err
	}
	if input.Selfie, err = formImage(r, "selfie"); err != nil {
		return input, err
	}

	for _, header := range r.MultipartForm.File["liveness_frames"] {
		frame, err := readImage(header)
		if err != nil {
			return input, err
		}
		input.LivenessFrames = append(input.LivenessFrames, frame)
	}
	return input, nil
}

func formImage(r *http.Request, field string) (providers.Image, error) {
	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		return providers.Image{}, nil
	}
	return readImage(headers[0])
}

func readImage(header *multipart.FileHeader) (providers.Image, error) {
	file, err := header.Open()
	if err != nil {
		return providers.Image{}, dErrors.New(dErrors.CodeBadRequest, "could not read uploaded file")
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return providers.Image{}, dErrors.New(dErrors.CodeBadRequest, "could not read uploaded file")
	}
	return providers.Image{Name: header.Filename, Data: data}, nil
}
