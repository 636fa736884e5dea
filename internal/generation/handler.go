package generation

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/viralscript/viralscript/internal/api"
	"github.com/viralscript/viralscript/internal/auth"
	"github.com/viralscript/viralscript/internal/governance/quota"
	"github.com/viralscript/viralscript/internal/patterns"
	"github.com/viralscript/viralscript/internal/transcript"
	"github.com/viralscript/viralscript/internal/video"
)

const maxRequestBytes = 1 << 20

// Generator runs a generation for an authenticated user.
type Generator interface {
	Generate(ctx context.Context, userID uuid.UUID, req *Request) (*Response, error)
}

// BurstLimiter caps how often one user may start generations.
type BurstLimiter interface {
	Allow(ctx context.Context, userID uuid.UUID) (bool, error)
}

type Handler struct {
	svc       Generator
	burst     BurstLimiter
	validator *RequestValidator
}

// NewHandler returns a generation handler. burst may be nil.
func NewHandler(svc Generator, burst BurstLimiter) *Handler {
	return &Handler{svc: svc, burst: burst, validator: NewRequestValidator()}
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserClaims(r.Context())
	if claims == nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	var req Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		api.HandleError(w, api.NewBadRequestError("invalid request body"))
		return
	}

	// Only well-formed requests count against the burst window.
	if result := h.validator.Validate(&req); !result.Valid {
		api.HandleError(w, toAppError(&ValidationError{Errors: result.Errors}, userID))
		return
	}

	if h.burst != nil {
		ok, err := h.burst.Allow(r.Context(), userID)
		if err != nil {
			slog.Warn("burst limiter unavailable", "error", err)
		} else if !ok {
			api.HandleError(w, api.NewTooManyRequestsError("Muitas solicitações. Aguarde alguns instantes."))
			return
		}
	}

	resp, err := h.svc.Generate(r.Context(), userID, &req)
	if err != nil {
		api.HandleError(w, toAppError(err, userID))
		return
	}

	api.JSONBody(w, http.StatusOK, resp)
}

// toAppError maps pipeline failures to HTTP errors. Upstream failures get a
// generic message; the cause is only logged.
func toAppError(err error, userID uuid.UUID) *api.AppError {
	var (
		verr *ValidationError
		qerr *quota.ExceededError
	)
	switch {
	case errors.As(err, &verr):
		return api.NewValidationError(verr.Error())
	case errors.Is(err, ErrValidation), errors.Is(err, video.ErrUnrecognizedPlatform):
		return api.NewValidationError(err.Error())
	case errors.As(err, &qerr):
		return api.NewTooManyRequestsError(qerr.Error())
	case errors.Is(err, quota.ErrQuotaExceeded), errors.Is(err, quota.ErrRateLimited):
		return api.NewTooManyRequestsError(err.Error())
	case errors.Is(err, quota.ErrUserNotFound):
		return api.ErrUnauthorized
	case errors.Is(err, patterns.ErrNotFound):
		return api.NewNotFoundError("padrão salvo não encontrado")
	case errors.Is(err, patterns.ErrForbidden):
		return api.ErrOwnershipViolation
	case errors.Is(err, transcript.ErrTranscriptUnavailable),
		errors.Is(err, ErrModelCall),
		errors.Is(err, ErrMalformedAnalysis),
		errors.Is(err, ErrMalformedScript):
		slog.Error("generation upstream failure", "error", err, "user_id", userID)
		return api.ErrBadGateway
	}
	slog.Error("generation failed", "error", err, "user_id", userID)
	return api.ErrInternalServer
}
