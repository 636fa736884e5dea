// Package governance exposes quota status and the audit trail over HTTP.
package governance

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/viralscript/viralscript/internal/api"
	"github.com/viralscript/viralscript/internal/auth"
	"github.com/viralscript/viralscript/internal/governance/audit"
	"github.com/viralscript/viralscript/internal/governance/quota"
	"github.com/viralscript/viralscript/internal/patterns"
)

type QuotaReader interface {
	CheckAndMaybeReset(ctx context.Context, userID uuid.UUID) (*quota.Status, error)
}

type AuditLister interface {
	ListByOwner(ctx context.Context, ownerUserID uuid.UUID, params audit.ListParams) ([]audit.AuditLog, int64, error)
	ListByResource(ctx context.Context, ownerUserID, resourceID uuid.UUID, params audit.ListParams) ([]audit.AuditLog, int64, error)
}

// Handler provides HTTP handlers for governance endpoints.
type Handler struct {
	quotaSvc  QuotaReader
	auditRepo AuditLister
}

func NewHandler(quotaSvc QuotaReader, auditRepo AuditLister) *Handler {
	return &Handler{
		quotaSvc:  quotaSvc,
		auditRepo: auditRepo,
	}
}

// GetQuota returns the authenticated user's current quota status.
func (h *Handler) GetQuota(w http.ResponseWriter, r *http.Request) {
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

	status, err := h.quotaSvc.CheckAndMaybeReset(r.Context(), userID)
	if err != nil {
		slog.Error("reading quota", "error", err, "user_id", userID)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusOK, status)
}

// ListAuditLogs returns paginated audit logs for the authenticated user.
func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
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

	params := parseAuditParams(r)

	logs, total, err := h.auditRepo.ListByOwner(r.Context(), userID, params)
	if err != nil {
		slog.Error("listing audit logs", "error", err, "user_id", userID)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSONPaginated(w, http.StatusOK, logs, total, params.Page, params.PageSize)
}

// ListPatternAuditLogs returns audit logs that reference a saved pattern.
// Expects the pattern in context from patterns.Handler.OwnershipMiddleware.
func (h *Handler) ListPatternAuditLogs(w http.ResponseWriter, r *http.Request) {
	p := patterns.GetPatternFromContext(r.Context())
	if p == nil {
		api.HandleError(w, api.ErrNotFound)
		return
	}

	params := parseAuditParams(r)

	logs, total, err := h.auditRepo.ListByResource(r.Context(), p.OwnerUserID, p.ID, params)
	if err != nil {
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSONPaginated(w, http.StatusOK, logs, total, params.Page, params.PageSize)
}

func parseAuditParams(r *http.Request) audit.ListParams {
	params := audit.DefaultListParams()

	if et := r.URL.Query().Get("event_type"); et != "" {
		params.EventType = et
	}
	if sev := r.URL.Query().Get("severity"); sev != "" {
		params.Severity = sev
	}
	if p := r.URL.Query().Get("page"); p != "" {
		if page, err := strconv.Atoi(p); err == nil && page > 0 {
			params.Page = page
		}
	}
	if ps := r.URL.Query().Get("page_size"); ps != "" {
		if pageSize, err := strconv.Atoi(ps); err == nil && pageSize > 0 && pageSize <= 100 {
			params.PageSize = pageSize
		}
	}
	if from := r.URL.Query().Get("from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			params.From = &t
		}
	}
	if to := r.URL.Query().Get("to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			params.To = &t
		}
	}

	return params
}
