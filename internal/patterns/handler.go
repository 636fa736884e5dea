package patterns

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/viralscript/viralscript/internal/api"
	"github.com/viralscript/viralscript/internal/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserClaims(r.Context())
	if claims == nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	ownerID, err := uuid.Parse(claims.UserID)
	if err != nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	params := DefaultListParams()
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

	list, total, err := h.svc.ListByOwner(r.Context(), ownerID, params)
	if err != nil {
		slog.Error("listing patterns", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSONPaginated(w, http.StatusOK, list, total, params.Page, params.PageSize)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p := GetPatternFromContext(r.Context())
	if p == nil {
		api.HandleError(w, api.ErrNotFound)
		return
	}
	api.JSON(w, http.StatusOK, p)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	p := GetPatternFromContext(r.Context())
	if p == nil {
		api.HandleError(w, api.ErrNotFound)
		return
	}

	if err := h.svc.Delete(r.Context(), p.OwnerUserID, p.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			api.HandleError(w, api.NewNotFoundError("pattern not found"))
			return
		}
		slog.Error("deleting pattern", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSONMessage(w, http.StatusOK, "pattern deleted successfully")
}

// OwnershipMiddleware loads the {patternID} route parameter and rejects
// requests from anyone but its owner.
func (h *Handler) OwnershipMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := auth.GetUserClaims(r.Context())
		if claims == nil {
			api.HandleError(w, api.ErrUnauthorized)
			return
		}

		ownerID, err := uuid.Parse(claims.UserID)
		if err != nil {
			api.HandleError(w, api.ErrUnauthorized)
			return
		}

		patternID, err := uuid.Parse(chi.URLParam(r, "patternID"))
		if err != nil {
			api.HandleError(w, api.NewBadRequestError("invalid pattern ID"))
			return
		}

		p, err := h.svc.GetOwned(r.Context(), ownerID, patternID)
		switch {
		case errors.Is(err, ErrNotFound):
			api.HandleError(w, api.NewNotFoundError("pattern not found"))
			return
		case errors.Is(err, ErrForbidden):
			api.HandleError(w, api.ErrOwnershipViolation)
			return
		case err != nil:
			slog.Error("fetching pattern for ownership check", "error", err)
			api.HandleError(w, api.ErrInternalServer)
			return
		}

		next.ServeHTTP(w, r.WithContext(SetPatternInContext(r.Context(), p)))
	})
}
