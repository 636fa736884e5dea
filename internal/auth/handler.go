package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/viralscript/viralscript/internal/api"
	"github.com/viralscript/viralscript/internal/governance/quota"
	"github.com/viralscript/viralscript/internal/users"
)

// QuotaReader reports a user's generation allowance.
type QuotaReader interface {
	CheckAndMaybeReset(ctx context.Context, userID uuid.UUID) (*quota.Status, error)
}

type Handler struct {
	authSvc  *Service
	userSvc  *users.Service
	quotaSvc QuotaReader
	validate *validator.Validate
}

func NewHandler(authSvc *Service, userSvc *users.Service, quotaSvc QuotaReader) *Handler {
	return &Handler{
		authSvc:  authSvc,
		userSvc:  userSvc,
		quotaSvc: quotaSvc,
		validate: validator.New(),
	}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// MeResponse is the authenticated user's profile with their quota.
type MeResponse struct {
	*users.User
	Quota *quota.Status `json:"quota"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	user, err := h.userSvc.GetByEmail(r.Context(), req.Email)
	if err != nil {
		slog.Error("getting user by email", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	if user == nil {
		api.HandleError(w, api.ErrInvalidCredentials)
		return
	}

	if !VerifyPassword(user.PasswordHash, req.Password) {
		api.HandleError(w, api.ErrInvalidCredentials)
		return
	}

	tokens, err := h.authSvc.GenerateTokens(r.Context(), user.ID.String(), user.Email)
	if err != nil {
		slog.Error("generating tokens", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	slog.Info("user logged in", "user_id", user.ID)
	api.JSON(w, http.StatusOK, tokens)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	tokens, err := h.authSvc.RefreshTokens(r.Context(), req.RefreshToken)
	if err != nil {
		slog.Warn("refreshing tokens", "error", err)
		api.HandleError(w, api.ErrInvalidToken)
		return
	}

	api.JSON(w, http.StatusOK, tokens)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetUserClaims(r.Context())
	if claims == nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	if err := h.authSvc.Logout(r.Context(), claims.UserID); err != nil {
		slog.Error("logging out", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSONMessage(w, http.StatusOK, "logged out successfully")
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims := GetUserClaims(r.Context())
	if claims == nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	user, err := h.userSvc.GetByID(r.Context(), userID)
	if err != nil {
		slog.Error("getting user by id", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	if user == nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	status, err := h.quotaSvc.CheckAndMaybeReset(r.Context(), userID)
	if err != nil {
		slog.Error("reading quota", "error", err, "user_id", userID)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	// The quota read may have reset the counter.
	user.GenerationsUsed = status.GenerationsUsed
	api.JSON(w, http.StatusOK, MeResponse{User: user, Quota: status})
}
