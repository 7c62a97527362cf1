package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/CarlosMilan/Challenge-BCI/internal/domain"
	"github.com/CarlosMilan/Challenge-BCI/internal/service"
	apperrors "github.com/CarlosMilan/Challenge-BCI/pkg/errors"
	"github.com/CarlosMilan/Challenge-BCI/pkg/httputil"
	"github.com/CarlosMilan/Challenge-BCI/pkg/middleware"
	"github.com/CarlosMilan/Challenge-BCI/pkg/validator"
)

const maxBodyBytes = 1 << 20

// UserService is the part of service.UserService the handlers call.
type UserService interface {
	Register(ctx context.Context, input service.RegisterInput) (*domain.User, string, error)
	Login(ctx context.Context, token string) (*service.LoginResult, error)
}

// UserHandler handles HTTP requests for the /users endpoints.
type UserHandler struct {
	service UserService
	logger  *slog.Logger
}

// NewUserHandler creates a new user HTTP handler.
func NewUserHandler(svc UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{service: svc, logger: logger}
}

// SignUp handles POST /users/sing-up
func (h *UserHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationErrors(w, err)
		return
	}

	user, token, err := h.service.Register(r.Context(), toRegisterInput(req))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, SignUpResponse{
		User:  toUserResponse(user),
		Token: token,
	})
}

// Login handles GET /users/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	token, err := middleware.BearerToken(r)
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput(err.Error()), h.logger)
		return
	}

	result, err := h.service.Login(r.Context(), token)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toLoginResponse(result))
}
