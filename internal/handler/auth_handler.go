package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"pixfeed-server/internal/domain"
	"pixfeed-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type AuthService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.TokenResponse, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.TokenResponse, error)
	Refresh(ctx context.Context, req *domain.RefreshTokenRequest) (*domain.TokenResponse, error)
}

type ResetService interface {
	RequestReset(ctx context.Context, login string) (*domain.ResetTicket, error)
	RequestResetFor(ctx context.Context, userID string) (*domain.ResetTicket, error)
	Consume(ctx context.Context, userID string, code int, newPassword string) error
}

const codeSentMessage = "a verification code has been sent"

type AuthHandler struct {
	authService  AuthService
	resetService ResetService
	validator    *validator.Validate
	logger       *slog.Logger
}

func NewAuthHandler(authService AuthService, resetService ResetService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		resetService: resetService,
		validator:    newValidator(),
		logger:       logger,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if !decode(w, r, h.validator, &req) {
		return
	}

	tokens, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Created(w, tokens)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decode(w, r, h.validator, &req) {
		return
	}

	tokens, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, tokens)
}

func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req domain.RefreshTokenRequest
	if !decode(w, r, h.validator, &req) {
		return
	}

	tokens, err := h.authService.Refresh(r.Context(), &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, tokens)
}

// ForgotPassword answers identically whether or not the login names a user
// who can receive a code.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ForgotPasswordRequest
	if !decode(w, r, h.validator, &req) {
		return
	}

	ticket, err := h.resetService.RequestReset(r.Context(), req.Login)
	if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrNoDeliveryChannel) {
		ticket, err = &domain.ResetTicket{UserID: uuid.NewString()}, nil
	}
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Message(w, http.StatusOK, codeSentMessage, ticket)
}

// CheckCode redeems a reset code for the user named in the path and sets the
// new password from the body.
func (h *AuthHandler) CheckCode(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	code, err := parseCode(vars["code"])
	if err != nil {
		response.BadRequest(w, "code must be a 6 digit number")
		return
	}

	var req domain.NewPasswordRequest
	if !decode(w, r, h.validator, &req) {
		return
	}

	if err := h.resetService.Consume(r.Context(), vars["user_id"], code, req.NewPassword); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Message(w, http.StatusOK, "password updated", nil)
}

// parseCode accepts one to six ASCII digits and nothing else.
func parseCode(s string) (int, error) {
	if len(s) == 0 || len(s) > 6 {
		return 0, strconv.ErrSyntax
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(s)
}
