package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"pixfeed-server/internal/domain"
	"pixfeed-server/internal/middleware"
	"pixfeed-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type UserService interface {
	Me(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, req *domain.UpdateUserRequest) (*domain.User, error)
	ChangePassword(ctx context.Context, userID string, req *domain.ChangePasswordRequest) error
	Delete(ctx context.Context, userID string) error
	Search(ctx context.Context, query string) ([]*domain.UserProfile, error)
}

type UserHandler struct {
	userService  UserService
	resetService ResetService
	validator    *validator.Validate
	logger       *slog.Logger
}

func NewUserHandler(userService UserService, resetService ResetService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userService:  userService,
		resetService: resetService,
		validator:    newValidator(),
		logger:       logger,
	}
}

func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.Me(r.Context(), middleware.GetUserID(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, user)
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateUserRequest
	if !decode(w, r, h.validator, &req) {
		return
	}

	user, err := h.userService.Update(r.Context(), middleware.GetUserID(r), &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, user)
}

func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	if err := h.userService.Delete(r.Context(), middleware.GetUserID(r)); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ChangePasswordRequest
	if !decode(w, r, h.validator, &req) {
		return
	}

	if err := h.userService.ChangePassword(r.Context(), middleware.GetUserID(r), &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Message(w, http.StatusOK, "password changed", nil)
}

// ForgotPassword sends a reset code to the caller's own email or phone.
func (h *UserHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.resetService.RequestResetFor(r.Context(), middleware.GetUserID(r))
	if errors.Is(err, domain.ErrNoDeliveryChannel) {
		response.BadRequest(w, "add an email or phone number to your profile first")
		return
	}
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Message(w, http.StatusOK, codeSentMessage, ticket)
}

func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ResetPasswordRequest
	if !decode(w, r, h.validator, &req) {
		return
	}

	if err := h.resetService.Consume(r.Context(), middleware.GetUserID(r), *req.Code, req.NewPassword); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Message(w, http.StatusOK, "password updated", nil)
}

func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.userService.Search(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, profiles)
}
